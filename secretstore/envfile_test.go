package secretstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnvFile(t *testing.T) {
	content := "# comment\nKEY_A=1\n\nKEY_B = spaced \nmalformed line\nKEY_A=2\n"
	lines := parseEnvFile(content)

	assert.Len(t, lines, 6)
	assert.False(t, lines[0].hasKey)
	assert.False(t, lines[2].hasKey)
	assert.False(t, lines[4].hasKey, "malformed line must never match a key")

	// Last write wins for duplicate keys
	value, found := lookupValue(lines, "KEY_A")
	assert.True(t, found)
	assert.Equal(t, "2", value)

	// Whitespace around key and value is trimmed on lookup
	value, found = lookupValue(lines, "KEY_B")
	assert.True(t, found)
	assert.Equal(t, "spaced", value)

	_, found = lookupValue(lines, "KEY_C")
	assert.False(t, found)
}

func TestParseEnvFileEdges(t *testing.T) {
	assert.Nil(t, parseEnvFile(""))

	// CRLF input parses the same as LF
	lines := parseEnvFile("KEY_A=1\r\nKEY_B=2\r\n")
	v, found := lookupValue(lines, "KEY_B")
	assert.True(t, found)
	assert.Equal(t, "2", v)

	// Value may contain '='
	lines = parseEnvFile("KEY_A=abc=def==\n")
	v, _ = lookupValue(lines, "KEY_A")
	assert.Equal(t, "abc=def==", v)
}

func TestUpsertAndRender(t *testing.T) {
	lines := parseEnvFile("# header\nKEY_A=1\n")

	lines = upsertValue(lines, "KEY_A", "updated")
	lines = upsertValue(lines, "KEY_B", "new")

	assert.Equal(t, "# header\nKEY_A=updated\nKEY_B=new\n", renderEnvFile(lines))

	// Render of nothing is nothing, not a lone newline
	assert.Equal(t, "", renderEnvFile(nil))
}
