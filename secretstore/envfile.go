package secretstore

import "strings"

// envLine is one line of a KEY=VALUE secret file. Comment and blank lines
// carry no key and are preserved verbatim on rewrite, as is line order.
type envLine struct {
	raw    string
	key    string
	hasKey bool
}

func parseEnvFile(content string) []envLine {
	if content == "" {
		return nil
	}

	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	// A trailing newline produces one empty trailing element; drop it so
	// rendering does not accumulate blank lines.
	if n := len(raw); n > 0 && raw[n-1] == "" {
		raw = raw[:n-1]
	}

	lines := make([]envLine, 0, len(raw))
	for _, l := range raw {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			lines = append(lines, envLine{raw: l})
			continue
		}

		eq := strings.Index(l, "=")
		if eq < 0 {
			// Malformed line: keep it verbatim, never match it
			lines = append(lines, envLine{raw: l})
			continue
		}

		lines = append(lines, envLine{
			raw:    l,
			key:    strings.TrimSpace(l[:eq]),
			hasKey: true,
		})
	}
	return lines
}

// lookupValue returns the value of the last line holding key. Keys are
// unique within a well-formed file, but last write wins when they are not.
func lookupValue(lines []envLine, key string) (string, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].hasKey && lines[i].key == key {
			eq := strings.Index(lines[i].raw, "=")
			return strings.TrimSpace(lines[i].raw[eq+1:]), true
		}
	}
	return "", false
}

// upsertValue replaces the last occurrence of key, or appends a new line.
func upsertValue(lines []envLine, key, value string) []envLine {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].hasKey && lines[i].key == key {
			lines[i].raw = key + "=" + value
			return lines
		}
	}
	return append(lines, envLine{raw: key + "=" + value, key: key, hasKey: true})
}

func renderEnvFile(lines []envLine) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.raw)
		b.WriteString("\n")
	}
	return b.String()
}
