package misc

import "regexp"

var keyNamePattern = regexp.MustCompile(`(?i)^[A-Z_][A-Z0-9_]*$`)

// IsValidKeyName reports whether name is usable as a variable name in a
// KEY=VALUE secret file.
func IsValidKeyName(name string) bool {
	return keyNamePattern.MatchString(name)
}
