package tool

import "regexp"

// Model backends reject tool names outside this pattern.
var (
	namePattern    = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	disallowedRune = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)
)

// ValidName reports whether name already conforms to the allowed pattern.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// SanitizeName rewrites name so it conforms to the allowed pattern.
// Disallowed characters are substituted with '_', never dropped, so
// distinct inputs stay distinguishable and the original name remains
// recognizable in logs.
func SanitizeName(name string) string {
	if ValidName(name) {
		return name
	}
	return disallowedRune.ReplaceAllString(name, "_")
}
