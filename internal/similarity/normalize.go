// internal/similarity/normalize.go
package similarity

import "strings"

// Normalize produces the canonical comparison form of a name: case-folded,
// trimmed, internal whitespace collapsed to single spaces. Deterministic and
// idempotent; the empty string normalizes to itself.
func Normalize(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	return strings.Join(fields, " ")
}
