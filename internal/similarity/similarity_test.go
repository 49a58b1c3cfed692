// internal/similarity/similarity_test.go
package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Normalize
// ==========================

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercases", input: "John Doe", expected: "john doe"},
		{name: "trims whitespace", input: "  Acme Corp  ", expected: "acme corp"},
		{name: "collapses internal whitespace", input: "AI   Conference \t 2024", expected: "ai conference 2024"},
		{name: "empty string", input: "", expected: ""},
		{name: "whitespace only", input: "   \t\n ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"", "  John   DOE ", "Google Inc.", "AI Conference 2024", "ünïcode  Näme"}
	for _, s := range inputs {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "normalize(normalize(%q))", s)
	}
}

// ==========================
// JaroWinkler
// ==========================

func TestJaroWinkler_Reflexive(t *testing.T) {
	assert.Equal(t, 1.0, JaroWinkler("john doe", "john doe"))
	assert.Equal(t, 0.0, JaroWinkler("", ""))
}

func TestJaroWinkler_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"john doe", "j. doe"},
		{"google inc", "google llc"},
		{"martha", "marhta"},
	}
	for _, p := range pairs {
		assert.InDelta(t, JaroWinkler(p[0], p[1]), JaroWinkler(p[1], p[0]), 1e-12)
	}
}

func TestJaroWinkler_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"abc", "xyz"},
		{"", "something"},
		{"google inc", "google llc"},
		{"a", "a"},
		{"completely different", "nothing alike here"},
	}
	for _, p := range pairs {
		score := JaroWinkler(p[0], p[1])
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestJaroWinkler_KnownValues(t *testing.T) {
	// Classic reference pair; prefix bonus included.
	assert.InDelta(t, 0.961, JaroWinkler("martha", "marhta"), 0.001)
	// Similar company names score high.
	assert.Greater(t, JaroWinkler("google inc", "google llc"), 0.85)
	// Disjoint strings score low.
	assert.Less(t, JaroWinkler("abc", "xyz"), 0.1)
}

// ==========================
// TokenOverlap
// ==========================

func TestTokenOverlap(t *testing.T) {
	tests := []struct {
		name     string
		x, y     string
		expected float64
	}{
		{name: "identical", x: "ai conference 2024", y: "ai conference 2024", expected: 1.0},
		{name: "partial overlap", x: "ai conference 2024", y: "ai summit 2024", expected: 2.0 / 3.0},
		{name: "no overlap", x: "foo bar", y: "baz qux", expected: 0.0},
		{name: "empty left", x: "", y: "something", expected: 0.0},
		{name: "empty right", x: "something", y: "", expected: 0.0},
		{name: "both empty", x: "", y: "", expected: 0.0},
		{name: "different lengths", x: "tech meetup", y: "tech meetup berlin edition", expected: 2.0 / 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TokenOverlap(tt.x, tt.y), 1e-12)
		})
	}
}

func TestScorer_ImplementsContract(t *testing.T) {
	s := NewScorer()
	assert.Equal(t, "john doe", s.Normalize(" John  Doe "))
	assert.Equal(t, 1.0, s.Similarity("acme", "acme"))
	assert.InDelta(t, s.Similarity("a b", "b a"), s.Similarity("b a", "a b"), 1e-12)
}
