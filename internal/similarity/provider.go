// internal/similarity/provider.go
package similarity

// Scorer is the default normalizer/similarity provider used by the
// deduplication engine. Similarity is symmetric and reflexive on non-empty
// normalized strings; Normalize is idempotent.
type Scorer struct{}

// NewScorer returns the default Jaro-Winkler backed provider.
func NewScorer() *Scorer {
	return &Scorer{}
}

func (s *Scorer) Normalize(name string) string {
	return Normalize(name)
}

func (s *Scorer) Similarity(a, b string) float64 {
	return JaroWinkler(a, b)
}
