// internal/dedup/scorer.go
package dedup

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"entity-dedup-workers/internal/common/metrics"
	"entity-dedup-workers/internal/models"
	"entity-dedup-workers/internal/similarity"
)

// companyAffiliationBonus is added to a speaker pair when both speakers carry
// a company, scaled by how similar the companies are.
const companyAffiliationBonus = 0.3

// domainMatchBonus is added to a company pair when both domains are present
// and exactly equal.
const domainMatchBonus = 0.5

// Event pair weights: name overlap, exact date match, location overlap.
const (
	eventNameWeight     = 0.4
	eventDateWeight     = 0.3
	eventLocationWeight = 0.3
)

// ctxCheckInterval bounds how many pair comparisons run between cancellation
// checks on pathologically large groups.
const ctxCheckInterval = 256

// SimilarityProvider is the normalizer/similarity contract the engine depends
// on. Normalize must be deterministic and idempotent; Similarity must be
// symmetric and return 1.0 for equal non-empty normalized strings.
type SimilarityProvider interface {
	Normalize(name string) string
	Similarity(a, b string) float64
}

func (s *Service) speakerPairConfidence(a, b models.Speaker) float64 {
	confidence := s.provider.Similarity(a.NormalizedName, b.NormalizedName)
	if a.Company != "" && b.Company != "" {
		companySim := s.provider.Similarity(s.provider.Normalize(a.Company), s.provider.Normalize(b.Company))
		confidence += companyAffiliationBonus * companySim
	}
	return clamp01(confidence)
}

func (s *Service) companyPairConfidence(a, b models.Company) float64 {
	confidence := s.provider.Similarity(a.NormalizedName, b.NormalizedName)
	if a.Domain != "" && a.Domain == b.Domain {
		confidence += domainMatchBonus
	}
	return clamp01(confidence)
}

func (s *Service) eventPairConfidence(a, b models.Event) float64 {
	confidence := eventNameWeight * similarity.TokenOverlap(strings.ToLower(a.Name), strings.ToLower(b.Name))
	if a.Date != "" && a.Date == b.Date {
		confidence += eventDateWeight
	}
	if a.Location != "" && b.Location != "" {
		confidence += eventLocationWeight * similarity.TokenOverlap(strings.ToLower(a.Location), strings.ToLower(b.Location))
	}
	return clamp01(confidence)
}

// groupConfidence averages pairwise confidence over all unordered pairs of
// distinct members. Pairwise scores are symmetric, so this equals the mean
// over ordered pairs. Callers guarantee len(members) >= 2.
func groupConfidence[T any](ctx context.Context, members []T, pair func(a, b T) float64) (float64, error) {
	total := 0.0
	pairs := 0
	comparisons := 0

	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			comparisons++
			if comparisons%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return 0, err
				}
			}
			total += pair(members[i], members[j])
			pairs++
		}
	}

	metrics.DedupPairComparisons.Add(float64(pairs))
	return total / float64(pairs), nil
}

// scoreGroups computes each group's confidence, fanning out across a bounded
// worker pool. Scoring is a pure function of the input, and each result lands
// in its index-addressed slot, so parallel execution order never affects the
// decisions made downstream.
func scoreGroups[T any](ctx context.Context, groups [][]T, maxWorkers int, pair func(a, b T) float64) ([]float64, error) {
	confidences := make([]float64, len(groups))
	if len(groups) == 0 {
		return confidences, nil
	}

	if maxWorkers < 1 {
		maxWorkers = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxWorkers)
	errs := make([]error, len(groups))

	for i := range groups {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			// A panicking pair function must fail its own group, not
			// take down the process from a worker goroutine.
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("pair scoring panic: %v", r)
				}
			}()
			confidences[i], errs[i] = groupConfidence(ctx, groups[i], pair)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return confidences, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
