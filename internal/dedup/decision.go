// internal/dedup/decision.go
package dedup

import "entity-dedup-workers/internal/models"

// Confidence thresholds shared across entity types.
const (
	HighConfidenceThreshold   = 0.9
	MediumConfidenceThreshold = 0.7
)

// Outcome is the decision taken for one candidate duplicate group.
type Outcome int

const (
	OutcomeAutoMerge Outcome = iota
	OutcomeManualReview
	OutcomeKeepSeparate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAutoMerge:
		return "auto_merge"
	case OutcomeManualReview:
		return "manual_review"
	case OutcomeKeepSeparate:
		return "keep_separate"
	}
	return "unknown"
}

// runOptions carries the per-call decision knobs. Batch calls may override the
// auto-merge threshold or disable auto-merging entirely, in which case
// would-be merges are demoted to manual review.
type runOptions struct {
	highThreshold    float64
	mediumThreshold  float64
	autoMergeEnabled bool
}

// decide maps a group confidence to an outcome using the threshold ladder.
func decide(confidence float64, opts runOptions) Outcome {
	switch {
	case confidence >= opts.highThreshold:
		if !opts.autoMergeEnabled {
			return OutcomeManualReview
		}
		return OutcomeAutoMerge
	case confidence >= opts.mediumThreshold:
		return OutcomeManualReview
	default:
		return OutcomeKeepSeparate
	}
}

// decideCompanies applies the company-specific domain override before the
// threshold ladder: two or more members sharing a non-empty domain merge
// unconditionally, since domain identity outranks name similarity.
func decideCompanies(group []models.Company, confidence float64, opts runOptions) Outcome {
	if opts.autoMergeEnabled {
		seen := make(map[string]int, len(group))
		for _, c := range group {
			if c.Domain == "" {
				continue
			}
			seen[c.Domain]++
			if seen[c.Domain] >= 2 {
				return OutcomeAutoMerge
			}
		}
	}
	return decide(confidence, opts)
}
