package dedup

import (
	"testing"

	"entity-dedup-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func defaultOpts() runOptions {
	return runOptions{
		highThreshold:    HighConfidenceThreshold,
		mediumThreshold:  MediumConfidenceThreshold,
		autoMergeEnabled: true,
	}
}

func TestDecideThresholdLadder(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		expect     Outcome
	}{
		{"well above high", 0.95, OutcomeAutoMerge},
		{"exactly high", 0.9, OutcomeAutoMerge},
		{"just below high", 0.8999, OutcomeManualReview},
		{"exactly medium", 0.7, OutcomeManualReview},
		{"just below medium", 0.6999, OutcomeKeepSeparate},
		{"zero", 0.0, OutcomeKeepSeparate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, decide(tt.confidence, defaultOpts()))
		})
	}
}

func TestDecideAutoMergeDisabledDemotesToReview(t *testing.T) {
	opts := defaultOpts()
	opts.autoMergeEnabled = false

	assert.Equal(t, OutcomeManualReview, decide(0.95, opts))
	assert.Equal(t, OutcomeManualReview, decide(0.75, opts))
	assert.Equal(t, OutcomeKeepSeparate, decide(0.5, opts))
}

func TestDecideCustomThreshold(t *testing.T) {
	opts := defaultOpts()
	opts.highThreshold = 0.95

	assert.Equal(t, OutcomeManualReview, decide(0.92, opts))
	assert.Equal(t, OutcomeAutoMerge, decide(0.96, opts))
}

func TestDecideCompaniesDomainOverride(t *testing.T) {
	group := []models.Company{
		{NormalizedName: "acme corp", Domain: "acme.com"},
		{NormalizedName: "acme incorporated", Domain: "acme.com"},
	}

	// Shared domain merges even when name confidence alone would not.
	assert.Equal(t, OutcomeAutoMerge, decideCompanies(group, 0.5, defaultOpts()))
}

func TestDecideCompaniesNoOverrideWithoutSharedDomain(t *testing.T) {
	group := []models.Company{
		{NormalizedName: "acme corp", Domain: "acme.com"},
		{NormalizedName: "acme incorporated", Domain: "acme.io"},
		{NormalizedName: "acme"},
	}

	assert.Equal(t, OutcomeManualReview, decideCompanies(group, 0.75, defaultOpts()))
	assert.Equal(t, OutcomeKeepSeparate, decideCompanies(group, 0.4, defaultOpts()))
}

func TestDecideCompaniesEmptyDomainsNeverMatch(t *testing.T) {
	group := []models.Company{
		{NormalizedName: "acme"},
		{NormalizedName: "globex"},
	}

	assert.Equal(t, OutcomeKeepSeparate, decideCompanies(group, 0.1, defaultOpts()))
}

func TestDecideCompaniesOverrideRespectsAutoMergeToggle(t *testing.T) {
	group := []models.Company{
		{NormalizedName: "acme corp", Domain: "acme.com"},
		{NormalizedName: "acme incorporated", Domain: "acme.com"},
	}
	opts := defaultOpts()
	opts.autoMergeEnabled = false

	assert.Equal(t, OutcomeManualReview, decideCompanies(group, 0.75, opts))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "auto_merge", OutcomeAutoMerge.String())
	assert.Equal(t, "manual_review", OutcomeManualReview.String())
	assert.Equal(t, "keep_separate", OutcomeKeepSeparate.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
