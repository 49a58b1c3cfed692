package dedup

import (
	"testing"

	"entity-dedup-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPrimaryTiesFavorFirst(t *testing.T) {
	group := []int{5, 5, 3, 5}
	idx := selectPrimary(group, func(v int) float64 { return float64(v) })
	assert.Equal(t, 0, idx, "equal scores keep the first-encountered member")
}

func TestSelectPrimaryStrictlyGreaterWins(t *testing.T) {
	group := []int{3, 7, 7}
	idx := selectPrimary(group, func(v int) float64 { return float64(v) })
	assert.Equal(t, 1, idx)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "keep", firstNonEmpty("keep", []string{"other"}))
	assert.Equal(t, "second", firstNonEmpty("", []string{"", "second", "third"}))
	assert.Equal(t, "", firstNonEmpty("", []string{"", ""}))
}

func TestLongestText(t *testing.T) {
	assert.Equal(t, "the longest one", longestText([]string{"short", "the longest one", ""}))
	assert.Equal(t, "", longestText(nil))
}

func TestMergeSpeakers(t *testing.T) {
	group := []models.Speaker{
		{ID: "a", Name: "John Smith", NormalizedName: "john smith", ConfidenceScore: 0.5},
		{ID: "b", Name: "John Smith", NormalizedName: "john smith", Company: "Acme Corp", Bio: "A very long biography about John", ConfidenceScore: 0.5},
		{ID: "c", Name: "John Smith", NormalizedName: "john smith", Bio: "short bio", ConfidenceScore: 0.5},
	}

	outcome := mergeSpeakers(group)

	primary, ok := outcome.Primary.(models.Speaker)
	require.True(t, ok)
	assert.Equal(t, "b", primary.ID, "company and bio bonuses outrank equal confidence")

	assert.Equal(t, "Acme Corp", outcome.MergedData["company"])
	assert.Equal(t, "A very long biography about John", outcome.MergedData["bio"])
	assert.Len(t, outcome.MergedFrom, 2)

	// Inputs must be untouched.
	assert.Empty(t, group[0].Company)
}

func TestMergeSpeakersBackfillsPrimaryGaps(t *testing.T) {
	group := []models.Speaker{
		{ID: "a", Name: "Jane Doe", NormalizedName: "jane doe", Bio: "Long enough to win primary selection", ConfidenceScore: 0.9},
		{ID: "b", Name: "Jane Doe", NormalizedName: "jane doe", Company: "Globex", ConfidenceScore: 0.1},
	}

	outcome := mergeSpeakers(group)

	primary := outcome.Primary.(models.Speaker)
	assert.Equal(t, "a", primary.ID)
	assert.Equal(t, "Globex", outcome.MergedData["company"], "missing primary field backfills from others")
}

func TestMergeCompanies(t *testing.T) {
	group := []models.Company{
		{ID: "a", Name: "Acme", NormalizedName: "acme"},
		{ID: "b", Name: "Acme Corp", NormalizedName: "acme corp", Domain: "acme.com", Industry: "Manufacturing"},
	}

	outcome := mergeCompanies(group)

	primary := outcome.Primary.(models.Company)
	assert.Equal(t, "b", primary.ID, "domain and industry completeness wins")
	assert.Equal(t, "Acme Corp", outcome.MergedData["name"])
	assert.Equal(t, "acme.com", outcome.MergedData["domain"])
	assert.Equal(t, "Manufacturing", outcome.MergedData["industry"])
	require.Len(t, outcome.MergedFrom, 1)
	merged := outcome.MergedFrom[0].(models.Company)
	assert.Equal(t, "a", merged.ID)
}

func TestMergeEvents(t *testing.T) {
	group := []models.Event{
		{ID: "a", Name: "Tech Summit", Date: "2025-06-01", Description: "short", DataQualityScore: 0.9},
		{ID: "b", Name: "Tech Summit 2025", Date: "2025-06-01", Location: "Berlin", Description: "a considerably longer description", DataQualityScore: 0.6},
	}

	outcome := mergeEvents(group)

	primary := outcome.Primary.(models.Event)
	assert.Equal(t, "a", primary.ID, "higher data quality score wins primary")
	assert.Equal(t, "Tech Summit", outcome.MergedData["name"])
	assert.Equal(t, "Berlin", outcome.MergedData["location"], "location backfills from the merged member")
	assert.Equal(t, "a considerably longer description", outcome.MergedData["description"], "longest description wins regardless of source")
}

func TestMergedDataOmitsEmptyFields(t *testing.T) {
	outcome := mergeCompanies([]models.Company{
		{ID: "a", Name: "Acme", NormalizedName: "acme"},
		{ID: "b", Name: "Acme", NormalizedName: "acme"},
	})

	_, hasDomain := outcome.MergedData["domain"]
	_, hasIndustry := outcome.MergedData["industry"]
	assert.False(t, hasDomain)
	assert.False(t, hasIndustry)
}
