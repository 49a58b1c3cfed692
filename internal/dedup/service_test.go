package dedup

import (
	"context"
	"fmt"
	"testing"

	"entity-dedup-workers/internal/common/logger"
	"entity-dedup-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countEntities sums the entities accounted for across every result bucket.
func countEntities(res *models.DeduplicationResult) int {
	n := len(res.KeptSeparate)
	for _, m := range res.AutoMerged {
		n += 1 + len(m.MergedFrom)
	}
	for _, item := range res.ManualReview {
		n += len(item.Candidates)
	}
	return n
}

func TestDeduplicateSpeakersAutoMerge(t *testing.T) {
	s := newTestService(t)
	speakers := []models.Speaker{
		{ID: "a", Name: "John Smith", Company: "Acme Corp", Bio: "Long biography of John Smith at Acme"},
		{ID: "b", Name: "john  smith", Company: "Acme Corp"},
		{ID: "c", Name: "Jane Doe"},
	}

	res, err := s.DeduplicateSpeakers(context.Background(), speakers)
	require.NoError(t, err)

	require.Len(t, res.AutoMerged, 1)
	primary := res.AutoMerged[0].Primary.(models.Speaker)
	assert.Equal(t, "a", primary.ID, "richer record wins primary")
	assert.Len(t, res.KeptSeparate, 1)
	assert.Empty(t, res.ManualReview)

	assert.Equal(t, 3, res.Stats.TotalProcessed)
	assert.Equal(t, 1, res.Stats.AutoMergedGroups)
	assert.Equal(t, 3, countEntities(res), "every input lands in exactly one bucket")
}

func TestDeduplicateSpeakersNormalizesMissingFields(t *testing.T) {
	s := newTestService(t)
	speakers := []models.Speaker{
		{ID: "a", Name: "  Ada   Lovelace "},
		{ID: "b", Name: "ADA LOVELACE"},
	}

	res, err := s.DeduplicateSpeakers(context.Background(), speakers)
	require.NoError(t, err)

	require.Len(t, res.AutoMerged, 1, "normalization unifies spacing and case before grouping")
	primary := res.AutoMerged[0].Primary.(models.Speaker)
	assert.Equal(t, "ada lovelace", primary.NormalizedName)
	assert.Greater(t, primary.ConfidenceScore, 0.0, "quality score backfills when absent")
}

func TestDeduplicateSpeakersManualReviewPath(t *testing.T) {
	// A provider reporting sub-merge similarity pushes same-key groups
	// into the review band.
	s := NewService(DefaultConfig(), fixedProvider{0.75}, logger.NewNoOpLogger())
	speakers := []models.Speaker{
		{ID: "a", Name: "John Smith", NormalizedName: "john smith"},
		{ID: "b", Name: "Jon Smith", NormalizedName: "john smith"},
	}

	res, err := s.DeduplicateSpeakers(context.Background(), speakers)
	require.NoError(t, err)

	assert.Empty(t, res.AutoMerged)
	require.Len(t, res.ManualReview, 1)
	assert.InDelta(t, 0.75, res.ManualReview[0].Confidence, 1e-9)
	assert.Equal(t, 2, countEntities(res))
}

// fixedProvider returns one similarity value for every pair, equality
// included.
type fixedProvider struct {
	similarity float64
}

func (p fixedProvider) Normalize(name string) string { return name }

func (p fixedProvider) Similarity(a, b string) float64 { return p.similarity }

func TestDeduplicateCompaniesDomainOverride(t *testing.T) {
	s := newTestService(t)
	companies := []models.Company{
		{ID: "a", Name: "Acme Corporation", Domain: "acme.com", Industry: "Manufacturing"},
		{ID: "b", Name: "ACME Inc", Domain: "acme.com"},
		{ID: "c", Name: "Globex", Domain: "globex.com"},
	}

	res, err := s.DeduplicateCompanies(context.Background(), companies)
	require.NoError(t, err)

	require.Len(t, res.AutoMerged, 1, "matching domains force the merge despite name distance")
	primary := res.AutoMerged[0].Primary.(models.Company)
	assert.Equal(t, "a", primary.ID)
	assert.Len(t, res.KeptSeparate, 1)
	assert.Equal(t, 3, countEntities(res))
}

func TestDeduplicateCompaniesNameOnlyMatch(t *testing.T) {
	s := newTestService(t)
	companies := []models.Company{
		{ID: "a", Name: "Initech"},
		{ID: "b", Name: "initech"},
	}

	res, err := s.DeduplicateCompanies(context.Background(), companies)
	require.NoError(t, err)

	require.Len(t, res.AutoMerged, 1, "identical normalized names score 1.0")
	assert.Equal(t, 2, countEntities(res))
}

func TestDeduplicateEventsBands(t *testing.T) {
	s := newTestService(t)
	events := []models.Event{
		// Same date and location, identical names: 0.4 + 0.3 + 0.3 = 1.0.
		{ID: "a", Name: "Tech Summit", Date: "2025-06-01", Location: "Berlin", Description: "The annual summit"},
		{ID: "b", Name: "Tech Summit", Date: "2025-06-01", Location: "Berlin"},
		// Same date and location, partial name: 0.4*(2/3) + 0.6 ≈ 0.867.
		{ID: "c", Name: "AI Forum Europe", Date: "2025-07-01", Location: "Paris"},
		{ID: "d", Name: "AI Forum", Date: "2025-07-01", Location: "Paris"},
		// Same date and location, unrelated names: 0.6.
		{ID: "e", Name: "Robotics Expo", Date: "2025-08-01", Location: "Oslo"},
		{ID: "f", Name: "Quantum Days", Date: "2025-08-01", Location: "Oslo"},
		// Singleton.
		{ID: "g", Name: "Solo Workshop", Date: "2025-09-01", Location: "Lisbon"},
	}

	res, err := s.DeduplicateEvents(context.Background(), events)
	require.NoError(t, err)

	require.Len(t, res.AutoMerged, 1)
	require.Len(t, res.ManualReview, 1)
	assert.InDelta(t, 0.4*(2.0/3.0)+0.6, res.ManualReview[0].Confidence, 1e-9)
	assert.Len(t, res.KeptSeparate, 3, "low-confidence pair plus the singleton")
	assert.Equal(t, 7, countEntities(res))

	// Review items are queued on the service, not just reported.
	queue := s.GetReviewQueue()
	require.Len(t, queue, 1)
	assert.Equal(t, models.ReviewTypeEventMerge, queue[0].Type)
}

func TestDeduplicateEmptyInput(t *testing.T) {
	s := newTestService(t)

	res, err := s.DeduplicateSpeakers(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.TotalProcessed)
	assert.Empty(t, res.AutoMerged)
	assert.Empty(t, res.ManualReview)
	assert.Empty(t, res.KeptSeparate)
}

func TestDeduplicateDeterministic(t *testing.T) {
	s := newTestService(t)
	events := make([]models.Event, 0, 40)
	for i := 0; i < 10; i++ {
		events = append(events,
			models.Event{ID: fmt.Sprintf("a%d", i), Name: fmt.Sprintf("Conf %d", i), Date: "2025-06-01", Location: "Berlin"},
			models.Event{ID: fmt.Sprintf("b%d", i), Name: fmt.Sprintf("Conf %d", i), Date: "2025-06-01", Location: "Berlin"},
			models.Event{ID: fmt.Sprintf("c%d", i), Name: fmt.Sprintf("Solo %d", i), Date: fmt.Sprintf("2025-07-%02d", i+1)},
			models.Event{ID: fmt.Sprintf("d%d", i), Name: fmt.Sprintf("Other %d", i), Date: fmt.Sprintf("2025-08-%02d", i+1)},
		)
	}

	first, err := s.DeduplicateEvents(context.Background(), events)
	require.NoError(t, err)
	second, err := s.DeduplicateEvents(context.Background(), events)
	require.NoError(t, err)

	require.Equal(t, len(first.AutoMerged), len(second.AutoMerged))
	for i := range first.AutoMerged {
		assert.Equal(t, first.AutoMerged[i].Primary, second.AutoMerged[i].Primary)
		assert.Equal(t, first.AutoMerged[i].MergedData, second.AutoMerged[i].MergedData)
	}
	assert.Equal(t, first.KeptSeparate, second.KeptSeparate)
	assert.Equal(t, first.Stats, second.Stats)
}

func TestApproveMergeResolves(t *testing.T) {
	s := newTestService(t)
	events := []models.Event{
		{ID: "a", Name: "AI Forum Europe", Date: "2025-07-01", Location: "Paris", DataQualityScore: 0.9},
		{ID: "b", Name: "AI Forum", Date: "2025-07-01", Location: "Paris", DataQualityScore: 0.5},
	}

	res, err := s.DeduplicateEvents(context.Background(), events)
	require.NoError(t, err)
	require.Len(t, res.ManualReview, 1)
	id := res.ManualReview[0].ID

	outcome, err := s.ApproveMerge(id, true)
	require.NoError(t, err)
	require.NotNil(t, outcome)

	primary := outcome.Primary.(models.Event)
	assert.Equal(t, "a", primary.ID, "approval applies the usual primary selection")
	assert.Len(t, outcome.MergedFrom, 1)
	assert.Empty(t, s.GetReviewQueue())
}

func TestApproveMergeRejection(t *testing.T) {
	s := newTestService(t)
	events := []models.Event{
		{ID: "a", Name: "AI Forum Europe", Date: "2025-07-01", Location: "Paris"},
		{ID: "b", Name: "AI Forum", Date: "2025-07-01", Location: "Paris"},
	}

	res, err := s.DeduplicateEvents(context.Background(), events)
	require.NoError(t, err)
	require.Len(t, res.ManualReview, 1)
	id := res.ManualReview[0].ID

	outcome, err := s.ApproveMerge(id, false)
	require.NoError(t, err)
	assert.Nil(t, outcome, "rejection resolves the item without a merge")
	assert.Empty(t, s.GetReviewQueue())
}

func TestApproveMergeUnknownID(t *testing.T) {
	s := newTestService(t)

	_, err := s.ApproveMerge("nope", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REVIEW_ITEM_NOT_FOUND")
}

func TestApproveMergeTwiceFails(t *testing.T) {
	s := newTestService(t)
	events := []models.Event{
		{ID: "a", Name: "AI Forum Europe", Date: "2025-07-01", Location: "Paris"},
		{ID: "b", Name: "AI Forum", Date: "2025-07-01", Location: "Paris"},
	}

	res, err := s.DeduplicateEvents(context.Background(), events)
	require.NoError(t, err)
	id := res.ManualReview[0].ID

	_, err = s.ApproveMerge(id, true)
	require.NoError(t, err)

	_, err = s.ApproveMerge(id, true)
	require.Error(t, err, "a resolved item cannot be approved again")
}

func TestRunPipelineRecoversPanics(t *testing.T) {
	s := NewService(DefaultConfig(), panicProvider{}, logger.NewNoOpLogger())
	speakers := []models.Speaker{
		{ID: "a", NormalizedName: "boom"},
		{ID: "b", NormalizedName: "boom"},
	}

	res, err := s.DeduplicateSpeakers(context.Background(), speakers)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "COMPUTATION_FAILED")
}

// panicProvider panics on any pair comparison. Used to exercise failure
// isolation at the run and chunk boundaries.
type panicProvider struct{}

func (panicProvider) Normalize(name string) string { return name }

func (panicProvider) Similarity(a, b string) float64 {
	panic("similarity backend unavailable")
}
