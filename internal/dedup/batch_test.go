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

func TestChunk(t *testing.T) {
	tests := []struct {
		name   string
		count  int
		size   int
		expect []int
	}{
		{"empty", 0, 100, nil},
		{"single short chunk", 5, 100, []int{5}},
		{"exact multiple", 200, 100, []int{100, 100}},
		{"trailing remainder", 250, 100, []int{100, 100, 50}},
		{"size one", 3, 1, []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]int, tt.count)
			chunks := chunk(items, tt.size)
			require.Len(t, chunks, len(tt.expect))
			for i, want := range tt.expect {
				assert.Len(t, chunks[i], want)
			}
		})
	}
}

func TestBatchDeduplicateEvents(t *testing.T) {
	s := newTestService(t)

	// 250 events: each date hosts one duplicate pair plus three singletons,
	// spread over three chunks of 100.
	events := make([]models.Event, 0, 250)
	for i := 0; i < 50; i++ {
		date := fmt.Sprintf("2025-01-%02d", i%28+1)
		events = append(events,
			models.Event{ID: fmt.Sprintf("dup-a-%d", i), Name: fmt.Sprintf("Summit %d", i), Date: date, Location: fmt.Sprintf("City %d", i)},
			models.Event{ID: fmt.Sprintf("dup-b-%d", i), Name: fmt.Sprintf("Summit %d", i), Date: date, Location: fmt.Sprintf("City %d", i)},
			models.Event{ID: fmt.Sprintf("solo-a-%d", i), Name: fmt.Sprintf("Solo A %d", i), Date: fmt.Sprintf("2026-01-%02d", i%28+1)},
			models.Event{ID: fmt.Sprintf("solo-b-%d", i), Name: fmt.Sprintf("Solo B %d", i), Date: fmt.Sprintf("2027-01-%02d", i%28+1)},
			models.Event{ID: fmt.Sprintf("solo-c-%d", i), Name: fmt.Sprintf("Solo C %d", i), Date: fmt.Sprintf("2028-01-%02d", i%28+1)},
		)
	}
	require.Len(t, events, 250)

	res, err := s.BatchDeduplicateEvents(context.Background(), events, BatchOptions{ChunkSize: 100})
	require.NoError(t, err)

	assert.Equal(t, 250, res.Stats.TotalProcessed)
	assert.Empty(t, res.ChunkErrors)
	// Duplicate pairs are adjacent, so chunk boundaries cannot split them.
	assert.Equal(t, 50, res.Stats.AutoMergedGroups)
	assert.Equal(t, 150, res.Stats.KeptSeparate)
	assert.Equal(t, 250, countEntities(res))
}

func TestBatchChunkFailureIsolation(t *testing.T) {
	s := NewService(DefaultConfig(), chunkPanicProvider{}, logger.NewNoOpLogger())

	// Three chunks of two; only the middle chunk contains the poisoned
	// normalized name that makes scoring panic.
	speakers := []models.Speaker{
		{ID: "a1", NormalizedName: "alice"},
		{ID: "a2", NormalizedName: "alice"},
		{ID: "b1", NormalizedName: "boom"},
		{ID: "b2", NormalizedName: "boom"},
		{ID: "c1", NormalizedName: "carol"},
		{ID: "c2", NormalizedName: "carol"},
	}

	res, err := s.BatchDeduplicateSpeakers(context.Background(), speakers, BatchOptions{ChunkSize: 2})
	require.NoError(t, err, "a failed chunk must not fail the batch")

	require.Len(t, res.ChunkErrors, 1)
	assert.Equal(t, 1, res.ChunkErrors[0].ChunkIndex)
	assert.Equal(t, "CHUNK_FAILED", res.ChunkErrors[0].Error)

	// The healthy chunks still produced their merges.
	assert.Equal(t, 2, res.Stats.AutoMergedGroups)
	assert.Equal(t, 6, res.Stats.TotalProcessed)
}

func TestBatchConfidenceThresholdOverride(t *testing.T) {
	// 0.85 similarity sits below the default 0.9 merge bar but above a 0.8 override.
	s := NewService(DefaultConfig(), fixedProvider{0.85}, logger.NewNoOpLogger())
	speakers := []models.Speaker{
		{ID: "a", NormalizedName: "pat taylor"},
		{ID: "b", NormalizedName: "pat taylor"},
	}

	res, err := s.BatchDeduplicateSpeakers(context.Background(), speakers, BatchOptions{ConfidenceThreshold: 0.8})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.AutoMergedGroups)

	res, err = s.BatchDeduplicateSpeakers(context.Background(), speakers, BatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.AutoMergedGroups)
	assert.Len(t, res.ManualReview, 1)
}

func TestBatchAutoMergeDisabled(t *testing.T) {
	s := newTestService(t)
	disabled := false
	companies := []models.Company{
		{ID: "a", Name: "Acme", Domain: "acme.com"},
		{ID: "b", Name: "Acme Corp", Domain: "acme.com"},
	}

	res, err := s.BatchDeduplicateCompanies(context.Background(), companies, BatchOptions{AutoMergeEnabled: &disabled})
	require.NoError(t, err)

	assert.Empty(t, res.AutoMerged, "domain override is also demoted when auto-merge is off")
	assert.Len(t, res.ManualReview, 1)
}

func TestBatchCancelledContext(t *testing.T) {
	s := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.BatchDeduplicateEvents(ctx, []models.Event{{Name: "X"}}, BatchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPERATION_TIMEOUT")
}

// chunkPanicProvider panics only for the poisoned key, leaving other chunks
// healthy.
type chunkPanicProvider struct{}

func (chunkPanicProvider) Normalize(name string) string { return name }

func (chunkPanicProvider) Similarity(a, b string) float64 {
	if a == "boom" || b == "boom" {
		panic("poisoned record")
	}
	if a == b && a != "" {
		return 1.0
	}
	return 0.0
}
