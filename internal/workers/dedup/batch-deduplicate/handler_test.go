// internal/workers/dedup/batch-deduplicate/handler_test.go
package batchdeduplicate

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entity-dedup-workers/internal/common/logger"
	"entity-dedup-workers/internal/dedup"
	"entity-dedup-workers/internal/models"
	"entity-dedup-workers/internal/similarity"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	service := dedup.NewService(dedup.DefaultConfig(), similarity.NewScorer(), logger.NewNoOpLogger())
	return NewHandler(DefaultConfig(), service, nil, logger.NewNoOpLogger())
}

func TestExecuteSpeakersInline(t *testing.T) {
	h := newTestHandler(t)

	input := &Input{
		EntityType: "speakers",
		Speakers: []models.Speaker{
			{Name: "John Smith", Company: "Acme", Bio: "Keynote speaker"},
			{Name: "john  smith"},
			{Name: "Ada Lovelace"},
		},
	}

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "speakers", output.EntityType)
	assert.Len(t, output.AutoMerged, 1)
	assert.Len(t, output.KeptSeparate, 1)
	assert.Empty(t, output.ChunkErrors)
	assert.Equal(t, 3, output.Stats.TotalProcessed)
}

func TestExecuteChunksLargeInput(t *testing.T) {
	h := newTestHandler(t)

	// 120 distinct events split across two chunks, plus one duplicate placed
	// adjacent to its twin so the pair lands inside the first chunk.
	events := make([]models.Event, 0, 121)
	for i := 0; i < 120; i++ {
		ev := models.Event{
			Name:     fmt.Sprintf("Conference %03d", i),
			Date:     "2026-09-01",
			Location: fmt.Sprintf("City %03d", i),
		}
		events = append(events, ev)
		if i == 0 {
			events = append(events, ev)
		}
	}

	output, err := h.Execute(context.Background(), &Input{
		EntityType: "events",
		Events:     events,
		ChunkSize:  100,
	})
	require.NoError(t, err)

	assert.Equal(t, 121, output.Stats.TotalProcessed)
	assert.Empty(t, output.ChunkErrors)
	assert.Len(t, output.AutoMerged, 1)
	total := len(output.KeptSeparate)
	for _, m := range output.AutoMerged {
		total += 1 + len(m.MergedFrom)
	}
	for _, item := range output.ManualReview {
		total += len(item.Candidates)
	}
	assert.Equal(t, 121, total, "every event must land in exactly one bucket")
}

func TestExecuteThresholdOverride(t *testing.T) {
	h := newTestHandler(t)

	// Same date and location, two of three name tokens shared. Confidence is
	// 0.4*(2/3) + 0.3 + 0.3 ~= 0.867, under the default 0.9 auto-merge bar.
	events := []models.Event{
		{Name: "Tech Summit 2026", Date: "2026-09-14", Location: "Berlin"},
		{Name: "Tech Summit Berlin", Date: "2026-09-14", Location: "Berlin"},
	}

	strict, err := h.Execute(context.Background(), &Input{
		EntityType: "events",
		Events:     events,
	})
	require.NoError(t, err)
	assert.Empty(t, strict.AutoMerged)
	assert.Len(t, strict.ManualReview, 1)

	relaxed, err := h.Execute(context.Background(), &Input{
		EntityType:          "events",
		Events:              events,
		ConfidenceThreshold: 0.8,
	})
	require.NoError(t, err)
	assert.Len(t, relaxed.AutoMerged, 1)
	assert.Empty(t, relaxed.ManualReview)
}

func TestExecuteAutoMergeDisabled(t *testing.T) {
	h := newTestHandler(t)
	disabled := false

	output, err := h.Execute(context.Background(), &Input{
		EntityType: "companies",
		Companies: []models.Company{
			{Name: "Initech", Domain: "initech.com"},
			{Name: "Initech Inc", Domain: "initech.com"},
		},
		AutoMerge: &disabled,
	})
	require.NoError(t, err)

	assert.Empty(t, output.AutoMerged)
	assert.Len(t, output.ManualReview, 1)
}

func TestExecuteInvalidEntityType(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{EntityType: "venues"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_ENTITY_TYPE")
}

func TestExecuteNilInput(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VALIDATION_FAILED")
}

func TestExecuteNoStoreConfigured(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{
		EntityType: "speakers",
		EntityIDs:  []string{"spk-1"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VALIDATION_FAILED")
}

func TestExecuteMinQualityScoreFiltersJunk(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		EntityType:      "events",
		MinQualityScore: 0.4,
		Events: []models.Event{
			{ID: "ev-1", Name: "Tech Conference Berlin", Date: "2026-09-14", Location: "Berlin"},
			{ID: "ev-2", Name: "Tech Conference Berlin", Date: "2026-09-14", Location: "Berlin"},
			// Nearly empty record, dropped before the run.
			{ID: "ev-3", Name: "x"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, output.FilteredLowQuality)
	assert.Equal(t, 2, output.Stats.TotalProcessed)
	require.Len(t, output.AutoMerged, 1)
}
