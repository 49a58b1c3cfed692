// internal/workers/dedup/deduplicate-entities/handler_test.go
package deduplicateentities

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entity-dedup-workers/internal/cache"
	"entity-dedup-workers/internal/common/database"
	"entity-dedup-workers/internal/common/logger"
	"entity-dedup-workers/internal/dedup"
	"entity-dedup-workers/internal/models"
	"entity-dedup-workers/internal/similarity"
)

func newTestService() *dedup.Service {
	return dedup.NewService(dedup.DefaultConfig(), similarity.NewScorer(), logger.NewNoOpLogger())
}

func newTestHandler(t *testing.T, resultCache *cache.ResultCache) *Handler {
	t.Helper()
	return NewHandler(DefaultConfig(), newTestService(), nil, resultCache, logger.NewNoOpLogger())
}

func newMiniredisCache(t *testing.T) *cache.ResultCache {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	return cache.NewResultCache(client, time.Hour, logger.NewNoOpLogger())
}

func TestExecuteSpeakersInline(t *testing.T) {
	h := newTestHandler(t, nil)

	output, err := h.Execute(context.Background(), &Input{
		EntityType: "speakers",
		Speakers: []models.Speaker{
			{Name: "Grace Hopper", Company: "Navy", Bio: "Compiler pioneer"},
			{Name: "grace  hopper"},
			{Name: "Alan Kay"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "speakers", output.EntityType)
	assert.Len(t, output.AutoMerged, 1)
	assert.Len(t, output.KeptSeparate, 1)
	assert.False(t, output.CacheHit)
	assert.Equal(t, 3, output.Stats.TotalProcessed)
}

func TestExecuteSecondRunServedFromCache(t *testing.T) {
	h := newTestHandler(t, newMiniredisCache(t))

	input := &Input{
		EntityType: "companies",
		Companies: []models.Company{
			{Name: "Acme Corp", Domain: "acme.com"},
			{Name: "ACME Corporation", Domain: "acme.com"},
		},
	}

	first, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Len(t, first.AutoMerged, 1)

	second, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Len(t, second.AutoMerged, 1)
	assert.Equal(t, first.Stats, second.Stats)
}

func TestExecuteUseCacheFalseBypassesCache(t *testing.T) {
	h := newTestHandler(t, newMiniredisCache(t))
	bypass := false

	input := &Input{
		EntityType: "events",
		Events: []models.Event{
			{Name: "DevOps Days", Date: "2026-10-01", Location: "Oslo"},
			{Name: "DevOps Days", Date: "2026-10-01", Location: "Oslo"},
		},
		UseCache: &bypass,
	}

	first, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, second.CacheHit)
}

func TestExecuteCacheMissStoresResult(t *testing.T) {
	client, mock := redismock.NewClientMock()
	resultCache := cache.NewResultCache(&database.RedisClient{Client: client}, time.Hour, logger.NewNoOpLogger())
	h := newTestHandler(t, resultCache)

	speakers := []models.Speaker{
		{Name: "Barbara Liskov"},
		{Name: "barbara liskov"},
	}
	key, err := cache.Key("speakers", speakers)
	require.NoError(t, err)

	mock.ExpectGet(key).RedisNil()
	mock.Regexp().ExpectSet(key, `.*`, time.Hour).SetVal("OK")

	output, err := h.Execute(context.Background(), &Input{
		EntityType: "speakers",
		Speakers:   speakers,
	})
	require.NoError(t, err)
	assert.False(t, output.CacheHit)
	assert.Len(t, output.AutoMerged, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteCacheHitSkipsPipeline(t *testing.T) {
	client, mock := redismock.NewClientMock()
	resultCache := cache.NewResultCache(&database.RedisClient{Client: client}, time.Hour, logger.NewNoOpLogger())
	h := newTestHandler(t, resultCache)

	events := []models.Event{
		{Name: "KubeCon", Date: "2026-11-10", Location: "Paris"},
	}
	key, err := cache.Key("events", events)
	require.NoError(t, err)

	stored := &models.DeduplicationResult{
		KeptSeparate: []interface{}{map[string]interface{}{"name": "KubeCon"}},
		Stats:        models.DeduplicationStats{TotalProcessed: 1, KeptSeparate: 1},
	}
	payload, err := json.Marshal(stored)
	require.NoError(t, err)
	mock.ExpectGet(key).SetVal(string(payload))

	output, err := h.Execute(context.Background(), &Input{
		EntityType: "events",
		Events:     events,
	})
	require.NoError(t, err)
	assert.True(t, output.CacheHit)
	assert.Equal(t, 1, output.Stats.TotalProcessed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteInvalidEntityType(t *testing.T) {
	h := newTestHandler(t, nil)

	_, err := h.Execute(context.Background(), &Input{EntityType: "attendees"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_ENTITY_TYPE")
}

func TestExecuteNoStoreConfigured(t *testing.T) {
	h := newTestHandler(t, nil)

	_, err := h.Execute(context.Background(), &Input{EntityType: "companies"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VALIDATION_FAILED")
}
