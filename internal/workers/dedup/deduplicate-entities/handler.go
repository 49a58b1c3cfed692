// internal/workers/dedup/deduplicate-entities/handler.go
package deduplicateentities

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"entity-dedup-workers/internal/cache"
	apperrors "entity-dedup-workers/internal/common/errors"
	"entity-dedup-workers/internal/common/logger"
	"entity-dedup-workers/internal/dedup"
	"entity-dedup-workers/internal/models"
	"entity-dedup-workers/internal/store"
)

const (
	TaskType = "deduplicate-entities"
)

type Handler struct {
	config  *Config
	service *dedup.Service
	store   *store.EntityStore
	cache   *cache.ResultCache
	logger  logger.Logger
	errors  *apperrors.ErrorHandler
}

// NewHandler builds the handler. store and resultCache may be nil for
// deployments that only pass inline entities and skip caching.
func NewHandler(config *Config, service *dedup.Service, entityStore *store.EntityStore, resultCache *cache.ResultCache, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		service: service,
		store:   entityStore,
		cache:   resultCache,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
		errors:  apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errors.HandleJobError(context.Background(), client, job, apperrors.NewValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewValidationFailedError("input cannot be nil")
	}

	entityType := models.EntityType(input.EntityType)
	if !entityType.Valid() {
		return nil, apperrors.NewInvalidEntityTypeError(input.EntityType)
	}

	useCache := h.config.CacheEnabled && h.cache != nil
	if input.UseCache != nil {
		useCache = *input.UseCache && h.cache != nil
	}

	switch entityType {
	case models.EntityTypeSpeakers:
		speakers := input.Speakers
		if len(speakers) == 0 {
			var err error
			speakers, err = h.fetchSpeakers(ctx, input.EntityIDs)
			if err != nil {
				return nil, err
			}
		}
		return h.run(ctx, entityType, speakers, useCache, func() (*models.DeduplicationResult, error) {
			return h.service.DeduplicateSpeakers(ctx, speakers)
		})

	case models.EntityTypeCompanies:
		companies := input.Companies
		if len(companies) == 0 {
			var err error
			companies, err = h.fetchCompanies(ctx, input.EntityIDs)
			if err != nil {
				return nil, err
			}
		}
		return h.run(ctx, entityType, companies, useCache, func() (*models.DeduplicationResult, error) {
			return h.service.DeduplicateCompanies(ctx, companies)
		})

	default:
		events := input.Events
		if len(events) == 0 {
			var err error
			events, err = h.fetchEvents(ctx, input.EntityIDs)
			if err != nil {
				return nil, err
			}
		}
		return h.run(ctx, entityType, events, useCache, func() (*models.DeduplicationResult, error) {
			return h.service.DeduplicateEvents(ctx, events)
		})
	}
}

// run wraps a pipeline call with the content-hash cache.
func (h *Handler) run(ctx context.Context, entityType models.EntityType, entitiesIn interface{}, useCache bool, call func() (*models.DeduplicationResult, error)) (*Output, error) {
	var cacheKey string
	if useCache {
		key, err := cache.Key(string(entityType), entitiesIn)
		if err == nil {
			cacheKey = key
			if cached, ok := h.cache.Get(ctx, cacheKey); ok {
				h.logger.Info("serving result from cache", map[string]interface{}{
					"entityType": string(entityType),
				})
				return toOutput(entityType, cached), nil
			}
		}
	}

	result, err := call()
	if err != nil {
		return nil, err
	}

	if useCache && cacheKey != "" {
		h.cache.Set(ctx, cacheKey, result)
	}
	return toOutput(entityType, result), nil
}

func (h *Handler) fetchSpeakers(ctx context.Context, ids []string) ([]models.Speaker, error) {
	if h.store == nil {
		return nil, apperrors.NewValidationFailedError("no inline speakers and no entity store configured")
	}
	speakers, err := h.store.FetchSpeakers(ctx, ids)
	if err != nil {
		return nil, apperrors.NewEntityFetchFailedError("speakers", err)
	}
	return speakers, nil
}

func (h *Handler) fetchCompanies(ctx context.Context, ids []string) ([]models.Company, error) {
	if h.store == nil {
		return nil, apperrors.NewValidationFailedError("no inline companies and no entity store configured")
	}
	companies, err := h.store.FetchCompanies(ctx, ids)
	if err != nil {
		return nil, apperrors.NewEntityFetchFailedError("companies", err)
	}
	return companies, nil
}

func (h *Handler) fetchEvents(ctx context.Context, ids []string) ([]models.Event, error) {
	if h.store == nil {
		return nil, apperrors.NewValidationFailedError("no inline events and no entity store configured")
	}
	events, err := h.store.FetchEvents(ctx, ids)
	if err != nil {
		return nil, apperrors.NewEntityFetchFailedError("events", err)
	}
	return events, nil
}

func toOutput(entityType models.EntityType, result *models.DeduplicationResult) *Output {
	return &Output{
		EntityType:   string(entityType),
		AutoMerged:   result.AutoMerged,
		ManualReview: result.ManualReview,
		KeptSeparate: result.KeptSeparate,
		Stats:        result.Stats,
		CacheHit:     result.CacheHit,
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

// Execute exposes the core logic for tests and embedding.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
