// internal/workers/dedup/batch-deduplicate/handler.go
package batchdeduplicate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "entity-dedup-workers/internal/common/errors"
	"entity-dedup-workers/internal/common/logger"
	"entity-dedup-workers/internal/dedup"
	"entity-dedup-workers/internal/models"
	"entity-dedup-workers/internal/quality"
	"entity-dedup-workers/internal/store"
)

const (
	TaskType = "batch-deduplicate"
)

type Handler struct {
	config  *Config
	service *dedup.Service
	store   *store.EntityStore
	quality *quality.Scorer
	logger  logger.Logger
	errors  *apperrors.ErrorHandler
}

// NewHandler builds the handler. store may be nil when every workflow passes
// inline entities.
func NewHandler(config *Config, service *dedup.Service, entityStore *store.EntityStore, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		service: service,
		store:   entityStore,
		quality: quality.NewScorer(),
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

	opts := dedup.BatchOptions{
		ChunkSize:           input.ChunkSize,
		ConfidenceThreshold: input.ConfidenceThreshold,
		AutoMergeEnabled:    input.AutoMerge,
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = h.config.DefaultChunkSize
	}

	var (
		result   *models.DeduplicationResult
		filtered int
		err      error
	)

	switch entityType {
	case models.EntityTypeSpeakers:
		speakers := input.Speakers
		if len(speakers) == 0 {
			speakers, err = h.fetchSpeakers(ctx, input.EntityIDs)
			if err != nil {
				return nil, err
			}
		}
		if input.MinQualityScore > 0 {
			before := len(speakers)
			speakers = h.quality.FilterSpeakers(speakers, input.MinQualityScore)
			filtered = before - len(speakers)
		}
		result, err = h.service.BatchDeduplicateSpeakers(ctx, speakers, opts)

	case models.EntityTypeCompanies:
		companies := input.Companies
		if len(companies) == 0 {
			companies, err = h.fetchCompanies(ctx, input.EntityIDs)
			if err != nil {
				return nil, err
			}
		}
		if input.MinQualityScore > 0 {
			before := len(companies)
			companies = h.quality.FilterCompanies(companies, input.MinQualityScore)
			filtered = before - len(companies)
		}
		result, err = h.service.BatchDeduplicateCompanies(ctx, companies, opts)

	default:
		events := input.Events
		if len(events) == 0 {
			events, err = h.fetchEvents(ctx, input.EntityIDs)
			if err != nil {
				return nil, err
			}
		}
		if input.MinQualityScore > 0 {
			before := len(events)
			events = h.quality.FilterEvents(events, input.MinQualityScore)
			filtered = before - len(events)
		}
		result, err = h.service.BatchDeduplicateEvents(ctx, events, opts)
	}

	if err != nil {
		return nil, err
	}

	if filtered > 0 {
		h.logger.Info("low-quality records filtered before dedup", map[string]interface{}{
			"entityType": string(entityType),
			"filtered":   filtered,
			"minScore":   input.MinQualityScore,
		})
	}

	return &Output{
		EntityType:         string(entityType),
		AutoMerged:         result.AutoMerged,
		ManualReview:       result.ManualReview,
		KeptSeparate:       result.KeptSeparate,
		Stats:              result.Stats,
		ChunkErrors:        result.ChunkErrors,
		FilteredLowQuality: filtered,
	}, nil
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
