// internal/workers/dedup/search-candidates/handler.go
package searchcandidates

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "entity-dedup-workers/internal/common/errors"
	"entity-dedup-workers/internal/common/logger"
	"entity-dedup-workers/internal/models"
	"entity-dedup-workers/internal/store"
)

const (
	TaskType = "search-candidates"
)

type Handler struct {
	config *Config
	search *store.SearchStore
	logger logger.Logger
	errors *apperrors.ErrorHandler
}

func NewHandler(config *Config, search *store.SearchStore, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		search: search,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		errors: apperrors.NewErrorHandler(log),
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
	if input.Query == "" {
		return nil, apperrors.NewValidationFailedError("query cannot be empty")
	}

	size := input.Size
	if size <= 0 {
		size = h.config.DefaultSize
	}

	candidates, err := h.search.SearchCandidates(ctx, entityType, input.Query, size)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(input.EntityType, err)
	}

	return &Output{
		EntityType: input.EntityType,
		Candidates: candidates,
		Count:      len(candidates),
	}, nil
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
