// internal/workers/review/review-merge/handler.go
package reviewmerge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "entity-dedup-workers/internal/common/errors"
	"entity-dedup-workers/internal/common/logger"
	"entity-dedup-workers/internal/common/validation"
	"entity-dedup-workers/internal/dedup"
	"entity-dedup-workers/internal/models"
	"entity-dedup-workers/internal/store"
)

const (
	TaskType = "review-merge"
)

type Handler struct {
	config  *Config
	service *dedup.Service
	store   *store.EntityStore
	logger  logger.Logger
	errors  *apperrors.ErrorHandler
}

// NewHandler builds the handler. store may be nil; approved merges are then
// returned to the workflow without being persisted.
func NewHandler(config *Config, service *dedup.Service, entityStore *store.EntityStore, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		service: service,
		store:   entityStore,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
		errors:  apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var variables map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &variables); err != nil {
		h.errors.HandleJobError(context.Background(), client, job, apperrors.NewValidationFailedError(fmt.Sprintf("parse variables: %v", err)))
		return
	}

	validationResult := validation.ValidateInput(variables, GetInputSchema())
	if !validationResult.Valid {
		h.errors.HandleJobError(context.Background(), client, job,
			apperrors.NewValidationFailedError(fmt.Sprintf("validation errors: %v", validationResult.GetErrorMessages())))
		return
	}

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

	switch input.Action {
	case ActionList:
		items := h.service.GetReviewQueue()
		return &Output{Action: ActionList, Items: items, Count: len(items)}, nil

	case ActionApprove:
		return h.approve(ctx, input)

	default:
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown action %q", input.Action))
	}
}

func (h *Handler) approve(ctx context.Context, input *Input) (*Output, error) {
	if input.ReviewItemID == "" {
		return nil, apperrors.NewValidationFailedError("reviewItemId is required for approve")
	}

	// The item type is needed for persistence and is gone from the queue
	// once ApproveMerge resolves it, so look it up first.
	var reviewType models.ReviewType
	for _, item := range h.service.GetReviewQueue() {
		if item.ID == input.ReviewItemID {
			reviewType = item.Type
			break
		}
	}

	outcome, err := h.service.ApproveMerge(input.ReviewItemID, input.Approved)
	if err != nil {
		return nil, err
	}

	if h.store != nil {
		if err := h.store.RecordReviewDecision(ctx, input.ReviewItemID, reviewType, input.Approved, input.DecidedBy); err != nil {
			// The decision itself already took effect on the queue.
			h.logger.WithError(err).Warn("failed to record review decision", map[string]interface{}{
				"reviewItemId": input.ReviewItemID,
			})
		}
	}

	if outcome == nil {
		return &Output{Action: ActionApprove, Resolved: true, Merged: false}, nil
	}

	if h.store != nil {
		if err := h.store.ApplyMerge(ctx, reviewType.EntityType(), *outcome); err != nil {
			return nil, apperrors.NewMergePersistFailedError(err)
		}
	}

	return &Output{Action: ActionApprove, Resolved: true, Merged: true, Outcome: outcome}, nil
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
