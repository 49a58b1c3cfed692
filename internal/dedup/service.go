// internal/dedup/service.go
package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "entity-dedup-workers/internal/common/errors"
	"entity-dedup-workers/internal/common/logger"
	"entity-dedup-workers/internal/common/metrics"
	"entity-dedup-workers/internal/models"
	"entity-dedup-workers/internal/quality"
)

// Config holds the engine's decision knobs.
type Config struct {
	HighThreshold   float64
	MediumThreshold float64
	MaxWorkers      int
}

func DefaultConfig() Config {
	return Config{
		HighThreshold:   HighConfidenceThreshold,
		MediumThreshold: MediumConfidenceThreshold,
		MaxWorkers:      4,
	}
}

// Service is the deduplication engine. It behaves as a single logical actor:
// one mutex serializes every public operation, so review-queue invariants
// (no double approval, no lost enqueue) hold without further coordination.
// Construct one instance at process start and share it by reference.
type Service struct {
	mu       sync.Mutex
	cfg      Config
	provider SimilarityProvider
	quality  *quality.Scorer
	queue    *ReviewQueue
	logger   logger.Logger
}

func NewService(cfg Config, provider SimilarityProvider, log logger.Logger) *Service {
	if cfg.HighThreshold == 0 {
		cfg.HighThreshold = HighConfidenceThreshold
	}
	if cfg.MediumThreshold == 0 {
		cfg.MediumThreshold = MediumConfidenceThreshold
	}
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 1
	}
	return &Service{
		cfg:      cfg,
		provider: provider,
		quality:  quality.NewScorer(),
		queue:    NewReviewQueue(),
		logger:   log.WithFields(map[string]interface{}{"component": "dedup-service"}),
	}
}

func (s *Service) defaultRunOptions() runOptions {
	return runOptions{
		highThreshold:    s.cfg.HighThreshold,
		mediumThreshold:  s.cfg.MediumThreshold,
		autoMergeEnabled: true,
	}
}

// DeduplicateSpeakers runs the full pipeline over one list of speakers.
func (s *Service) DeduplicateSpeakers(ctx context.Context, speakers []models.Speaker) (*models.DeduplicationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dedupeSpeakers(ctx, speakers, s.defaultRunOptions())
}

// DeduplicateCompanies runs the full pipeline over one list of companies.
func (s *Service) DeduplicateCompanies(ctx context.Context, companies []models.Company) (*models.DeduplicationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dedupeCompanies(ctx, companies, s.defaultRunOptions())
}

// DeduplicateEvents runs the full pipeline over one list of events.
func (s *Service) DeduplicateEvents(ctx context.Context, events []models.Event) (*models.DeduplicationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dedupeEvents(ctx, events, s.defaultRunOptions())
}

// GetReviewQueue returns a read-only snapshot of the pending review items.
func (s *Service) GetReviewQueue() []models.ReviewItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Snapshot()
}

// ApproveMerge resolves a pending review item. Approval removes the item and
// resolves the merge over its candidates with the same primary-selection rule
// as auto-merge; rejection removes the item and returns a nil outcome.
// Returns REVIEW_ITEM_NOT_FOUND when the id is unknown or already resolved.
func (s *Service) ApproveMerge(id string, approved bool) (*models.MergeOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.queue.Remove(id)
	if !ok {
		return nil, apperrors.NewReviewItemNotFoundError(id)
	}
	metrics.ReviewQueueDepth.Set(float64(s.queue.Len()))

	if !approved {
		s.logger.Info("review item rejected", map[string]interface{}{
			"reviewItemId": id,
			"type":         string(item.Type),
		})
		return nil, nil
	}

	outcome, err := resolveReviewMerge(item)
	if err != nil {
		return nil, err
	}

	s.logger.Info("review item approved and merged", map[string]interface{}{
		"reviewItemId": id,
		"type":         string(item.Type),
		"mergedFrom":   len(outcome.MergedFrom),
	})
	return outcome, nil
}

// resolveReviewMerge re-runs the merge resolver over a review item's
// candidates, which were stored as the typed values they were enqueued with.
func resolveReviewMerge(item models.ReviewItem) (*models.MergeOutcome, error) {
	switch item.Type {
	case models.ReviewTypeSpeakerMerge:
		group := make([]models.Speaker, 0, len(item.Candidates))
		for _, c := range item.Candidates {
			sp, ok := c.(models.Speaker)
			if !ok {
				return nil, apperrors.NewComputationFailedError("review-merge", fmt.Errorf("candidate is not a speaker: %T", c))
			}
			group = append(group, sp)
		}
		outcome := mergeSpeakers(group)
		return &outcome, nil

	case models.ReviewTypeCompanyMerge:
		group := make([]models.Company, 0, len(item.Candidates))
		for _, c := range item.Candidates {
			co, ok := c.(models.Company)
			if !ok {
				return nil, apperrors.NewComputationFailedError("review-merge", fmt.Errorf("candidate is not a company: %T", c))
			}
			group = append(group, co)
		}
		outcome := mergeCompanies(group)
		return &outcome, nil

	case models.ReviewTypeEventMerge:
		group := make([]models.Event, 0, len(item.Candidates))
		for _, c := range item.Candidates {
			ev, ok := c.(models.Event)
			if !ok {
				return nil, apperrors.NewComputationFailedError("review-merge", fmt.Errorf("candidate is not an event: %T", c))
			}
			group = append(group, ev)
		}
		outcome := mergeEvents(group)
		return &outcome, nil
	}

	return nil, apperrors.NewComputationFailedError("review-merge", fmt.Errorf("unknown review type %q", item.Type))
}

// pipeline is the per-type wiring the generic runner needs: a pre-filter
// grouper, a pairwise scorer, a decision function, and a merge resolver.
type pipeline[T any] struct {
	entityType models.EntityType
	reviewType models.ReviewType
	group      func([]T) (groups [][]int, singles []int)
	pair       func(a, b T) float64
	decide     func(group []T, confidence float64, opts runOptions) Outcome
	merge      func(group []T) models.MergeOutcome
}

func (s *Service) dedupeSpeakers(ctx context.Context, speakers []models.Speaker, opts runOptions) (*models.DeduplicationResult, error) {
	prepared := make([]models.Speaker, len(speakers))
	for i, sp := range speakers {
		prepared[i] = sp
		if prepared[i].NormalizedName == "" {
			prepared[i].NormalizedName = s.provider.Normalize(sp.Name)
		}
		if prepared[i].ConfidenceScore == 0 {
			prepared[i].ConfidenceScore = s.quality.ScoreSpeaker(sp)
		}
	}

	return runPipeline(ctx, s, prepared, pipeline[models.Speaker]{
		entityType: models.EntityTypeSpeakers,
		reviewType: models.ReviewTypeSpeakerMerge,
		group:      s.groupSpeakers,
		pair:       s.speakerPairConfidence,
		decide: func(_ []models.Speaker, confidence float64, o runOptions) Outcome {
			return decide(confidence, o)
		},
		merge: mergeSpeakers,
	}, opts)
}

func (s *Service) dedupeCompanies(ctx context.Context, companies []models.Company, opts runOptions) (*models.DeduplicationResult, error) {
	prepared := make([]models.Company, len(companies))
	for i, c := range companies {
		prepared[i] = c
		if prepared[i].NormalizedName == "" {
			prepared[i].NormalizedName = s.provider.Normalize(c.Name)
		}
	}

	return runPipeline(ctx, s, prepared, pipeline[models.Company]{
		entityType: models.EntityTypeCompanies,
		reviewType: models.ReviewTypeCompanyMerge,
		group:      s.groupCompanies,
		pair:       s.companyPairConfidence,
		decide:     decideCompanies,
		merge:      mergeCompanies,
	}, opts)
}

func (s *Service) dedupeEvents(ctx context.Context, events []models.Event, opts runOptions) (*models.DeduplicationResult, error) {
	prepared := make([]models.Event, len(events))
	for i, e := range events {
		prepared[i] = e
		if prepared[i].DataQualityScore == 0 {
			prepared[i].DataQualityScore = s.quality.ScoreEvent(e)
		}
	}

	return runPipeline(ctx, s, prepared, pipeline[models.Event]{
		entityType: models.EntityTypeEvents,
		reviewType: models.ReviewTypeEventMerge,
		group:      s.groupEvents,
		pair:       s.eventPairConfidence,
		decide: func(_ []models.Event, confidence float64, o runOptions) Outcome {
			return decide(confidence, o)
		},
		merge: mergeEvents,
	}, opts)
}

// runPipeline executes group → score → decide → merge/enqueue/keep for one
// entity list. Every input entity lands in exactly one result bucket. Panics
// in scoring or merge resolution are recovered here and surfaced as a
// COMPUTATION_FAILED error, so a malformed call can never crash the actor.
func runPipeline[T any](ctx context.Context, s *Service, items []T, p pipeline[T], opts runOptions) (result *models.DeduplicationResult, err error) {
	start := time.Now()
	defer func() {
		metrics.DedupRunDuration.WithLabelValues(string(p.entityType)).Observe(time.Since(start).Seconds())
	}()
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = apperrors.NewComputationFailedError(string(p.entityType), fmt.Errorf("panic: %v", r))
			metrics.DedupRunsFailed.WithLabelValues(string(p.entityType), string(apperrors.ErrCodeComputationFailed)).Inc()
		}
	}()

	result = &models.DeduplicationResult{
		AutoMerged:   []models.MergeOutcome{},
		ManualReview: []models.ReviewItem{},
		KeptSeparate: []interface{}{},
	}
	result.Stats.TotalProcessed = len(items)

	if len(items) == 0 {
		return result, nil
	}

	groupIdx, singles := p.group(items)
	for _, idx := range singles {
		result.KeptSeparate = append(result.KeptSeparate, items[idx])
	}

	groups := make([][]T, len(groupIdx))
	for i, members := range groupIdx {
		group := make([]T, len(members))
		for j, idx := range members {
			group[j] = items[idx]
		}
		groups[i] = group
	}

	confidences, err := scoreGroups(ctx, groups, s.cfg.MaxWorkers, p.pair)
	if err != nil {
		if ctx.Err() != nil {
			metrics.DedupRunsFailed.WithLabelValues(string(p.entityType), string(apperrors.ErrCodeOperationTimeout)).Inc()
			return nil, apperrors.NewOperationTimeoutError(string(p.entityType))
		}
		metrics.DedupRunsFailed.WithLabelValues(string(p.entityType), string(apperrors.ErrCodeComputationFailed)).Inc()
		return nil, apperrors.NewComputationFailedError(string(p.entityType), err)
	}

	for i, group := range groups {
		confidence := confidences[i]
		outcome := p.decide(group, confidence, opts)
		metrics.DedupGroupDecisions.WithLabelValues(string(p.entityType), outcome.String()).Inc()

		s.logger.Debug("group decided", map[string]interface{}{
			"entityType": string(p.entityType),
			"group":      groupKey(string(p.entityType), groupIdx[i]),
			"size":       len(group),
			"confidence": confidence,
			"outcome":    outcome.String(),
		})

		switch outcome {
		case OutcomeAutoMerge:
			result.AutoMerged = append(result.AutoMerged, p.merge(group))
			result.Stats.AutoMergedGroups++

		case OutcomeManualReview:
			item := newReviewItem(p.reviewType, toInterfaces(group), confidence)
			s.queue.Enqueue(item)
			metrics.ReviewQueueDepth.Set(float64(s.queue.Len()))
			result.ManualReview = append(result.ManualReview, item)

		case OutcomeKeepSeparate:
			for _, member := range group {
				result.KeptSeparate = append(result.KeptSeparate, member)
			}
		}
	}

	result.Stats.ManualReview = len(result.ManualReview)
	result.Stats.KeptSeparate = len(result.KeptSeparate)
	metrics.DedupRunsCompleted.WithLabelValues(string(p.entityType)).Inc()

	s.logger.Info("deduplication run completed", map[string]interface{}{
		"entityType":   string(p.entityType),
		"processed":    result.Stats.TotalProcessed,
		"autoMerged":   result.Stats.AutoMergedGroups,
		"manualReview": result.Stats.ManualReview,
		"keptSeparate": result.Stats.KeptSeparate,
	})
	return result, nil
}
