// internal/dedup/batch.go
package dedup

import (
	"context"

	apperrors "entity-dedup-workers/internal/common/errors"
	"entity-dedup-workers/internal/models"
)

const defaultChunkSize = 100

// BatchOptions tunes a single batch run without mutating service config.
// ConfidenceThreshold, when set, overrides the auto-merge threshold for this
// run only. AutoMergeEnabled=false demotes every would-be auto-merge to
// manual review.
type BatchOptions struct {
	ChunkSize           int
	ConfidenceThreshold float64
	AutoMergeEnabled    *bool
}

func (o BatchOptions) chunkSize() int {
	if o.ChunkSize < 1 {
		return defaultChunkSize
	}
	return o.ChunkSize
}

func (s *Service) batchRunOptions(o BatchOptions) runOptions {
	opts := s.defaultRunOptions()
	if o.ConfidenceThreshold > 0 {
		opts.highThreshold = o.ConfidenceThreshold
	}
	if o.AutoMergeEnabled != nil {
		opts.autoMergeEnabled = *o.AutoMergeEnabled
	}
	return opts
}

// BatchDeduplicateSpeakers processes speakers in fixed-size chunks. A failed
// chunk is recorded and skipped; the remaining chunks still run. Entities in
// failed chunks appear in no result bucket but still count toward
// TotalProcessed, so callers can detect loss from Stats plus ChunkErrors.
func (s *Service) BatchDeduplicateSpeakers(ctx context.Context, speakers []models.Speaker, o BatchOptions) (*models.DeduplicationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := s.batchRunOptions(o)
	return runBatch(ctx, s, speakers, o.chunkSize(), func(ctx context.Context, items []models.Speaker) (*models.DeduplicationResult, error) {
		return s.dedupeSpeakers(ctx, items, opts)
	})
}

// BatchDeduplicateCompanies processes companies in fixed-size chunks with
// per-chunk failure isolation.
func (s *Service) BatchDeduplicateCompanies(ctx context.Context, companies []models.Company, o BatchOptions) (*models.DeduplicationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := s.batchRunOptions(o)
	return runBatch(ctx, s, companies, o.chunkSize(), func(ctx context.Context, items []models.Company) (*models.DeduplicationResult, error) {
		return s.dedupeCompanies(ctx, items, opts)
	})
}

// BatchDeduplicateEvents processes events in fixed-size chunks with per-chunk
// failure isolation.
func (s *Service) BatchDeduplicateEvents(ctx context.Context, events []models.Event, o BatchOptions) (*models.DeduplicationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := s.batchRunOptions(o)
	return runBatch(ctx, s, events, o.chunkSize(), func(ctx context.Context, items []models.Event) (*models.DeduplicationResult, error) {
		return s.dedupeEvents(ctx, items, opts)
	})
}

// chunk splits items into consecutive slices of at most size elements. The
// final chunk may be shorter. Chunking bounds pairwise comparison cost: a
// duplicate pair split across a chunk boundary is missed, which the caller
// accepts as the cost of linear scaling.
func chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

func runBatch[T any](ctx context.Context, s *Service, items []T, size int, run func(context.Context, []T) (*models.DeduplicationResult, error)) (*models.DeduplicationResult, error) {
	aggregate := &models.DeduplicationResult{
		AutoMerged:   []models.MergeOutcome{},
		ManualReview: []models.ReviewItem{},
		KeptSeparate: []interface{}{},
	}
	aggregate.Stats.TotalProcessed = len(items)

	for i, part := range chunk(items, size) {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewOperationTimeoutError("batch-deduplicate")
		}

		res, err := run(ctx, part)
		if err != nil {
			s.logger.WithError(err).Error("chunk failed, continuing with remaining chunks", map[string]interface{}{
				"chunkIndex": i,
				"chunkSize":  len(part),
			})
			chunkErr := apperrors.NewChunkFailedError(i, err)
			aggregate.ChunkErrors = append(aggregate.ChunkErrors, models.ChunkError{
				ChunkIndex: i,
				Error:      string(chunkErr.Code),
				Message:    chunkErr.Message,
			})
			continue
		}

		aggregate.AutoMerged = append(aggregate.AutoMerged, res.AutoMerged...)
		aggregate.ManualReview = append(aggregate.ManualReview, res.ManualReview...)
		aggregate.KeptSeparate = append(aggregate.KeptSeparate, res.KeptSeparate...)
		aggregate.Stats.AutoMergedGroups += res.Stats.AutoMergedGroups
	}

	aggregate.Stats.ManualReview = len(aggregate.ManualReview)
	aggregate.Stats.KeptSeparate = len(aggregate.KeptSeparate)
	return aggregate, nil
}
