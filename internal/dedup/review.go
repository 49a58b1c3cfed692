// internal/dedup/review.go
package dedup

import (
	"time"

	"entity-dedup-workers/internal/models"

	"github.com/google/uuid"
)

// ReviewQueue holds manual-review items pending a human decision. It is not
// safe for concurrent use on its own; the owning Service serializes access.
type ReviewQueue struct {
	items []models.ReviewItem
	index map[string]int
}

func NewReviewQueue() *ReviewQueue {
	return &ReviewQueue{index: make(map[string]int)}
}

// newReviewItem builds an immutable queue entry for an ambiguous group.
func newReviewItem(reviewType models.ReviewType, candidates []interface{}, confidence float64) models.ReviewItem {
	return models.ReviewItem{
		ID:         uuid.New().String(),
		Type:       reviewType,
		Candidates: candidates,
		Confidence: confidence,
		CreatedAt:  time.Now().UTC(),
	}
}

func (q *ReviewQueue) Enqueue(item models.ReviewItem) {
	q.index[item.ID] = len(q.items)
	q.items = append(q.items, item)
}

// Snapshot returns a copy of the pending items in enqueue order.
func (q *ReviewQueue) Snapshot() []models.ReviewItem {
	out := make([]models.ReviewItem, len(q.items))
	copy(out, q.items)
	return out
}

// Remove deletes and returns the item with the given id. A second call with
// the same id reports false, which is what makes double-approval fail.
func (q *ReviewQueue) Remove(id string) (models.ReviewItem, bool) {
	pos, ok := q.index[id]
	if !ok {
		return models.ReviewItem{}, false
	}

	item := q.items[pos]
	q.items = append(q.items[:pos], q.items[pos+1:]...)
	delete(q.index, id)
	for i := pos; i < len(q.items); i++ {
		q.index[q.items[i].ID] = i
	}
	return item, true
}

func (q *ReviewQueue) Len() int {
	return len(q.items)
}
