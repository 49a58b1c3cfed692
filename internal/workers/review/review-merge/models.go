// internal/workers/review/review-merge/models.go
package reviewmerge

import "entity-dedup-workers/internal/models"

const (
	ActionList    = "list"
	ActionApprove = "approve"
)

type Input struct {
	Action string `json:"action"`

	// Approve fields. Approved false rejects the item and discards the
	// proposed merge.
	ReviewItemID string `json:"reviewItemId,omitempty"`
	Approved     bool   `json:"approved,omitempty"`
	DecidedBy    string `json:"decidedBy,omitempty"`
}

type Output struct {
	Action string `json:"action"`

	// List response.
	Items []models.ReviewItem `json:"items,omitempty"`
	Count int                 `json:"count,omitempty"`

	// Approve response. Outcome is nil on rejection.
	Resolved bool                 `json:"resolved,omitempty"`
	Merged   bool                 `json:"merged,omitempty"`
	Outcome  *models.MergeOutcome `json:"outcome,omitempty"`
}
