// internal/workers/dedup/deduplicate-entities/models.go
package deduplicateentities

import "entity-dedup-workers/internal/models"

type Input struct {
	EntityType string `json:"entityType"`

	// Inline entity payloads. Exactly one list should be populated and it
	// must match EntityType.
	Speakers  []models.Speaker `json:"speakers,omitempty"`
	Companies []models.Company `json:"companies,omitempty"`
	Events    []models.Event   `json:"events,omitempty"`

	// EntityIDs asks the worker to load the records from the store instead
	// of taking them inline. Empty ids with no inline list loads every
	// unmerged entity of the type.
	EntityIDs []string `json:"entityIds,omitempty"`

	// UseCache defaults to the worker config when nil.
	UseCache *bool `json:"useCache,omitempty"`
}

type Output struct {
	EntityType   string                    `json:"entityType"`
	AutoMerged   []models.MergeOutcome     `json:"autoMerged"`
	ManualReview []models.ReviewItem       `json:"manualReview"`
	KeptSeparate []interface{}             `json:"keptSeparate"`
	Stats        models.DeduplicationStats `json:"stats"`
	CacheHit     bool                      `json:"cacheHit"`
}
