// internal/workers/dedup/batch-deduplicate/models.go
package batchdeduplicate

import "entity-dedup-workers/internal/models"

type Input struct {
	EntityType string `json:"entityType"`

	Speakers  []models.Speaker `json:"speakers,omitempty"`
	Companies []models.Company `json:"companies,omitempty"`
	Events    []models.Event   `json:"events,omitempty"`

	// Batch knobs. ChunkSize falls back to the worker default; a positive
	// ConfidenceThreshold overrides the auto-merge bar for this run only.
	// A positive MinQualityScore drops low-quality records before dedup.
	ChunkSize           int      `json:"chunkSize,omitempty"`
	ConfidenceThreshold float64  `json:"confidenceThreshold,omitempty"`
	AutoMerge           *bool    `json:"autoMerge,omitempty"`
	MinQualityScore     float64  `json:"minQualityScore,omitempty"`
	EntityIDs           []string `json:"entityIds,omitempty"`
}

type Output struct {
	EntityType   string                    `json:"entityType"`
	AutoMerged   []models.MergeOutcome     `json:"autoMerged"`
	ManualReview []models.ReviewItem       `json:"manualReview"`
	KeptSeparate []interface{}             `json:"keptSeparate"`
	Stats        models.DeduplicationStats `json:"stats"`
	ChunkErrors  []models.ChunkError       `json:"chunkErrors,omitempty"`

	// FilteredLowQuality counts records dropped by MinQualityScore before
	// the run; they are not part of the result partition.
	FilteredLowQuality int `json:"filteredLowQuality,omitempty"`
}
