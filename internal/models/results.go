// internal/models/results.go
package models

import "time"

// ReviewType tags a pending review item with the merge it proposes.
type ReviewType string

const (
	ReviewTypeSpeakerMerge ReviewType = "speaker_merge"
	ReviewTypeCompanyMerge ReviewType = "company_merge"
	ReviewTypeEventMerge   ReviewType = "event_merge"
)

// EntityType maps a review type back to the entity type it merges.
func (t ReviewType) EntityType() EntityType {
	switch t {
	case ReviewTypeSpeakerMerge:
		return EntityTypeSpeakers
	case ReviewTypeCompanyMerge:
		return EntityTypeCompanies
	case ReviewTypeEventMerge:
		return EntityTypeEvents
	}
	return ""
}

// ReviewItem is an ambiguous candidate group queued for a human decision.
// It is immutable until resolved by an approve/reject call.
type ReviewItem struct {
	ID         string        `json:"id"`
	Type       ReviewType    `json:"type"`
	Candidates []interface{} `json:"candidates"`
	Confidence float64       `json:"confidence"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// MergeOutcome is the canonical record produced by an auto-merge or an
// approved review. MergedFrom always equals candidates minus the primary,
// preserved for audit/undo. The original entities are never mutated.
type MergeOutcome struct {
	Primary    interface{}            `json:"primary"`
	MergedData map[string]interface{} `json:"mergedData"`
	MergedFrom []interface{}          `json:"mergedFrom"`
}

// ChunkError reports a failure isolated to a single chunk of a batch run.
type ChunkError struct {
	ChunkIndex int    `json:"chunkIndex"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// DeduplicationStats summarizes one deduplication run.
type DeduplicationStats struct {
	TotalProcessed   int `json:"totalProcessed"`
	AutoMergedGroups int `json:"autoMergedGroups"`
	ManualReview     int `json:"manualReviewItems"`
	KeptSeparate     int `json:"keptSeparate"`
}

// DeduplicationResult partitions the input: every input entity appears in
// exactly one of AutoMerged (as primary or within MergedFrom), ManualReview
// (within some item's candidates), or KeptSeparate.
type DeduplicationResult struct {
	AutoMerged   []MergeOutcome     `json:"autoMerged"`
	ManualReview []ReviewItem       `json:"manualReviewItems"`
	KeptSeparate []interface{}      `json:"keptSeparate"`
	Stats        DeduplicationStats `json:"stats"`
	ChunkErrors  []ChunkError       `json:"chunkErrors,omitempty"`
	CacheHit     bool               `json:"cacheHit,omitempty"`
}
