// internal/workers/dedup/search-candidates/models.go
package searchcandidates

import "entity-dedup-workers/internal/store"

type Input struct {
	EntityType string `json:"entityType"`
	Query      string `json:"query"`
	Size       int    `json:"size,omitempty"`
}

type Output struct {
	EntityType string            `json:"entityType"`
	Candidates []store.Candidate `json:"candidates"`
	Count      int               `json:"count"`
}
