// internal/store/search.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"entity-dedup-workers/internal/common/logger"
	"entity-dedup-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// SearchStore finds merge candidates by fuzzy name search in Elasticsearch,
// used when a workflow passes entity ids instead of inline records and wants
// nearby candidates included in the run.
type SearchStore struct {
	client *elasticsearch.Client
	logger logger.Logger
}

func NewSearchStore(client *elasticsearch.Client, log logger.Logger) *SearchStore {
	return &SearchStore{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "search-store"}),
	}
}

// Candidate is one fuzzy-matched search hit.
type Candidate struct {
	ID     string                 `json:"id"`
	Score  float64                `json:"score"`
	Source map[string]interface{} `json:"source"`
}

// SearchCandidates runs a fuzzy multi_match against the entity type's index.
func (s *SearchStore) SearchCandidates(ctx context.Context, entityType models.EntityType, name string, size int) ([]Candidate, error) {
	index, err := indexFor(entityType)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 10
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     name,
				"fields":    []string{"name^3", "normalized_name^2", "description"},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		},
	}

	body, _ := json.Marshal(queryBody)
	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("candidate search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("candidate search error: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string                 `json:"_id"`
				Score  float64                `json:"_score"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	candidates := make([]Candidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		candidates = append(candidates, Candidate{
			ID:     hit.ID,
			Score:  hit.Score,
			Source: hit.Source,
		})
	}
	return candidates, nil
}

func indexFor(entityType models.EntityType) (string, error) {
	switch entityType {
	case models.EntityTypeSpeakers:
		return "speakers", nil
	case models.EntityTypeCompanies:
		return "companies", nil
	case models.EntityTypeEvents:
		return "events", nil
	}
	return "", fmt.Errorf("unknown entity type %q", entityType)
}
