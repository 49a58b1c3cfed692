// internal/workers/dedup/search-candidates/validation.go
package searchcandidates

import "entity-dedup-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"entityType", "query"},
		Properties: map[string]validation.Property{
			"entityType": {
				Type:        "string",
				Description: "Entity type to search",
				Enum:        []string{"speakers", "companies", "events"},
			},
			"query": {
				Type:        "string",
				Description: "Free-text name query",
			},
			"size": {
				Type:        "integer",
				Description: "Maximum candidates to return",
			},
		},
	}
}
