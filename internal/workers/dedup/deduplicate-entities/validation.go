// internal/workers/dedup/deduplicate-entities/validation.go
package deduplicateentities

import "entity-dedup-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"entityType"},
		Properties: map[string]validation.Property{
			"entityType": {
				Type:        "string",
				Description: "Entity type to deduplicate",
				Enum:        []string{"speakers", "companies", "events"},
			},
			"speakers": {
				Type:        "array",
				Description: "Inline speaker records",
				Items:       &validation.Property{Type: "object"},
			},
			"companies": {
				Type:        "array",
				Description: "Inline company records",
				Items:       &validation.Property{Type: "object"},
			},
			"events": {
				Type:        "array",
				Description: "Inline event records",
				Items:       &validation.Property{Type: "object"},
			},
			"entityIds": {
				Type:        "array",
				Description: "Entity ids to load from the store",
				Items:       &validation.Property{Type: "string"},
			},
			"useCache": {
				Type:        "boolean",
				Description: "Override the worker's result cache setting",
			},
		},
		AdditionalProperties: true,
	}
}
