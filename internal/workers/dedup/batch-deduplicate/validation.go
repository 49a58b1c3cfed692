// internal/workers/dedup/batch-deduplicate/validation.go
package batchdeduplicate

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
			"chunkSize": {
				Type:        "integer",
				Description: "Entities per chunk, defaults to the worker setting",
			},
			"confidenceThreshold": {
				Type:        "number",
				Description: "Auto-merge confidence bar for this run",
			},
			"autoMerge": {
				Type:        "boolean",
				Description: "Allow automatic merging of high-confidence groups",
			},
			"minQualityScore": {
				Type:        "number",
				Description: "Drop records scoring below this quality bar before dedup",
			},
			"entityIds": {
				Type:        "array",
				Description: "Entity ids to load from the store",
				Items:       &validation.Property{Type: "string"},
			},
		},
		AdditionalProperties: true,
	}
}
