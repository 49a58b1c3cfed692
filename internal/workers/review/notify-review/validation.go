// internal/workers/review/notify-review/validation.go
package notifyreview

import "entity-dedup-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"entityType", "reviewItemIds"},
		Properties: map[string]validation.Property{
			"entityType": {
				Type:        "string",
				Description: "Entity type the review items belong to",
				Enum:        []string{"speakers", "companies", "events"},
			},
			"reviewItemIds": {
				Type:        "array",
				Description: "Pending review item ids to announce",
				Items:       &validation.Property{Type: "string"},
			},
			"confidences": {
				Type:        "array",
				Description: "Group confidences, parallel to reviewItemIds",
				Items:       &validation.Property{Type: "number"},
			},
		},
		AdditionalProperties: true,
	}
}
