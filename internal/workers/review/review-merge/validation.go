// internal/workers/review/review-merge/validation.go
package reviewmerge

import "entity-dedup-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"action"},
		Properties: map[string]validation.Property{
			"action": {
				Type:        "string",
				Description: "Queue operation to perform",
				Enum:        []string{ActionList, ActionApprove},
			},
			"reviewItemId": {
				Type:        "string",
				Description: "Pending review item id, required for approve",
			},
			"approved": {
				Type:        "boolean",
				Description: "True merges the candidates, false discards the proposal",
			},
			"decidedBy": {
				Type:        "string",
				Description: "Reviewer identity recorded in the audit trail",
			},
		},
		AdditionalProperties: true,
	}
}
