// internal/workers/review/notify-review/models.go
package notifyreview

type Input struct {
	EntityType    string    `json:"entityType"`
	ReviewItemIDs []string  `json:"reviewItemIds"`
	Confidences   []float64 `json:"confidences,omitempty"`
}

type Output struct {
	Sent     bool     `json:"sent"`
	Channels []string `json:"channels,omitempty"`
	Count    int      `json:"count"`
}
