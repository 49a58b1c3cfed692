// internal/models/entities.go
package models

// EntityType identifies which kind of record a deduplication run operates on.
type EntityType string

const (
	EntityTypeSpeakers  EntityType = "speakers"
	EntityTypeCompanies EntityType = "companies"
	EntityTypeEvents    EntityType = "events"
)

// Valid reports whether the entity type is one of the supported values.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeSpeakers, EntityTypeCompanies, EntityTypeEvents:
		return true
	}
	return false
}

// Speaker is a candidate speaker record produced by a scraping/extraction pass.
type Speaker struct {
	ID              string  `json:"id,omitempty"`
	Name            string  `json:"name"`
	NormalizedName  string  `json:"normalizedName,omitempty"`
	Company         string  `json:"company,omitempty"`
	Bio             string  `json:"bio,omitempty"`
	ConfidenceScore float64 `json:"confidenceScore,omitempty"`
}

// Company is a candidate company record. Domain, when present, is treated as a
// near-definitive identity signal since domains are globally unique.
type Company struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalizedName,omitempty"`
	Domain         string `json:"domain,omitempty"`
	Industry       string `json:"industry,omitempty"`
}

// Event is a candidate event record. Identity is a coarse (date, location)
// key refined by name/description text overlap.
type Event struct {
	ID               string  `json:"id,omitempty"`
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	Location         string  `json:"location,omitempty"`
	Date             string  `json:"date,omitempty"` // YYYY-MM-DD
	DataQualityScore float64 `json:"dataQualityScore,omitempty"`
}
