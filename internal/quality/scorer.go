// internal/quality/scorer.go
package quality

import (
	"strings"
	"time"

	"entity-dedup-workers/internal/models"
)

// Scorer computes field-completeness confidence scores for extracted entities.
// Scores estimate how trustworthy a scraped record is, and feed the primary
// selection tie-break when a record arrives without an upstream score.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

var eventTitleKeywords = []string{"conference", "meetup", "workshop", "summit", "hackathon"}

// ScoreEvent rates an event record in [0,1]. Weights: title 30, date 25,
// location 20, description 15, bonus fields 10, with a small bonus for
// recognizable event-type keywords in the title.
func (s *Scorer) ScoreEvent(event models.Event) float64 {
	score := 0.0
	maxScore := 100.0

	title := strings.TrimSpace(event.Name)
	if len(title) > 5 {
		score += 30
		lower := strings.ToLower(title)
		for _, kw := range eventTitleKeywords {
			if strings.Contains(lower, kw) {
				score += 5
				maxScore += 5
				break
			}
		}
	}

	if event.Date != "" {
		if _, err := time.Parse("2006-01-02", event.Date); err == nil {
			score += 25
		} else {
			// Partial credit for a date in an unexpected format.
			score += 10
		}
	}

	if len(strings.TrimSpace(event.Location)) > 3 {
		score += 20
	}

	desc := strings.TrimSpace(event.Description)
	switch {
	case len(desc) > 50:
		score += 15
	case len(desc) > 10:
		score += 8
	}

	if event.DataQualityScore > 0 {
		score += 10
	}

	return clamp01(score / maxScore)
}

// ScoreSpeaker rates a speaker record in [0,1]. Weights: name 35 (+5 for a
// full first+last name), company 20, bio 10, with the remaining weight held
// by fields this pipeline does not extract.
func (s *Scorer) ScoreSpeaker(speaker models.Speaker) float64 {
	score := 0.0
	maxScore := 100.0

	name := strings.TrimSpace(speaker.Name)
	if len(name) > 3 {
		score += 35
		if len(strings.Fields(name)) >= 2 {
			score += 5
			maxScore += 5
		}
	}

	if len(strings.TrimSpace(speaker.Company)) > 2 {
		score += 20
	}

	bio := strings.TrimSpace(speaker.Bio)
	switch {
	case len(bio) > 20:
		score += 10
	case len(bio) > 5:
		score += 5
	}

	return clamp01(score / maxScore)
}

// ScoreCompany rates a company record in [0,1]. Weights: name 40, domain 25,
// industry 10.
func (s *Scorer) ScoreCompany(company models.Company) float64 {
	score := 0.0
	maxScore := 100.0

	if len(strings.TrimSpace(company.Name)) > 2 {
		score += 40
	}
	if company.Domain != "" {
		score += 25
	}
	if company.Industry != "" {
		score += 10
	}

	return clamp01(score / maxScore)
}

// FilterSpeakers drops speakers scoring below minScore and stamps the quality
// score on the survivors. Records arriving with an upstream score keep it.
func (s *Scorer) FilterSpeakers(speakers []models.Speaker, minScore float64) []models.Speaker {
	kept := make([]models.Speaker, 0, len(speakers))
	for _, sp := range speakers {
		score := sp.ConfidenceScore
		if score == 0 {
			score = s.ScoreSpeaker(sp)
		}
		if score < minScore {
			continue
		}
		sp.ConfidenceScore = score
		kept = append(kept, sp)
	}
	return kept
}

// FilterCompanies drops companies scoring below minScore. Companies carry no
// score field, so nothing is stamped.
func (s *Scorer) FilterCompanies(companies []models.Company, minScore float64) []models.Company {
	kept := make([]models.Company, 0, len(companies))
	for _, c := range companies {
		if s.ScoreCompany(c) < minScore {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// FilterEvents drops events scoring below minScore and stamps the quality
// score on the survivors.
func (s *Scorer) FilterEvents(events []models.Event, minScore float64) []models.Event {
	kept := make([]models.Event, 0, len(events))
	for _, e := range events {
		score := e.DataQualityScore
		if score == 0 {
			score = s.ScoreEvent(e)
		}
		if score < minScore {
			continue
		}
		e.DataQualityScore = score
		kept = append(kept, e)
	}
	return kept
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
