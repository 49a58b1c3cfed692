// internal/dedup/merge.go
package dedup

import "entity-dedup-workers/internal/models"

// Primary-selection completeness weights (see the per-type score functions).
const (
	speakerCompanyWeight = 0.1
	speakerBioWeight     = 0.2
	companyDomainWeight  = 0.5
	companyIndustryWeight = 0.3
)

// speakerPrimaryScore ranks a speaker for primary selection: upstream
// confidence plus completeness bonuses for company and bio.
func speakerPrimaryScore(sp models.Speaker) float64 {
	score := sp.ConfidenceScore
	if sp.Company != "" {
		score += speakerCompanyWeight
	}
	if sp.Bio != "" {
		score += speakerBioWeight
	}
	return score
}

func companyPrimaryScore(c models.Company) float64 {
	score := 0.0
	if c.Domain != "" {
		score += companyDomainWeight
	}
	if c.Industry != "" {
		score += companyIndustryWeight
	}
	return score
}

func eventPrimaryScore(e models.Event) float64 {
	return e.DataQualityScore
}

// selectPrimary returns the index of the highest-scoring member. Ties resolve
// to the first-encountered member, so results are deterministic for a stable
// input order.
func selectPrimary[T any](group []T, score func(T) float64) int {
	best := 0
	bestScore := score(group[0])
	for i := 1; i < len(group); i++ {
		if s := score(group[i]); s > bestScore {
			best = i
			bestScore = s
		}
	}
	return best
}

// firstNonEmpty back-fills a missing primary field with the first non-empty
// value among the other members, in original order.
func firstNonEmpty(primary string, group []string) string {
	if primary != "" {
		return primary
	}
	for _, v := range group {
		if v != "" {
			return v
		}
	}
	return ""
}

// longestText picks the longest non-empty value among all members, primary
// included. Used for free-text fields where more information wins.
func longestText(values []string) string {
	best := ""
	for _, v := range values {
		if len(v) > len(best) {
			best = v
		}
	}
	return best
}

// mergeSpeakers resolves an auto-merge group into a MergeOutcome. The merged
// data starts from the primary's own values; empty fields back-fill from the
// remaining members, and the bio takes the longest text available. Originals
// are never mutated.
func mergeSpeakers(group []models.Speaker) models.MergeOutcome {
	primaryIdx := selectPrimary(group, speakerPrimaryScore)
	primary := group[primaryIdx]

	others := make([]models.Speaker, 0, len(group)-1)
	companies := make([]string, 0, len(group)-1)
	bios := make([]string, 0, len(group))
	bios = append(bios, primary.Bio)
	for i, sp := range group {
		if i == primaryIdx {
			continue
		}
		others = append(others, sp)
		companies = append(companies, sp.Company)
		bios = append(bios, sp.Bio)
	}

	merged := map[string]interface{}{
		"name":           primary.Name,
		"normalizedName": primary.NormalizedName,
	}
	if company := firstNonEmpty(primary.Company, companies); company != "" {
		merged["company"] = company
	}
	if bio := longestText(bios); bio != "" {
		merged["bio"] = bio
	}
	if primary.ConfidenceScore > 0 {
		merged["confidenceScore"] = primary.ConfidenceScore
	}

	return models.MergeOutcome{
		Primary:    primary,
		MergedData: merged,
		MergedFrom: toInterfaces(others),
	}
}

func mergeCompanies(group []models.Company) models.MergeOutcome {
	primaryIdx := selectPrimary(group, companyPrimaryScore)
	primary := group[primaryIdx]

	others := make([]models.Company, 0, len(group)-1)
	domains := make([]string, 0, len(group)-1)
	industries := make([]string, 0, len(group)-1)
	for i, c := range group {
		if i == primaryIdx {
			continue
		}
		others = append(others, c)
		domains = append(domains, c.Domain)
		industries = append(industries, c.Industry)
	}

	merged := map[string]interface{}{
		"name":           primary.Name,
		"normalizedName": primary.NormalizedName,
	}
	if domain := firstNonEmpty(primary.Domain, domains); domain != "" {
		merged["domain"] = domain
	}
	if industry := firstNonEmpty(primary.Industry, industries); industry != "" {
		merged["industry"] = industry
	}

	return models.MergeOutcome{
		Primary:    primary,
		MergedData: merged,
		MergedFrom: toInterfaces(others),
	}
}

func mergeEvents(group []models.Event) models.MergeOutcome {
	primaryIdx := selectPrimary(group, eventPrimaryScore)
	primary := group[primaryIdx]

	others := make([]models.Event, 0, len(group)-1)
	locations := make([]string, 0, len(group)-1)
	dates := make([]string, 0, len(group)-1)
	descriptions := make([]string, 0, len(group))
	descriptions = append(descriptions, primary.Description)
	for i, e := range group {
		if i == primaryIdx {
			continue
		}
		others = append(others, e)
		locations = append(locations, e.Location)
		dates = append(dates, e.Date)
		descriptions = append(descriptions, e.Description)
	}

	merged := map[string]interface{}{
		"name": primary.Name,
	}
	if date := firstNonEmpty(primary.Date, dates); date != "" {
		merged["date"] = date
	}
	if location := firstNonEmpty(primary.Location, locations); location != "" {
		merged["location"] = location
	}
	if description := longestText(descriptions); description != "" {
		merged["description"] = description
	}
	if primary.DataQualityScore > 0 {
		merged["dataQualityScore"] = primary.DataQualityScore
	}

	return models.MergeOutcome{
		Primary:    primary,
		MergedData: merged,
		MergedFrom: toInterfaces(others),
	}
}

func toInterfaces[T any](items []T) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
