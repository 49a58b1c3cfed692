// internal/dedup/grouper.go
package dedup

import (
	"sort"
	"strconv"
	"strings"

	"entity-dedup-workers/internal/models"
)

// Placeholder key segments for events missing their grouping fields. Entities
// without a date or location still bucket together instead of being dropped.
const (
	noDateKey     = "no_date"
	noLocationKey = "no_location"
)

// groupByKey buckets item indices by key, preserving first-encounter order of
// both groups and members. Returns multi-member groups and singleton indices;
// only groups of size >= 2 proceed to scoring.
func groupByKey[T any](items []T, key func(T) string) (groups [][]int, singles []int) {
	order := make([]string, 0, len(items))
	buckets := make(map[string][]int, len(items))

	for i, item := range items {
		k := key(item)
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], i)
	}

	for _, k := range order {
		members := buckets[k]
		if len(members) >= 2 {
			groups = append(groups, members)
		} else {
			singles = append(singles, members[0])
		}
	}
	return groups, singles
}

// groupSpeakers pre-filters speakers by exact normalized-name equality.
func (s *Service) groupSpeakers(speakers []models.Speaker) ([][]int, []int) {
	return groupByKey(speakers, func(sp models.Speaker) string {
		return sp.NormalizedName
	})
}

// groupCompanies takes the union of exact normalized-name groups and exact
// non-empty domain groups. Overlapping groupings are merged so that no company
// lands in two candidate groups, which would break the result partition.
func (s *Service) groupCompanies(companies []models.Company) ([][]int, []int) {
	nameGroups, _ := groupByKey(companies, func(c models.Company) string {
		return "name:" + c.NormalizedName
	})

	byDomain := make(map[string][]int)
	domainOrder := make([]string, 0)
	for i, c := range companies {
		if c.Domain == "" {
			continue
		}
		if _, ok := byDomain[c.Domain]; !ok {
			domainOrder = append(domainOrder, c.Domain)
		}
		byDomain[c.Domain] = append(byDomain[c.Domain], i)
	}

	candidate := nameGroups
	for _, d := range domainOrder {
		if len(byDomain[d]) >= 2 {
			candidate = append(candidate, byDomain[d])
		}
	}

	merged := mergeOverlappingGroups(candidate)

	grouped := make(map[int]bool)
	for _, g := range merged {
		for _, idx := range g {
			grouped[idx] = true
		}
	}
	singles := make([]int, 0)
	for i := range companies {
		if !grouped[i] {
			singles = append(singles, i)
		}
	}
	return merged, singles
}

// groupEvents buckets events by the composite (date, lowercased location) key.
func (s *Service) groupEvents(events []models.Event) ([][]int, []int) {
	return groupByKey(events, func(e models.Event) string {
		date := e.Date
		if date == "" {
			date = noDateKey
		}
		loc := strings.ToLower(strings.TrimSpace(e.Location))
		if loc == "" {
			loc = noLocationKey
		}
		return date + "|" + loc
	})
}

// mergeOverlappingGroups unions groups that share a member until the result is
// a disjoint partition, deduplicating identical groupings along the way.
// Member order inside each merged group follows original input order; group
// order follows the first group that contributed to it.
func mergeOverlappingGroups(groups [][]int) [][]int {
	if len(groups) == 0 {
		return nil
	}

	merged := make([][]int, 0, len(groups))
	used := make([]bool, len(groups))

	for i := range groups {
		if used[i] {
			continue
		}
		members := make(map[int]bool, len(groups[i]))
		for _, idx := range groups[i] {
			members[idx] = true
		}
		used[i] = true

		// Keep absorbing until no remaining group overlaps.
		changed := true
		for changed {
			changed = false
			for j := i + 1; j < len(groups); j++ {
				if used[j] {
					continue
				}
				if overlaps(members, groups[j]) {
					for _, idx := range groups[j] {
						members[idx] = true
					}
					used[j] = true
					changed = true
				}
			}
		}

		ordered := make([]int, 0, len(members))
		for idx := range members {
			ordered = append(ordered, idx)
		}
		sort.Ints(ordered)
		merged = append(merged, ordered)
	}
	return merged
}

func overlaps(members map[int]bool, group []int) bool {
	for _, idx := range group {
		if members[idx] {
			return true
		}
	}
	return false
}

// groupKey renders a stable diagnostic identifier for a group of indices.
func groupKey(prefix string, members []int) string {
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = strconv.Itoa(m)
	}
	return prefix + ":" + strings.Join(parts, ",")
}
