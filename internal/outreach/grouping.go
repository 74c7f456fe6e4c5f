package outreach

import "strings"

// GroupByStatus buckets candidates by outreach status for the board layer.
// Every declared status key is present even when its bucket is empty, and
// bucket order preserves the input order. Pure: the input slice is never
// mutated.
func GroupByStatus(candidates []Candidate) map[Status][]Candidate {
	grouped := make(map[Status][]Candidate, len(AllStatuses()))
	for _, s := range AllStatuses() {
		grouped[s] = []Candidate{}
	}
	for _, c := range candidates {
		grouped[c.Status] = append(grouped[c.Status], c)
	}
	return grouped
}

// ApplyFilters returns the candidates matching f. The status filter is a
// logical OR over the provided set (empty set means no status filter); the
// search filter is a case-insensitive substring match over "first last" and
// email. Both compose via AND. Pure: returns a fresh slice.
func ApplyFilters(candidates []Candidate, f Filters) []Candidate {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if len(f.Status) > 0 && !statusIn(c.Status, f.Status) {
			continue
		}
		if search != "" && !matchesSearch(&c, search) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func statusIn(s Status, set []Status) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}

func matchesSearch(c *Candidate, search string) bool {
	if strings.Contains(strings.ToLower(c.FullName()), search) {
		return true
	}
	if c.Email != nil && strings.Contains(strings.ToLower(*c.Email), search) {
		return true
	}
	return false
}
