package filter

import (
	"strings"

	"github.com/pbaille/inspo/internal/domain"
)

// Matches reports whether a record passes every active filter:
// AND across facets, OR within the tag facet.
func Matches(r domain.InspirationRecord, s *State) bool {
	return matchesQuery(r, normalizeQuery(s.Query)) &&
		matchesSet(s.Formats, string(r.PostFormat)) &&
		matchesSet(s.Niches, r.Niche) &&
		matchesTags(s.Tags, r.Tags)
}

// Apply returns the records matching s, in their original order
func Apply(records []domain.InspirationRecord, s *State) []domain.InspirationRecord {
	out := make([]domain.InspirationRecord, 0, len(records))
	for _, r := range records {
		if Matches(r, s) {
			out = append(out, r)
		}
	}
	return out
}

// SearchText is the text a query is matched against
func SearchText(r domain.InspirationRecord) string {
	return strings.Join([]string{
		r.Brand,
		r.BrandOneLiner,
		r.Niche,
		r.Location,
		r.StandoutIdea,
		strings.Join(r.Tags, " "),
	}, " ")
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func matchesQuery(r domain.InspirationRecord, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(SearchText(r)), q)
}

func matchesSet(selected Set, value string) bool {
	return len(selected) == 0 || selected.Has(value)
}

func matchesTags(selected Set, tags []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, t := range tags {
		if selected.Has(t) {
			return true
		}
	}
	return false
}
