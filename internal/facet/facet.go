// Package facet derives the filterable values present in a catalog.
package facet

import (
	"slices"

	"github.com/pbaille/inspo/internal/domain"
)

// Facets holds the distinct values of each filterable dimension
type Facets struct {
	Formats []string `json:"formats"`
	Niches  []string `json:"niches"`
	Tags    []string `json:"tags"`
}

// Extract collects distinct formats, niches and tags from records.
// Formats keep first-seen order; niches and tags are sorted.
func Extract(records []domain.InspirationRecord) Facets {
	f := Facets{
		Formats: []string{},
		Niches:  []string{},
		Tags:    []string{},
	}

	seenFormat := make(map[string]bool)
	seenNiche := make(map[string]bool)
	seenTag := make(map[string]bool)

	for _, r := range records {
		format := string(r.PostFormat)
		if !seenFormat[format] {
			seenFormat[format] = true
			f.Formats = append(f.Formats, format)
		}
		if !seenNiche[r.Niche] {
			seenNiche[r.Niche] = true
			f.Niches = append(f.Niches, r.Niche)
		}
		for _, tag := range r.Tags {
			if !seenTag[tag] {
				seenTag[tag] = true
				f.Tags = append(f.Tags, tag)
			}
		}
	}

	slices.Sort(f.Niches)
	slices.Sort(f.Tags)

	return f
}
