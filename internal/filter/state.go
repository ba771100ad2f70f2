// Package filter holds the gallery filter state and the predicate that
// narrows a catalog to the records matching it.
package filter

import (
	"maps"
	"net/url"
	"slices"
	"strings"
)

// Facet names a multi-select filter dimension
type Facet string

const (
	FacetFormat Facet = "format"
	FacetNiche  Facet = "niche"
	FacetTag    Facet = "tag"
)

// Facets lists every facet in display order
var Facets = []Facet{FacetFormat, FacetNiche, FacetTag}

// Set is a set of selected facet values
type Set map[string]struct{}

// Has reports membership
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in lexicographic order
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// State is the current query plus the selected values of each facet.
// An empty set places no restriction on its facet.
type State struct {
	Query   string
	Formats Set
	Niches  Set
	Tags    Set
}

// New returns the initial state: empty query, nothing selected
func New() *State {
	return &State{
		Formats: Set{},
		Niches:  Set{},
		Tags:    Set{},
	}
}

// SetQuery replaces the query verbatim
func (s *State) SetQuery(q string) {
	s.Query = q
}

// Toggle adds value to the facet's selection, or removes it if already selected.
// Values absent from the catalog are accepted and simply never match.
func (s *State) Toggle(f Facet, value string) {
	set := s.set(f)
	if set == nil {
		return
	}
	if set.Has(value) {
		delete(set, value)
	} else {
		set[value] = struct{}{}
	}
}

// Reset restores the initial state
func (s *State) Reset() {
	s.Query = ""
	s.Formats = Set{}
	s.Niches = Set{}
	s.Tags = Set{}
}

// Selected returns the selection for a facet
func (s *State) Selected(f Facet) Set {
	return s.set(f)
}

// IsSelected reports whether value is selected in facet f
func (s *State) IsSelected(f Facet, value string) bool {
	return s.set(f).Has(value)
}

// HasActive reports whether any filter or a non-blank query is applied
func (s *State) HasActive() bool {
	return len(s.Formats) > 0 || len(s.Niches) > 0 || len(s.Tags) > 0 ||
		strings.TrimSpace(s.Query) != ""
}

// Clone returns an independent copy
func (s *State) Clone() *State {
	return &State{
		Query:   s.Query,
		Formats: maps.Clone(s.Formats),
		Niches:  maps.Clone(s.Niches),
		Tags:    maps.Clone(s.Tags),
	}
}

func (s *State) set(f Facet) Set {
	switch f {
	case FacetFormat:
		if s.Formats == nil {
			s.Formats = Set{}
		}
		return s.Formats
	case FacetNiche:
		if s.Niches == nil {
			s.Niches = Set{}
		}
		return s.Niches
	case FacetTag:
		if s.Tags == nil {
			s.Tags = Set{}
		}
		return s.Tags
	}
	return nil
}

// FromValues rebuilds a state from URL query parameters
// (q, and repeated format, niche and tag values).
func FromValues(v url.Values) *State {
	s := New()
	s.SetQuery(v.Get("q"))
	for _, f := range Facets {
		for _, value := range v[string(f)] {
			if !s.IsSelected(f, value) {
				s.Toggle(f, value)
			}
		}
	}
	return s
}

// Values encodes the state as URL query parameters. Selections are sorted so
// the encoding is stable.
func (s *State) Values() url.Values {
	v := url.Values{}
	if s.Query != "" {
		v.Set("q", s.Query)
	}
	for _, f := range Facets {
		for _, value := range s.Selected(f).Sorted() {
			v.Add(string(f), value)
		}
	}
	return v
}

// Encode returns the URL query string for the state
func (s *State) Encode() string {
	return s.Values().Encode()
}
