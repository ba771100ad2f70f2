package filter

import (
	"net/url"
	"testing"

	"github.com/pbaille/inspo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []domain.InspirationRecord {
	return []domain.InspirationRecord{
		{ID: "r1", Brand: "Leaf & Co", PostFormat: domain.FormatCarousel, Niche: "Tea", Tags: []string{"minimal"}},
		{ID: "r2", Brand: "Steep Brand", PostFormat: domain.FormatReel, Niche: "Tea", Tags: []string{"bold"}},
	}
}

func ids(records []domain.InspirationRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestApplyEmptyStateReturnsAll(t *testing.T) {
	records := sampleRecords()
	got := Apply(records, New())
	assert.Equal(t, records, got)
}

func TestApplyNarrowing(t *testing.T) {
	records := sampleRecords()
	s := New()

	s.Toggle(FacetNiche, "Tea")
	assert.Equal(t, []string{"r1", "r2"}, ids(Apply(records, s)))

	s.Toggle(FacetFormat, "Reel")
	assert.Equal(t, []string{"r2"}, ids(Apply(records, s)))

	s.Toggle(FacetTag, "minimal")
	assert.Empty(t, Apply(records, s))
}

func TestApplyEmptyCatalog(t *testing.T) {
	s := New()
	assert.Empty(t, Apply(nil, s))

	s.SetQuery("tea")
	s.Toggle(FacetTag, "bold")
	assert.Empty(t, Apply(nil, s))
}

func TestOwnFormatNeverExcludes(t *testing.T) {
	for _, r := range sampleRecords() {
		s := New()
		s.Toggle(FacetFormat, string(r.PostFormat))
		assert.True(t, Matches(r, s), r.ID)
	}
}

func TestTagsUseOrSemantics(t *testing.T) {
	r := domain.InspirationRecord{ID: "x", Tags: []string{"B", "C"}}
	s := New()
	s.Toggle(FacetTag, "A")
	s.Toggle(FacetTag, "B")

	assert.True(t, Matches(r, s))
}

func TestQueryMatching(t *testing.T) {
	r := domain.InspirationRecord{
		ID:            "x",
		Brand:         "Brand Name",
		BrandOneLiner: "Handmade candles",
		Niche:         "Home",
		Location:      "Jaipur",
		StandoutIdea:  "Before and after slides",
		Tags:          []string{"cozy", "warm light"},
		Platform:      "Instagram",
		SwipeNotes:    []string{"hidden note"},
	}

	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"brand", true},
		{"  BRAND name ", true},
		{"jaipur", true},
		{"after slides", true},
		{"warm light", true},
		{"cozy warm", true},
		{"ideas before", false},
		{"candles home", true},
		{"instagram", false},
		{"hidden note", false},
		{"missing", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			s := New()
			s.SetQuery(tt.query)
			assert.Equal(t, tt.want, Matches(r, s))
		})
	}
}

func TestMatchesZeroRecord(t *testing.T) {
	s := New()
	s.SetQuery("anything")
	assert.False(t, Matches(domain.InspirationRecord{}, s))

	assert.True(t, Matches(domain.InspirationRecord{}, New()))
}

func TestFacetsAreAnded(t *testing.T) {
	r := domain.InspirationRecord{ID: "x", PostFormat: domain.FormatReel, Niche: "Tea", Tags: []string{"bold"}}

	s := New()
	s.Toggle(FacetFormat, "Reel")
	s.Toggle(FacetNiche, "Coffee")
	assert.False(t, Matches(r, s))

	s.Toggle(FacetNiche, "Tea")
	assert.True(t, Matches(r, s))
}

func TestToggleInvolution(t *testing.T) {
	for _, f := range Facets {
		s := New()
		s.Toggle(f, "v")
		assert.True(t, s.IsSelected(f, "v"))
		s.Toggle(f, "v")
		assert.False(t, s.IsSelected(f, "v"))

		s.Toggle(f, "keep")
		s.Toggle(f, "v")
		s.Toggle(f, "v")
		assert.True(t, s.IsSelected(f, "keep"))
	}
}

func TestToggleUnknownValue(t *testing.T) {
	s := New()
	s.Toggle(FacetNiche, "Not In Catalog")
	assert.True(t, s.IsSelected(FacetNiche, "Not In Catalog"))
	assert.Empty(t, Apply(sampleRecords(), s))
}

func TestToggleUnknownFacetIsIgnored(t *testing.T) {
	s := New()
	s.Toggle(Facet("color"), "red")
	assert.Equal(t, New(), s)
}

func TestSetQueryStoresVerbatim(t *testing.T) {
	s := New()
	s.SetQuery("  Tea  ")
	assert.Equal(t, "  Tea  ", s.Query)
}

func TestReset(t *testing.T) {
	s := New()
	s.SetQuery("tea")
	s.Toggle(FacetFormat, "Reel")
	s.Toggle(FacetNiche, "Tea")
	s.Toggle(FacetTag, "bold")
	require.True(t, s.HasActive())

	s.Reset()
	assert.Equal(t, New(), s)
	assert.False(t, s.HasActive())

	s.Reset()
	assert.Equal(t, New(), s)
}

func TestHasActive(t *testing.T) {
	s := New()
	assert.False(t, s.HasActive())

	s.SetQuery("   ")
	assert.False(t, s.HasActive())

	s.SetQuery("x")
	assert.True(t, s.HasActive())
}

func TestClone(t *testing.T) {
	s := New()
	s.Toggle(FacetTag, "bold")

	c := s.Clone()
	c.Toggle(FacetTag, "bold")
	c.Toggle(FacetNiche, "Tea")

	assert.True(t, s.IsSelected(FacetTag, "bold"))
	assert.False(t, s.IsSelected(FacetNiche, "Tea"))
}

func TestValuesRoundTrip(t *testing.T) {
	s := New()
	s.SetQuery("chai ")
	s.Toggle(FacetFormat, "Static Post")
	s.Toggle(FacetTag, "minimal")
	s.Toggle(FacetTag, "bold")

	assert.Equal(t, "format=Static+Post&q=chai+&tag=bold&tag=minimal", s.Encode())

	v, err := url.ParseQuery(s.Encode())
	require.NoError(t, err)
	assert.Equal(t, s, FromValues(v))
}

func TestFromValuesDeduplicates(t *testing.T) {
	v := url.Values{"niche": {"Tea", "Tea"}}
	s := FromValues(v)

	assert.True(t, s.IsSelected(FacetNiche, "Tea"))
	assert.Len(t, s.Niches, 1)
}

func TestSelected(t *testing.T) {
	s := New()
	s.Toggle(FacetTag, "minimal")
	s.Toggle(FacetTag, "bold")

	assert.Equal(t, []string{"bold", "minimal"}, s.Selected(FacetTag).Sorted())
	assert.Empty(t, s.Selected(FacetNiche).Sorted())
	assert.Nil(t, s.Selected(Facet("color")))
}

func TestSearchText(t *testing.T) {
	r := domain.InspirationRecord{
		Brand:         "B",
		BrandOneLiner: "O",
		Niche:         "N",
		Location:      "L",
		StandoutIdea:  "S",
		Tags:          []string{"t1", "t2"},
	}
	assert.Equal(t, "B O N L S t1 t2", SearchText(r))
}
