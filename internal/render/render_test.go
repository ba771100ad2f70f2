package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pbaille/inspo/internal/domain"
	"github.com/pbaille/inspo/internal/facet"
	"github.com/pbaille/inspo/internal/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func testRecords() []domain.InspirationRecord {
	posted := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)
	return []domain.InspirationRecord{
		{
			ID:          "r1",
			Brand:       "Leaf & Co",
			Location:    "Pune",
			Niche:       "Tea",
			PostFormat:  domain.FormatCarousel,
			PostLabel:   "Origin story",
			Platform:    "Instagram",
			BrandURL:    "https://leaf.example",
			PostURL:     "https://leaf.example/post",
			VisualHooks: []string{"Map cover"},
			SwipeNotes:  []string{"Hook first"},
			Tags:        []string{"minimal"},
			PostedOn:    &posted,
		},
		{
			ID:         "r2",
			Brand:      "Thread Co",
			Niche:      "Fashion",
			PostFormat: "Text Thread",
			Platform:   "Threads",
			Tags:       []string{"bold"},
		},
	}
}

// parse renders the page and returns the parsed document
func parse(t *testing.T, p Page) *html.Node {
	t.Helper()

	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Gallery(&buf, p))

	doc, err := html.Parse(&buf)
	require.NoError(t, err)
	return doc
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}
}

func text(n *html.Node) string {
	var sb strings.Builder
	for _, t := range findAll(n, func(n *html.Node) bool { return n.Type == html.TextNode }) {
		sb.WriteString(t.Data)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func TestBadgeColor(t *testing.T) {
	assert.Equal(t, "var(--badge-magenta)", BadgeColor(domain.FormatCarousel))
	assert.Equal(t, "var(--badge-emerald)", BadgeColor(domain.FormatReel))
	assert.Equal(t, "var(--badge-slate)", BadgeColor(domain.FormatStaticPost))
	assert.Equal(t, "var(--badge-slate)", BadgeColor("Text Thread"))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Mar 2, 2024", FormatDate(&d))
	assert.Equal(t, "", FormatDate(nil))
}

func TestNewPageToggleLinks(t *testing.T) {
	records := testRecords()
	state := filter.New()
	state.Toggle(filter.FacetTag, "bold")

	p := NewPage("/", len(records), facet.Extract(records), state, filter.Apply(records, state))

	require.Len(t, p.Groups, 3)
	tags := p.Groups[2]
	assert.Equal(t, "Tags", tags.Title)
	assert.Equal(t, "tag", tags.Param)
	require.Len(t, tags.Options, 2)

	assert.Equal(t, Option{Label: "bold", Active: true, Href: "/"}, tags.Options[0])
	assert.Equal(t, Option{Label: "minimal", Active: false, Href: "/?tag=bold&tag=minimal"}, tags.Options[1])

	assert.True(t, p.HasActive)
	assert.Equal(t, 1, p.Shown)
	assert.Equal(t, 2, p.Total)

	// building links must not touch the page state
	assert.True(t, state.IsSelected(filter.FacetTag, "bold"))
	assert.False(t, state.IsSelected(filter.FacetTag, "minimal"))
}

func TestNewPageClearKeepsFacets(t *testing.T) {
	state := filter.New()
	state.SetQuery("tea")
	state.Toggle(filter.FacetNiche, "Tea")

	p := NewPage("/", 0, facet.Extract(nil), state, nil)
	assert.Equal(t, "/?niche=Tea", p.ClearHref)
	assert.Equal(t, "/", p.ResetHref)
}

func TestGalleryRendersCards(t *testing.T) {
	records := testRecords()
	state := filter.New()
	doc := parse(t, NewPage("/", len(records), facet.Extract(records), state, records))

	cards := findAll(doc, hasClass("brand-card"))
	require.Len(t, cards, 2)

	first := cards[0]
	assert.Equal(t, "r1-title", attr(first, "aria-labelledby"))
	assert.Contains(t, text(first), "Leaf & Co")
	assert.Contains(t, text(first), "Pune · Tea")
	assert.Contains(t, text(first), "Origin story")
	assert.Contains(t, text(first), "Mar 12, 2024")

	badges := findAll(first, hasClass("chip--format"))
	require.Len(t, badges, 1)
	assert.Contains(t, attr(badges[0], "style"), "var(--badge-magenta)")

	second := cards[1]
	assert.Empty(t, findAll(second, hasClass("brand-card__label")))
	assert.Empty(t, findAll(second, hasClass("brand-card__date")))
	badges = findAll(second, hasClass("chip--format"))
	require.Len(t, badges, 1)
	assert.Contains(t, attr(badges[0], "style"), "var(--badge-slate)")

	assert.Empty(t, findAll(doc, hasClass("brand-grid__empty")))
	assert.Empty(t, findAll(doc, hasClass("filters__reset")))
	assert.Empty(t, findAll(doc, hasClass("filters__clear")))

	meta := findAll(doc, hasClass("results-meta"))
	require.Len(t, meta, 1)
	assert.Contains(t, text(meta[0]), "Showing 2 of 2 inspiration drops.")
}

func TestGalleryEmptyState(t *testing.T) {
	records := testRecords()
	state := filter.New()
	state.SetQuery("nothing matches this")
	state.Toggle(filter.FacetFormat, "Reel")

	doc := parse(t, NewPage("/", len(records), facet.Extract(records), state, filter.Apply(records, state)))

	assert.Empty(t, findAll(doc, hasClass("brand-card")))
	empty := findAll(doc, hasClass("brand-grid__empty"))
	require.Len(t, empty, 1)
	assert.Contains(t, text(empty[0]), "No matches yet")

	assert.Len(t, findAll(doc, hasClass("filters__reset")), 1)
	assert.Len(t, findAll(doc, hasClass("filters__clear")), 1)

	hidden := findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "input" && attr(n, "type") == "hidden"
	})
	// Reel is not in the catalog facets, so only the query survives a resubmit
	assert.Empty(t, hidden)
}

func TestGalleryActiveToggle(t *testing.T) {
	records := testRecords()
	state := filter.New()
	state.Toggle(filter.FacetNiche, "Tea")

	doc := parse(t, NewPage("/", len(records), facet.Extract(records), state, filter.Apply(records, state)))

	active := findAll(doc, hasClass("chip--active"))
	require.Len(t, active, 1)
	assert.Equal(t, "true", attr(active[0], "aria-pressed"))
	assert.Equal(t, "Tea", text(active[0]))

	hidden := findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "input" && attr(n, "type") == "hidden"
	})
	require.Len(t, hidden, 1)
	assert.Equal(t, "niche", attr(hidden[0], "name"))
	assert.Equal(t, "Tea", attr(hidden[0], "value"))
}
