// Package render turns a filtered catalog into the gallery page.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/pbaille/inspo/internal/domain"
	"github.com/pbaille/inspo/internal/facet"
	"github.com/pbaille/inspo/internal/filter"
)

//go:embed templates/*.html
var templateFS embed.FS

const fallbackBadge = "var(--badge-slate)"

var badgeColors = map[domain.PostFormat]string{
	domain.FormatCarousel:   "var(--badge-magenta)",
	domain.FormatStaticPost: "var(--badge-slate)",
	domain.FormatReel:       "var(--badge-emerald)",
}

// BadgeColor returns the badge background for a post format
func BadgeColor(f domain.PostFormat) string {
	if c, ok := badgeColors[f]; ok {
		return c
	}
	return fallbackBadge
}

// FormatDate renders a posted-on date, or "" when absent
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// Option is one toggle button in a filter group
type Option struct {
	Label  string
	Active bool
	Href   string
}

// Group is a titled set of filter options
type Group struct {
	Title   string
	Param   string
	Options []Option
}

// Page is everything the gallery template needs
type Page struct {
	Query     string
	HasActive bool
	ClearHref string
	ResetHref string
	Groups    []Group
	Records   []domain.InspirationRecord
	Shown     int
	Total     int
}

// NewPage builds the page model. basePath is the path toggle links point at.
func NewPage(basePath string, total int, facets facet.Facets, state *filter.State, records []domain.InspirationRecord) Page {
	cleared := state.Clone()
	cleared.SetQuery("")

	return Page{
		Query:     state.Query,
		HasActive: state.HasActive(),
		ClearHref: href(basePath, cleared),
		ResetHref: basePath,
		Groups: []Group{
			group("Format", basePath, filter.FacetFormat, facets.Formats, state),
			group("Niche", basePath, filter.FacetNiche, facets.Niches, state),
			group("Tags", basePath, filter.FacetTag, facets.Tags, state),
		},
		Records: records,
		Shown:   len(records),
		Total:   total,
	}
}

func group(title, basePath string, f filter.Facet, values []string, state *filter.State) Group {
	g := Group{Title: title, Param: string(f), Options: make([]Option, 0, len(values))}
	selected := state.Selected(f)
	for _, v := range values {
		next := state.Clone()
		next.Toggle(f, v)
		g.Options = append(g.Options, Option{
			Label:  v,
			Active: selected.Has(v),
			Href:   href(basePath, next),
		})
	}
	return g
}

func href(basePath string, s *filter.State) string {
	if q := s.Encode(); q != "" {
		return basePath + "?" + q
	}
	return basePath
}

// Renderer executes the gallery templates
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates
func New() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"badgeStyle": func(f domain.PostFormat) template.CSS {
			return template.CSS(BadgeColor(f))
		},
		"formatDate": FormatDate,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Gallery writes the full page
func (r *Renderer) Gallery(w io.Writer, p Page) error {
	if err := r.tmpl.ExecuteTemplate(w, "page.html", p); err != nil {
		return fmt.Errorf("render gallery: %w", err)
	}
	return nil
}
