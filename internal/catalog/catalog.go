// Package catalog loads the static inspiration catalog.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pbaille/inspo/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed brands.yaml
var seed []byte

const dateLayout = "2006-01-02"

var (
	ErrNotFound    = errors.New("record not found")
	ErrMissingID   = errors.New("record has no id")
	ErrDuplicateID = errors.New("duplicate record id")
)

// Catalog is an ordered, read-only set of inspiration records
type Catalog struct {
	records []domain.InspirationRecord
	index   map[string]int
}

// seedRecord mirrors the YAML layout of a catalog entry
type seedRecord struct {
	ID            string   `yaml:"id"`
	Brand         string   `yaml:"brand"`
	BrandURL      string   `yaml:"brandUrl"`
	Location      string   `yaml:"location"`
	Niche         string   `yaml:"niche"`
	BrandOneLiner string   `yaml:"brandOneLiner"`
	PostURL       string   `yaml:"postUrl"`
	Platform      string   `yaml:"platform"`
	PostFormat    string   `yaml:"postFormat"`
	PostLabel     string   `yaml:"postLabel"`
	StandoutIdea  string   `yaml:"standoutIdea"`
	VisualHooks   []string `yaml:"visualHooks"`
	SwipeNotes    []string `yaml:"swipeNotes"`
	Tags          []string `yaml:"tags"`
	PostedOn      string   `yaml:"postedOn"`
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Parse(seed)
})

// Default returns the catalog bundled with the binary
func Default() (*Catalog, error) {
	return defaultCatalog()
}

// LoadFile reads a YAML catalog from disk
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var raw []seedRecord
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	records := make([]domain.InspirationRecord, 0, len(raw))
	for i, r := range raw {
		rec, err := r.toRecord()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}

	return New(records)
}

// New builds a catalog from records, rejecting missing or duplicate ids
func New(records []domain.InspirationRecord) (*Catalog, error) {
	c := &Catalog{
		records: make([]domain.InspirationRecord, len(records)),
		index:   make(map[string]int, len(records)),
	}
	copy(c.records, records)

	for i, r := range c.records {
		if r.ID == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrMissingID)
		}
		if _, ok := c.index[r.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
		}
		c.index[r.ID] = i
		c.records[i].VisualHooks = nonNil(r.VisualHooks)
		c.records[i].SwipeNotes = nonNil(r.SwipeNotes)
		c.records[i].Tags = nonNil(r.Tags)
	}

	return c, nil
}

// nonNil keeps list fields encoding as [] rather than null
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Len returns the number of records
func (c *Catalog) Len() int {
	return len(c.records)
}

// Records returns the records in catalog order. The slice is a copy.
func (c *Catalog) Records() []domain.InspirationRecord {
	out := make([]domain.InspirationRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Get looks up a record by id
func (c *Catalog) Get(id string) (domain.InspirationRecord, error) {
	i, ok := c.index[id]
	if !ok {
		return domain.InspirationRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c.records[i], nil
}

func (r seedRecord) toRecord() (domain.InspirationRecord, error) {
	rec := domain.InspirationRecord{
		ID:            r.ID,
		Brand:         r.Brand,
		BrandURL:      r.BrandURL,
		Location:      r.Location,
		Niche:         r.Niche,
		BrandOneLiner: r.BrandOneLiner,
		PostURL:       r.PostURL,
		Platform:      r.Platform,
		PostFormat:    domain.PostFormat(r.PostFormat),
		PostLabel:     r.PostLabel,
		StandoutIdea:  r.StandoutIdea,
		VisualHooks:   r.VisualHooks,
		SwipeNotes:    r.SwipeNotes,
		Tags:          r.Tags,
	}

	if r.PostedOn != "" {
		t, err := time.Parse(dateLayout, r.PostedOn)
		if err != nil {
			return rec, fmt.Errorf("parse postedOn %q: %w", r.PostedOn, err)
		}
		rec.PostedOn = &t
	}

	return rec, nil
}
