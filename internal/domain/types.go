package domain

import "time"

// PostFormat is the creative format of a featured post
type PostFormat string

const (
	FormatCarousel   PostFormat = "Carousel"
	FormatStaticPost PostFormat = "Static Post"
	FormatReel       PostFormat = "Reel"
)

// InspirationRecord represents one curated brand/post example
type InspirationRecord struct {
	ID            string     `json:"id"`
	Brand         string     `json:"brand"`
	BrandURL      string     `json:"brand_url"`
	Location      string     `json:"location"`
	Niche         string     `json:"niche"`
	BrandOneLiner string     `json:"brand_one_liner"`
	PostURL       string     `json:"post_url"`
	Platform      string     `json:"platform"`
	PostFormat    PostFormat `json:"post_format"`
	PostLabel     string     `json:"post_label,omitempty"`
	StandoutIdea  string     `json:"standout_idea"`
	VisualHooks   []string   `json:"visual_hooks"`
	SwipeNotes    []string   `json:"swipe_notes"`
	Tags          []string   `json:"tags"`
	PostedOn      *time.Time `json:"posted_on,omitempty"`
}

// Export records one snapshot of the catalog written to a swipe-file database
type Export struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	Filters     string    `json:"filters"`
	RecordCount int       `json:"record_count"`
	CreatedAt   time.Time `json:"created_at"`
}
