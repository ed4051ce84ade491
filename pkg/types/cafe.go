package types

import (
	"strings"
	"time"
)

// DefaultArea is the area recorded for a café created without one. It is the
// value the CafeMemo browser app writes, so exports from either side agree.
const DefaultArea = "その他"

// TimestampLayout is the layout of created_at and updated_at: UTC with
// millisecond precision, the same form as JavaScript's toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Cafe is one café entry. Timestamps are strings so that imported values are
// kept exactly as they arrived.
type Cafe struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Person     string   `json:"person"`
	Area       string   `json:"area"`
	SiteURL    string   `json:"site_url"`
	Rating     int      `json:"rating"`
	Memo       string   `json:"memo"`
	Address    string   `json:"address"`
	MapURL     string   `json:"map_url"`
	Tags       []string `json:"tags"`
	PriceRange string   `json:"price_range"`
	Favorite   bool     `json:"favorite"`
	VisitedAt  *string  `json:"visited_at"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

// CafeInput is a partial café supplied by a caller. A nil field is
// unspecified: NewCafe fills its default and Apply keeps the current value.
type CafeInput struct {
	Name       *string    `json:"name,omitempty"`
	Person     *string    `json:"person,omitempty"`
	Area       *string    `json:"area,omitempty"`
	SiteURL    *string    `json:"site_url,omitempty"`
	MapURL     *string    `json:"map_url,omitempty"`
	Address    *string    `json:"address,omitempty"`
	Tags       *Tags      `json:"tags,omitempty"`
	Rating     *LooseInt  `json:"rating,omitempty"`
	PriceRange *string    `json:"price_range,omitempty"`
	Memo       *string    `json:"memo,omitempty"`
	Favorite   *LooseBool `json:"favorite,omitempty"`
	VisitedAt  *string    `json:"visited_at,omitempty"`
}

// String returns a pointer to s, for building a CafeInput.
func String(s string) *string {
	return &s
}

// NewCafe materializes a new record from in. String fields are trimmed
// (memo excepted), unspecified fields get their defaults, rating and tags are
// coerced, and both timestamps are set to now. Name is not validated.
func NewCafe(id string, in CafeInput, now string) *Cafe {
	c := &Cafe{
		ID:         id,
		Name:       trimmed(in.Name),
		Person:     trimmed(in.Person),
		Area:       trimmed(in.Area),
		SiteURL:    trimmed(in.SiteURL),
		Rating:     in.Rating.Int(),
		Memo:       deref(in.Memo),
		Address:    trimmed(in.Address),
		MapURL:     trimmed(in.MapURL),
		Tags:       in.Tags.Normalized(),
		PriceRange: trimmed(in.PriceRange),
		Favorite:   in.Favorite.Bool(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if c.Area == "" {
		c.Area = DefaultArea
	}
	if in.VisitedAt != nil {
		c.VisitedAt = optional(strings.TrimSpace(*in.VisitedAt))
	}
	return c
}

// Apply merges patch onto c. Specified fields overwrite, the rest are kept.
// Rating and tags are re-normalized when given; other strings are stored as
// given. ID and CreatedAt never change. UpdatedAt becomes now, or CreatedAt
// when now would sort before it.
func (c *Cafe) Apply(patch CafeInput, now string) {
	setString(&c.Name, patch.Name)
	setString(&c.Person, patch.Person)
	setString(&c.Area, patch.Area)
	setString(&c.SiteURL, patch.SiteURL)
	setString(&c.MapURL, patch.MapURL)
	setString(&c.Address, patch.Address)
	setString(&c.PriceRange, patch.PriceRange)
	setString(&c.Memo, patch.Memo)
	if patch.Rating != nil {
		c.Rating = patch.Rating.Int()
	}
	if patch.Tags != nil {
		c.Tags = patch.Tags.Normalized()
	}
	if patch.Favorite != nil {
		c.Favorite = patch.Favorite.Bool()
	}
	if patch.VisitedAt != nil {
		c.VisitedAt = optional(*patch.VisitedAt)
	}
	c.UpdatedAt = LaterTimestamp(now, c.CreatedAt)
}

// IsEmpty reports whether no field of the input is specified.
func (in CafeInput) IsEmpty() bool {
	return in == CafeInput{}
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// optional maps a blank string to absent.
func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// LaterTimestamp returns now unless created parses to a later instant. Text
// that does not parse as RFC 3339 yields now.
func LaterTimestamp(now, created string) string {
	n, err := time.Parse(time.RFC3339Nano, now)
	if err != nil {
		return now
	}
	c, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return now
	}
	if c.After(n) {
		return created
	}
	return now
}
