package types

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Filter selects cafés from a List snapshot. Zero fields match everything;
// set fields are ANDed.
type Filter struct {
	// Text is matched case-insensitively as a substring of name, person,
	// area, address, memo, or any tag.
	Text string
	// Area must equal the café's area. DefaultArea also matches an empty area.
	Area string
	// Tags must all be present on the café.
	Tags []string
	// FavoritesOnly keeps favorites.
	FavoritesOnly bool
	// MinRating keeps cafés rated at least this much.
	MinRating int
}

// Match reports whether c passes the filter.
func (f Filter) Match(c *Cafe) bool {
	if f.FavoritesOnly && !c.Favorite {
		return false
	}
	if c.Rating < f.MinRating {
		return false
	}
	if f.Area != "" && DisplayArea(c.Area) != DisplayArea(f.Area) {
		return false
	}
	for _, want := range f.Tags {
		if !slices.Contains(c.Tags, want) {
			return false
		}
	}
	if f.Text != "" && !matchText(c, strings.ToLower(f.Text)) {
		return false
	}
	return true
}

func matchText(c *Cafe, needle string) bool {
	fields := []string{c.Name, c.Person, c.Area, c.Address, c.Memo}
	fields = append(fields, c.Tags...)
	for _, s := range fields {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

// FilterCafes returns the cafés that match f, keeping their order.
func FilterCafes(cafes []*Cafe, f Filter) []*Cafe {
	out := make([]*Cafe, 0, len(cafes))
	for _, c := range cafes {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// SortKey names a field SortCafes can order by.
type SortKey string

// Sort keys.
const (
	SortName    SortKey = "name"
	SortArea    SortKey = "area"
	SortRating  SortKey = "rating"
	SortCreated SortKey = "created"
	SortUpdated SortKey = "updated"
)

// SortKeys lists the valid sort keys.
var SortKeys = []SortKey{SortName, SortArea, SortRating, SortCreated, SortUpdated}

// ParseSortKey validates a sort key name. An empty name is accepted and keeps
// List order.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return "", nil
	}
	k := SortKey(strings.ToLower(s))
	if !slices.Contains(SortKeys, k) {
		return "", fmt.Errorf("unknown sort key %q (valid: name, area, rating, created, updated)", s)
	}
	return k, nil
}

// SortCafes returns a copy of cafés ordered by key. The sort is stable, so
// ties keep List order. An empty key returns the copy unchanged.
func SortCafes(cafes []*Cafe, key SortKey, desc bool) []*Cafe {
	out := slices.Clone(cafes)
	if key == "" {
		return out
	}
	compare := func(a, b *Cafe) int {
		switch key {
		case SortName:
			return strings.Compare(a.Name, b.Name)
		case SortArea:
			return strings.Compare(DisplayArea(a.Area), DisplayArea(b.Area))
		case SortRating:
			return cmp.Compare(a.Rating, b.Rating)
		case SortCreated:
			return strings.Compare(a.CreatedAt, b.CreatedAt)
		case SortUpdated:
			return strings.Compare(a.UpdatedAt, b.UpdatedAt)
		}
		return 0
	}
	slices.SortStableFunc(out, func(a, b *Cafe) int {
		if desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out
}

// AreaGroup is the cafés of one area.
type AreaGroup struct {
	Area  string
	Cafes []*Cafe
}

// GroupByArea groups cafés by displayed area. Groups appear in the order their
// first café appears, and cafés keep their order within a group.
func GroupByArea(cafes []*Cafe) []AreaGroup {
	var groups []AreaGroup
	index := make(map[string]int)
	for _, c := range cafes {
		area := DisplayArea(c.Area)
		i, ok := index[area]
		if !ok {
			i = len(groups)
			index[area] = i
			groups = append(groups, AreaGroup{Area: area})
		}
		groups[i].Cafes = append(groups[i].Cafes, c)
	}
	return groups
}

// DisplayArea returns area, or DefaultArea when it is blank.
func DisplayArea(area string) string {
	if strings.TrimSpace(area) == "" {
		return DefaultArea
	}
	return area
}
