package cli

import (
	"strconv"

	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

// cafeFlags are the record fields shared by add and edit.
type cafeFlags struct {
	name       string
	person     string
	area       string
	siteURL    string
	mapURL     string
	address    string
	tags       string
	rating     string
	priceRange string
	memo       string
	favorite   bool
	visitedAt  string
}

func (f *cafeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "café name")
	fs.StringVar(&f.person, "person", "", "person in charge or companion")
	fs.StringVar(&f.area, "area", "", "area (default: "+types.DefaultArea+")")
	fs.StringVar(&f.siteURL, "site-url", "", "shop website")
	fs.StringVar(&f.mapURL, "map-url", "", "map link")
	fs.StringVar(&f.address, "address", "", "street address")
	fs.StringVar(&f.tags, "tags", "", "comma-separated tags")
	fs.StringVar(&f.rating, "rating", "", "rating, 0 to 5")
	fs.StringVar(&f.priceRange, "price-range", "", "price range, e.g. ¥500-1000")
	fs.StringVar(&f.memo, "memo", "", "free-form memo")
	fs.BoolVar(&f.favorite, "favorite", false, "mark as favorite")
	fs.StringVar(&f.visitedAt, "visited-at", "", "visit date, e.g. 2025-04-01")
}

// input builds a CafeInput from the flags the user actually set.
func (f *cafeFlags) input(fs *pflag.FlagSet) types.CafeInput {
	var in types.CafeInput
	str := func(flag string, v string) *string {
		if !fs.Changed(flag) {
			return nil
		}
		return types.String(v)
	}
	in.Name = str("name", f.name)
	in.Person = str("person", f.person)
	in.Area = str("area", f.area)
	in.SiteURL = str("site-url", f.siteURL)
	in.MapURL = str("map-url", f.mapURL)
	in.Address = str("address", f.address)
	in.PriceRange = str("price-range", f.priceRange)
	in.Memo = str("memo", f.memo)
	in.VisitedAt = str("visited-at", f.visitedAt)
	if fs.Changed("tags") {
		in.Tags = types.TagsFromString(f.tags)
	}
	if fs.Changed("rating") {
		in.Rating = types.IntString(f.rating)
	}
	if fs.Changed("favorite") {
		in.Favorite = types.BoolString(strconv.FormatBool(f.favorite))
	}
	return in
}
