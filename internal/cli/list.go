package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

type listFlags struct {
	area      string
	tags      []string
	text      string
	favorites bool
	minRating int
	sort      string
	desc      bool
	group     bool
}

// query validates the flags and returns the filter and sort key.
func (f *listFlags) query() (types.Filter, types.SortKey, error) {
	var errs *multierror.Error
	key, err := types.ParseSortKey(f.sort)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	if f.minRating < 0 || f.minRating > 5 {
		errs = multierror.Append(errs, fmt.Errorf("--min-rating must be between 0 and 5, got %d", f.minRating))
	}
	if f.desc && key == "" {
		errs = multierror.Append(errs, fmt.Errorf("--desc needs --sort"))
	}
	filter := types.Filter{
		Text:          f.text,
		Area:          f.area,
		Tags:          types.NormalizeTags(f.tags),
		FavoritesOnly: f.favorites,
		MinRating:     f.minRating,
	}
	return filter, key, errs.ErrorOrNil()
}

func newListCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cafés",
		Long: `List shows every café, most recently added first. Filters combine.

Example:
  cafememo list
  cafememo list --area 渋谷 --tag wifi --min-rating 4
  cafememo list --sort rating --desc
  cafememo list --group --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, key, err := f.query()
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, store types.Store) error {
				all, err := store.List(ctx)
				if err != nil {
					return fmt.Errorf("list cafes: %w", err)
				}
				cafes := types.SortCafes(types.FilterCafes(all, filter), key, f.desc)
				return a.printList(cmd.OutOrStdout(), cafes, f.group)
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&f.area, "area", "", "only cafés in this area")
	fs.StringSliceVar(&f.tags, "tag", nil, "only cafés with this tag (repeatable)")
	fs.StringVar(&f.text, "text", "", "case-insensitive text search")
	fs.BoolVar(&f.favorites, "favorites", false, "only favorites")
	fs.IntVar(&f.minRating, "min-rating", 0, "minimum rating")
	fs.StringVar(&f.sort, "sort", "", "sort by name, area, rating, created or updated")
	fs.BoolVar(&f.desc, "desc", false, "reverse the sort")
	fs.BoolVar(&f.group, "group", false, "group by area")
	return cmd
}

func (a *app) printList(w io.Writer, cafes []*types.Cafe, group bool) error {
	if a.flags.jsonMode {
		if group {
			return printJSON(w, groupsJSON(types.GroupByArea(cafes)))
		}
		return printJSON(w, cafes)
	}
	if len(cafes) == 0 {
		fmt.Fprintln(w, "No cafes found.")
		return nil
	}
	if group {
		for i, g := range types.GroupByArea(cafes) {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s (%d)\n", g.Area, len(g.Cafes))
			printCafeTable(w, g.Cafes)
		}
	} else {
		printCafeTable(w, cafes)
	}
	fmt.Fprintf(w, "Total: %d cafe(s)\n", len(cafes))
	return nil
}

type areaGroupJSON struct {
	Area  string        `json:"area"`
	Cafes []*types.Cafe `json:"cafes"`
}

func groupsJSON(groups []types.AreaGroup) []areaGroupJSON {
	out := make([]areaGroupJSON, len(groups))
	for i, g := range groups {
		out[i] = areaGroupJSON{Area: g.Area, Cafes: g.Cafes}
	}
	return out
}

func printCafeTable(w io.Writer, cafes []*types.Cafe) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Area", "Rating", "Fav", "Tags", "Memo"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, c := range cafes {
		fav := ""
		if c.Favorite {
			fav = "★"
		}
		table.Append([]string{
			c.ID,
			truncate(c.Name, 30),
			types.DisplayArea(c.Area),
			strconv.Itoa(c.Rating),
			fav,
			strings.Join(c.Tags, ","),
			truncate(strings.ReplaceAll(c.Memo, "\n", " "), 30),
		})
	}
	table.Render()
}
