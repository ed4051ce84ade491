package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one café",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store types.Store) error {
				c, err := store.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("get cafe: %w", err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), c)
				}
				return printCafe(cmd.OutOrStdout(), c)
			})
		},
	}
}

// printCafe writes c as aligned "field: value" lines.
func printCafe(w io.Writer, c *types.Cafe) error {
	visited := ""
	if c.VisitedAt != nil {
		visited = *c.VisitedAt
	}
	rows := [][2]string{
		{"ID", c.ID},
		{"Name", c.Name},
		{"Person", c.Person},
		{"Area", types.DisplayArea(c.Area)},
		{"Rating", strconv.Itoa(c.Rating)},
		{"Favorite", strconv.FormatBool(c.Favorite)},
		{"Tags", strings.Join(c.Tags, ", ")},
		{"Price", c.PriceRange},
		{"Address", c.Address},
		{"Map", c.MapURL},
		{"Site", c.SiteURL},
		{"Visited", visited},
		{"Created", c.CreatedAt},
		{"Updated", c.UpdatedAt},
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if c.Memo != "" {
		fmt.Fprintf(w, "\n%s\n", c.Memo)
	}
	return nil
}
