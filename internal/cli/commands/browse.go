package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pixelshop-dev/pixelshop/internal/cli/browse"
)

// NewBrowseCmd creates the browse command
func NewBrowseCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalogue interactively",
		Long: `Browse sprites, asset packs and your trash in a full-screen terminal view.

Type / to search, c to filter by category, s to change the sort order and
n/p to page. In the trash tab, r restores the selected sprite.`,
		Args: cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return browse.Run(ctx, a.api, a.session, browse.Options{
				PageSize: a.pageSize,
				Now:      a.now,
			})
		}),
	}
}
