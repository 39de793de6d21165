package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
	"github.com/pixelshop-dev/pixelshop/internal/cli/validate"
)

// NewSpritesCmd creates the sprites command group
func NewSpritesCmd(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sprites",
		Aliases: []string{"sprite"},
		Short:   "Browse and manage sprites",
	}

	cmd.AddCommand(newSpritesListCmd(g))
	cmd.AddCommand(newSpritesShowCmd(g))
	cmd.AddCommand(newSpritesCreateCmd(g))
	cmd.AddCommand(newSpritesUpdateCmd(g))
	cmd.AddCommand(newSpritesDeleteCmd(g))

	return cmd
}

type spriteListOptions struct {
	mine       bool
	user       string
	keyword    string
	categories []string
	sortBy     string
	sortOrder  string
	page       int
}

func newSpritesListCmd(g *Globals) *cobra.Command {
	var opts spriteListOptions

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List sprites",
		Example: `  $ pixelshop sprites ls --keyword slime --category monsters
  $ pixelshop sprites ls --mine --sort price --order asc`,
		Args: cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runSpritesList(ctx, a, opts)
		}),
	}

	cmd.Flags().BoolVar(&opts.mine, "mine", false, "Only sprites you created")
	cmd.Flags().StringVar(&opts.user, "user", "", "Only sprites created by this user ID")
	cmd.Flags().StringVarP(&opts.keyword, "keyword", "k", "", "Search by name")
	cmd.Flags().StringSliceVarP(&opts.categories, "category", "c", nil, "Category name or ID (repeatable)")
	cmd.Flags().StringVar(&opts.sortBy, "sort", client.SortByCreatedAt, "Sort by price or createdAt")
	cmd.Flags().StringVar(&opts.sortOrder, "order", client.SortDesc, "Sort order (asc or desc)")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "Page number")
	cmd.MarkFlagsMutuallyExclusive("mine", "user")

	return cmd
}

func runSpritesList(ctx context.Context, a *app, opts spriteListOptions) error {
	filter := client.SpriteFilter{
		Keyword:   opts.keyword,
		SortBy:    opts.sortBy,
		SortOrder: opts.sortOrder,
	}
	if err := filter.Validate(); err != nil {
		return err
	}

	categoryIDs, err := resolveCategories(ctx, a, opts.categories)
	if err != nil {
		return err
	}
	filter.CategoryIDs = categoryIDs

	page := pageRequest(opts.page, a.pageSize)

	var result *client.Page[client.SpriteSummary]
	switch {
	case opts.mine:
		result, err = a.api.ListMySprites(ctx, filter, page)
	case opts.user != "":
		result, err = a.api.ListUserSprites(ctx, opts.user, filter, page)
	default:
		result, err = a.api.ListSprites(ctx, filter, page)
	}
	if err != nil {
		return sessionHint(err)
	}

	if len(result.Content) == 0 {
		fmt.Fprintln(a.out, "No sprites found.")
		if opts.mine {
			fmt.Fprintln(a.out, "\nUpload one with: pixelshop sprites create --name <name> --category <category> --image <file>")
		}
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tCREATED AT")
	fmt.Fprintln(w, "──\t────\t─────\t──────────")
	for _, sprite := range result.Content {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			sprite.ID,
			sprite.Name,
			formatPrice(sprite.Price),
			formatTime(sprite.CreatedAt),
		)
	}
	w.Flush()

	pageFooter(a.out, result)
	return nil
}

func newSpritesShowCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show <sprite-id>",
		Short: "Show a sprite",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runSpritesShow(ctx, a, args[0])
		}),
	}
}

func runSpritesShow(ctx context.Context, a *app, id string) error {
	sprite, err := a.api.GetSprite(ctx, id)
	if err != nil {
		return sessionHint(err)
	}
	printSprite(a, sprite)
	return nil
}

func printSprite(a *app, sprite *client.Sprite) {
	fmt.Fprintf(a.out, "ID:         %s\n", sprite.ID)
	fmt.Fprintf(a.out, "Name:       %s\n", sprite.Name)
	fmt.Fprintf(a.out, "Slug:       %s\n", sprite.Slug)
	if len(sprite.CategoryNames) > 0 {
		fmt.Fprintf(a.out, "Categories: %s\n", strings.Join(sprite.CategoryNames, ", "))
	}
	fmt.Fprintf(a.out, "Image:      %s\n", sprite.ImageURL)
	fmt.Fprintf(a.out, "Created:    %s\n", formatTime(sprite.CreatedAt))
}

type spriteWriteOptions struct {
	name       string
	categories []string
	image      string
}

func newSpritesCreateCmd(g *Globals) *cobra.Command {
	var opts spriteWriteOptions

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Upload a new sprite",
		Example: `  $ pixelshop sprites create --name "Green Slime" --category monsters --image slime.png`,
		Args:    cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runSpritesCreate(ctx, a, opts)
		}),
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "Sprite name")
	cmd.Flags().StringSliceVarP(&opts.categories, "category", "c", nil, "Category name or ID (repeatable)")
	cmd.Flags().StringVar(&opts.image, "image", "", "Path to the sprite image")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runSpritesCreate(ctx context.Context, a *app, opts spriteWriteOptions) error {
	categoryIDs, err := resolveCategories(ctx, a, opts.categories)
	if err != nil {
		return err
	}

	req := client.SpriteRequest{Name: strings.TrimSpace(opts.name), CategoryIDs: categoryIDs}
	if err := validate.Struct(req); err != nil {
		return err
	}

	image, err := client.ReadUpload(opts.image)
	if err != nil {
		return err
	}

	sprite, err := a.api.CreateSprite(ctx, req, image)
	if err != nil {
		return fmt.Errorf("failed to create sprite: %w", sessionHint(err))
	}

	fmt.Fprintf(a.out, "✓ Created sprite %s (%s)\n", sprite.Name, sprite.ID)
	return nil
}

func newSpritesUpdateCmd(g *Globals) *cobra.Command {
	var opts spriteWriteOptions

	cmd := &cobra.Command{
		Use:   "update <sprite-id>",
		Short: "Rename, recategorize or replace the image of a sprite",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runSpritesUpdate(ctx, a, args[0], opts)
		}),
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "New name")
	cmd.Flags().StringSliceVarP(&opts.categories, "category", "c", nil, "Replace categories (repeatable)")
	cmd.Flags().StringVar(&opts.image, "image", "", "Path to a replacement image")

	return cmd
}

func runSpritesUpdate(ctx context.Context, a *app, id string, opts spriteWriteOptions) error {
	current, err := a.api.GetSprite(ctx, id)
	if err != nil {
		return sessionHint(err)
	}

	// Start from the stored sprite so unset flags keep their values
	req := client.SpriteRequest{Name: current.Name, CategoryIDs: current.CategoryIDs}
	if name := strings.TrimSpace(opts.name); name != "" {
		req.Name = name
	}
	if len(opts.categories) > 0 {
		if req.CategoryIDs, err = resolveCategories(ctx, a, opts.categories); err != nil {
			return err
		}
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	var image *client.Upload
	if opts.image != "" {
		if image, err = client.ReadUpload(opts.image); err != nil {
			return err
		}
	}

	sprite, err := a.api.UpdateSprite(ctx, current.ID, req, image)
	if err != nil {
		return fmt.Errorf("failed to update sprite: %w", sessionHint(err))
	}

	fmt.Fprintf(a.out, "✓ Updated sprite %s\n", sprite.Name)
	return nil
}

func newSpritesDeleteCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <sprite-id>...",
		Aliases: []string{"delete"},
		Short:   "Move sprites to the trash",
		Long: `Move sprites to the trash.

Trashed sprites can be restored for 30 days with 'pixelshop trash restore'.`,
		Args: cobra.MinimumNArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runSpritesDelete(ctx, a, args)
		}),
	}
}

func runSpritesDelete(ctx context.Context, a *app, ids []string) error {
	return forEachID(ctx, a, ids, func(ctx context.Context, id string) (string, error) {
		if err := a.api.DeleteSprite(ctx, id); err != nil {
			return "", err
		}
		return fmt.Sprintf("✓ Moved %s to trash", id), nil
	})
}
