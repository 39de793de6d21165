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

// NewPacksCmd creates the packs command group
func NewPacksCmd(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "packs",
		Aliases: []string{"pack"},
		Short:   "Browse and manage asset packs",
	}

	cmd.AddCommand(newPacksListCmd(g))
	cmd.AddCommand(newPacksShowCmd(g))
	cmd.AddCommand(newPacksCreateCmd(g))
	cmd.AddCommand(newPacksUpdateCmd(g))
	cmd.AddCommand(newPacksDeleteCmd(g))

	return cmd
}

type packListOptions struct {
	keyword    string
	categories []string
	minPrice   float64
	maxPrice   float64
	sortBy     string
	sortOrder  string
	page       int
}

func newPacksListCmd(g *Globals) *cobra.Command {
	var opts packListOptions

	var cmd *cobra.Command
	cmd = &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List asset packs",
		Example: `  $ pixelshop packs ls --max-price 10 --sort price --order asc`,
		Args:    cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			filter := client.AssetPackFilter{
				Keyword:   opts.keyword,
				SortBy:    opts.sortBy,
				SortOrder: opts.sortOrder,
			}
			if cmd.Flags().Changed("min-price") {
				filter.MinPrice = &opts.minPrice
			}
			if cmd.Flags().Changed("max-price") {
				filter.MaxPrice = &opts.maxPrice
			}
			return runPacksList(ctx, a, filter, opts.categories, opts.page)
		}),
	}

	cmd.Flags().StringVarP(&opts.keyword, "keyword", "k", "", "Search by name")
	cmd.Flags().StringSliceVarP(&opts.categories, "category", "c", nil, "Category name or ID (repeatable)")
	cmd.Flags().Float64Var(&opts.minPrice, "min-price", 0, "Minimum price")
	cmd.Flags().Float64Var(&opts.maxPrice, "max-price", 0, "Maximum price")
	cmd.Flags().StringVar(&opts.sortBy, "sort", client.SortByCreatedAt, "Sort by price or createdAt")
	cmd.Flags().StringVar(&opts.sortOrder, "order", client.SortDesc, "Sort order (asc or desc)")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "Page number")

	return cmd
}

func runPacksList(ctx context.Context, a *app, filter client.AssetPackFilter, categories []string, page int) error {
	if err := filter.Validate(); err != nil {
		return err
	}

	categoryIDs, err := resolveCategories(ctx, a, categories)
	if err != nil {
		return err
	}
	filter.CategoryIDs = categoryIDs

	result, err := a.api.ListAssetPacks(ctx, filter, pageRequest(page, a.pageSize))
	if err != nil {
		return sessionHint(err)
	}

	if len(result.Content) == 0 {
		fmt.Fprintln(a.out, "No asset packs found.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSPRITES\tCREATED AT")
	fmt.Fprintln(w, "──\t────\t─────\t───────\t──────────")
	for _, pack := range result.Content {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			pack.ID,
			pack.Name,
			formatPrice(pack.Price),
			pack.SpriteCount,
			formatTime(pack.CreatedAt),
		)
	}
	w.Flush()

	pageFooter(a.out, result)
	return nil
}

func newPacksShowCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show <pack-id>",
		Short: "Show an asset pack and its sprites",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runPacksShow(ctx, a, args[0])
		}),
	}
}

func runPacksShow(ctx context.Context, a *app, id string) error {
	pack, err := a.api.GetAssetPack(ctx, id)
	if err != nil {
		return sessionHint(err)
	}

	fmt.Fprintf(a.out, "ID:          %s\n", pack.ID)
	fmt.Fprintf(a.out, "Name:        %s\n", pack.Name)
	if pack.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", pack.Description)
	}
	fmt.Fprintf(a.out, "Price:       %s\n", formatPrice(pack.Price))
	if len(pack.CategoryNames) > 0 {
		fmt.Fprintf(a.out, "Categories:  %s\n", strings.Join(pack.CategoryNames, ", "))
	}
	fmt.Fprintf(a.out, "Created:     %s\n", formatTime(pack.CreatedAt))

	if len(pack.Sprites) > 0 {
		fmt.Fprintf(a.out, "\nSprites (%d):\n", len(pack.Sprites))
		for _, sprite := range pack.Sprites {
			fmt.Fprintf(a.out, "  %s  %s\n", sprite.ID, sprite.Name)
		}
	}
	return nil
}

type packWriteOptions struct {
	name        string
	description string
	price       float64
	sprites     []string
	image       string
}

func newPacksCreateCmd(g *Globals) *cobra.Command {
	var opts packWriteOptions

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create an asset pack",
		Example: `  $ pixelshop packs create --name "Dungeon Kit" --price 4.99 --sprite <id> --sprite <id> --image cover.png`,
		Args:    cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runPacksCreate(ctx, a, opts)
		}),
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "Pack name")
	cmd.Flags().StringVar(&opts.description, "description", "", "Pack description")
	cmd.Flags().Float64Var(&opts.price, "price", 0, "Price (0 for free)")
	cmd.Flags().StringSliceVar(&opts.sprites, "sprite", nil, "Sprite ID to include (repeatable)")
	cmd.Flags().StringVar(&opts.image, "image", "", "Path to the cover image")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runPacksCreate(ctx context.Context, a *app, opts packWriteOptions) error {
	req := client.AssetPackRequest{
		Name:        strings.TrimSpace(opts.name),
		Description: strings.TrimSpace(opts.description),
		Price:       opts.price,
		SpriteIDs:   opts.sprites,
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	image, err := client.ReadUpload(opts.image)
	if err != nil {
		return err
	}

	pack, err := a.api.CreateAssetPack(ctx, req, image)
	if err != nil {
		return fmt.Errorf("failed to create asset pack: %w", sessionHint(err))
	}

	fmt.Fprintf(a.out, "✓ Created asset pack %s (%s)\n", pack.Name, pack.ID)
	return nil
}

func newPacksUpdateCmd(g *Globals) *cobra.Command {
	var opts packWriteOptions

	var cmd *cobra.Command
	cmd = &cobra.Command{
		Use:   "update <pack-id>",
		Short: "Update an asset pack",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			flags := cmd.Flags()
			changed := packChanges{
				description: flags.Changed("description"),
				price:       flags.Changed("price"),
				sprites:     flags.Changed("sprite"),
			}
			return runPacksUpdate(ctx, a, args[0], opts, changed)
		}),
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "New name")
	cmd.Flags().StringVar(&opts.description, "description", "", "New description")
	cmd.Flags().Float64Var(&opts.price, "price", 0, "New price")
	cmd.Flags().StringSliceVar(&opts.sprites, "sprite", nil, "Replace the sprites (repeatable)")
	cmd.Flags().StringVar(&opts.image, "image", "", "Path to a replacement cover image")

	return cmd
}

// packChanges records which optional flags were set explicitly, since zero
// is a valid price and an empty description is a valid edit
type packChanges struct {
	description bool
	price       bool
	sprites     bool
}

func runPacksUpdate(ctx context.Context, a *app, id string, opts packWriteOptions, changed packChanges) error {
	current, err := a.api.GetAssetPack(ctx, id)
	if err != nil {
		return sessionHint(err)
	}

	req := client.AssetPackRequest{
		Name:        current.Name,
		Description: current.Description,
		Price:       current.Price,
	}
	for _, sprite := range current.Sprites {
		req.SpriteIDs = append(req.SpriteIDs, sprite.ID)
	}
	if name := strings.TrimSpace(opts.name); name != "" {
		req.Name = name
	}
	if changed.description {
		req.Description = strings.TrimSpace(opts.description)
	}
	if changed.price {
		req.Price = opts.price
	}
	if changed.sprites {
		req.SpriteIDs = opts.sprites
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

	pack, err := a.api.UpdateAssetPack(ctx, current.ID, req, image)
	if err != nil {
		return fmt.Errorf("failed to update asset pack: %w", sessionHint(err))
	}

	fmt.Fprintf(a.out, "✓ Updated asset pack %s\n", pack.Name)
	return nil
}

func newPacksDeleteCmd(g *Globals) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <pack-id>...",
		Aliases: []string{"delete"},
		Short:   "Delete asset packs",
		Args:    cobra.MinimumNArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runPacksDelete(ctx, a, args, yes)
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runPacksDelete(ctx context.Context, a *app, ids []string, yes bool) error {
	if !yes {
		ok, err := a.confirm(fmt.Sprintf("Delete %d asset pack(s)", len(ids)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
	}

	return forEachID(ctx, a, ids, func(ctx context.Context, id string) (string, error) {
		if err := a.api.DeleteAssetPack(ctx, id); err != nil {
			return "", err
		}
		return fmt.Sprintf("✓ Deleted asset pack %s", id), nil
	})
}
