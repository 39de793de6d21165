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

// NewCategoriesCmd creates the categories command group
func NewCategoriesCmd(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "List and manage sprite categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List categories",
		Args:    cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runCategoriesList(ctx, a)
		}),
	})
	cmd.AddCommand(newCategoriesCreateCmd(g))
	cmd.AddCommand(newCategoriesUpdateCmd(g))
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <category-id>...",
		Aliases: []string{"delete"},
		Short:   "Delete categories (admin only)",
		Args:    cobra.MinimumNArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runCategoriesDelete(ctx, a, args)
		}),
	})

	return cmd
}

func runCategoriesList(ctx context.Context, a *app) error {
	categories, err := a.api.ListCategories(ctx)
	if err != nil {
		return sessionHint(err)
	}

	if len(categories) == 0 {
		fmt.Fprintln(a.out, "No categories found.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSLUG\tDESCRIPTION")
	fmt.Fprintln(w, "──\t────\t────\t───────────")
	for _, category := range categories {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", category.ID, category.Name, category.Slug, category.Description)
	}
	w.Flush()
	return nil
}

func newCategoriesCreateCmd(g *Globals) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category (admin only)",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runCategoriesCreate(ctx, a, name, description)
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "Category name")
	cmd.Flags().StringVar(&description, "description", "", "Category description")

	return cmd
}

func runCategoriesCreate(ctx context.Context, a *app, name, description string) error {
	req := client.CategoryRequest{Name: strings.TrimSpace(name), Description: strings.TrimSpace(description)}
	if err := validate.Struct(req); err != nil {
		return err
	}

	category, err := a.api.CreateCategory(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", sessionHint(err))
	}

	fmt.Fprintf(a.out, "✓ Created category %s (%s)\n", category.Name, category.ID)
	return nil
}

func newCategoriesUpdateCmd(g *Globals) *cobra.Command {
	var name, description string

	var cmd *cobra.Command
	cmd = &cobra.Command{
		Use:   "update <category-id>",
		Short: "Rename or describe a category (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			var newDescription *string
			if cmd.Flags().Changed("description") {
				newDescription = &description
			}
			return runCategoriesUpdate(ctx, a, args[0], name, newDescription)
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")

	return cmd
}

func runCategoriesUpdate(ctx context.Context, a *app, id, name string, description *string) error {
	current, err := a.api.GetCategory(ctx, id)
	if err != nil {
		return sessionHint(err)
	}

	req := client.CategoryRequest{Name: current.Name, Description: current.Description}
	if name = strings.TrimSpace(name); name != "" {
		req.Name = name
	}
	if description != nil {
		req.Description = strings.TrimSpace(*description)
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	category, err := a.api.UpdateCategory(ctx, current.ID, req)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", sessionHint(err))
	}

	fmt.Fprintf(a.out, "✓ Updated category %s\n", category.Name)
	return nil
}

func runCategoriesDelete(ctx context.Context, a *app, ids []string) error {
	return forEachID(ctx, a, ids, func(ctx context.Context, id string) (string, error) {
		if err := a.api.DeleteCategory(ctx, id); err != nil {
			return "", err
		}
		return fmt.Sprintf("✓ Deleted category %s", id), nil
	})
}
