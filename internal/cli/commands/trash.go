package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
	"github.com/pixelshop-dev/pixelshop/internal/cli/trash"
)

// NewTrashCmd creates the trash command group
func NewTrashCmd(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Review, restore and purge deleted sprites",
	}

	cmd.AddCommand(newTrashListCmd(g))
	cmd.AddCommand(newTrashRestoreCmd(g))
	cmd.AddCommand(newTrashPurgeCmd(g))

	return cmd
}

func newTrashListCmd(g *Globals) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List sprites in the trash",
		Args:    cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runTrashList(ctx, a, page)
		}),
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")

	return cmd
}

func runTrashList(ctx context.Context, a *app, page int) error {
	result, err := a.api.ListTrash(ctx, pageRequest(page, client.TrashPageSize))
	if err != nil {
		return sessionHint(err)
	}

	if len(result.Content) == 0 {
		fmt.Fprintln(a.out, "Trash is empty.")
		return nil
	}

	now := a.now()
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDELETED AT\tEXPIRES")
	fmt.Fprintln(w, "──\t────\t──────────\t───────")
	for _, sprite := range result.Content {
		deletedAt, expires := "-", "-"
		if sprite.DeletedAt != nil && !sprite.DeletedAt.IsZero() {
			deletedAt = formatTime(*sprite.DeletedAt)
			days := trash.DaysRemaining(sprite.DeletedAt.Time, now)
			expires = fmt.Sprintf("%dd left", days)
			if trash.Urgent(days) {
				expires += " !"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", sprite.ID, sprite.Name, deletedAt, expires)
	}
	w.Flush()

	fmt.Fprintf(a.out, "\nItems are permanently deleted %d days after they are trashed. '!' marks items with %d days or less.\n",
		int(trash.Retention.Hours()/24), trash.UrgentDays)
	pageFooter(a.out, result)
	return nil
}

func newTrashRestoreCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <sprite-id>...",
		Short: "Restore sprites from the trash",
		Args:  cobra.MinimumNArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runTrashRestore(ctx, a, args)
		}),
	}
}

func runTrashRestore(ctx context.Context, a *app, ids []string) error {
	return forEachID(ctx, a, ids, func(ctx context.Context, id string) (string, error) {
		sprite, err := a.api.RestoreSprite(ctx, id)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("✓ Restored %s", sprite.Name), nil
	})
}

func newTrashPurgeCmd(g *Globals) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge <sprite-id>...",
		Short: "Permanently delete sprites from the trash",
		Args:  cobra.MinimumNArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runTrashPurge(ctx, a, args, yes)
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runTrashPurge(ctx context.Context, a *app, ids []string, yes bool) error {
	if !yes {
		label := fmt.Sprintf("Permanently delete %d sprite(s)? This cannot be undone", len(ids))
		ok, err := a.confirm(label)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
	}

	return forEachID(ctx, a, ids, func(ctx context.Context, id string) (string, error) {
		if err := a.api.PurgeSprite(ctx, id); err != nil {
			return "", err
		}
		return fmt.Sprintf("✓ Permanently deleted %s", id), nil
	})
}
