package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewUsersCmd creates the users command group
func NewUsersCmd(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Find marketplace creators",
	}

	var keyword string
	var page int

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runUsersList(ctx, a, keyword, page)
		}),
	}
	ls.Flags().StringVarP(&keyword, "keyword", "k", "", "Search username, email or full name")
	ls.Flags().IntVarP(&page, "page", "p", 1, "Page number")

	cmd.AddCommand(ls)
	return cmd
}

func runUsersList(ctx context.Context, a *app, keyword string, page int) error {
	result, err := a.api.ListUsers(ctx, keyword, pageRequest(page, a.pageSize))
	if err != nil {
		return sessionHint(err)
	}

	if len(result.Content) == 0 {
		fmt.Fprintln(a.out, "No users found.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tFULL NAME\tROLE")
	fmt.Fprintln(w, "──\t────────\t─────────\t────")
	for _, user := range result.Content {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", user.ID, user.Username, user.FullName, user.Role)
	}
	w.Flush()

	pageFooter(a.out, result)
	return nil
}
