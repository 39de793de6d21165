package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
	"github.com/pixelshop-dev/pixelshop/internal/cli/validate"
)

// NewProfileCmd creates the profile command group
func NewProfileCmd(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Edit your profile",
	}

	var username, fullName string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change your username or full name",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runProfileUpdate(ctx, a, username, fullName)
		}),
	}
	update.Flags().StringVar(&username, "username", "", "New username")
	update.Flags().StringVar(&fullName, "name", "", "New full name")

	avatar := &cobra.Command{
		Use:   "avatar <image>",
		Short: "Upload a new avatar",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runProfileAvatar(ctx, a, args[0])
		}),
	}

	cmd.AddCommand(update, avatar)
	return cmd
}

func runProfileUpdate(ctx context.Context, a *app, username, fullName string) error {
	current, err := a.api.Me(ctx)
	if err != nil {
		return sessionHint(err)
	}

	req := client.ProfileRequest{Username: current.Username, FullName: current.FullName}
	if username = strings.TrimSpace(username); username != "" {
		req.Username = username
	}
	if fullName = strings.TrimSpace(fullName); fullName != "" {
		req.FullName = fullName
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	user, err := a.api.UpdateProfile(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", sessionHint(err))
	}

	fmt.Fprintf(a.out, "✓ Profile updated: %s (%s)\n", user.Username, user.FullName)
	return nil
}

func runProfileAvatar(ctx context.Context, a *app, path string) error {
	image, err := client.ReadUpload(path)
	if err != nil {
		return err
	}

	if _, err := a.api.UpdateAvatar(ctx, image); err != nil {
		return fmt.Errorf("failed to update avatar: %w", sessionHint(err))
	}

	fmt.Fprintln(a.out, "✓ Avatar updated")
	return nil
}
