package commands

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pixelshop-dev/pixelshop/internal/cli/auth"
	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
	"github.com/pixelshop-dev/pixelshop/internal/cli/validate"
)

// NewLoginCmd creates the login command
func NewLoginCmd(g *Globals) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the marketplace",
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			// Environment credentials are useful for CI
			if email == "" {
				email = g.Env.Credentials.Email
			}
			if password == "" {
				password = g.Env.Credentials.Password
			}
			return runLogin(ctx, a, email, password)
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set PIXELSHOP_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set PIXELSHOP_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, a *app, email, password string) error {
	if email == "" {
		return fmt.Errorf("email is required (use --email flag or PIXELSHOP_EMAIL env var)")
	}

	if password == "" {
		secret, err := a.readSecret("Password")
		if err != nil {
			return err
		}
		password = secret
	}

	req := client.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := validate.Struct(req); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logging in to %s...\n", a.server.Label())

	user, err := a.api.Login(ctx, req)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintln(a.out, "✓ Login successful!")
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", user.Username, user.Email)
	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runLogout(ctx, a)
		}),
	}
}

func runLogout(ctx context.Context, a *app) error {
	if err := a.api.Logout(ctx); err != nil {
		// Local state is gone either way
		fmt.Fprintf(a.out, "Warning: server logout failed: %v\n", err)
	}
	fmt.Fprintf(a.out, "✓ Logged out of %s\n", a.server.Label())
	return nil
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runWhoami(ctx, a)
		}),
	}
}

func runWhoami(ctx context.Context, a *app) error {
	cached, err := a.api.CachedUser()
	if err != nil {
		return err
	}
	if cached == nil && !a.api.HasTokens() {
		return auth.ErrNotAuthenticated
	}

	if cached != nil {
		fmt.Fprintf(a.out, "Cached session: %s (%s), checking with server...\n", cached.Username, cached.Email)
	}

	// The cache is only a hint; the server decides whether the session lives
	user, err := a.api.Me(ctx)
	if err != nil {
		if !client.IsSessionExpired(err) && client.IsStatus(err, http.StatusUnauthorized) {
			return auth.ErrNotAuthenticated
		}
		return sessionHint(err)
	}

	fmt.Fprintf(a.out, "Server:   %s\n", a.server.Label())
	fmt.Fprintf(a.out, "Username: %s\n", user.Username)
	fmt.Fprintf(a.out, "Email:    %s\n", user.Email)
	if user.FullName != "" {
		fmt.Fprintf(a.out, "Name:     %s\n", user.FullName)
	}
	fmt.Fprintf(a.out, "Role:     %s\n", user.Role)
	if exp, ok := a.api.AccessTokenExpiry(); ok {
		fmt.Fprintf(a.out, "Access token expires %s\n", exp.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
