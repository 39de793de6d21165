package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pixelshop-dev/pixelshop/internal/cli/auth"
	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
	"github.com/pixelshop-dev/pixelshop/internal/cli/config"
	"github.com/pixelshop-dev/pixelshop/internal/cli/serverselect"
	"github.com/pixelshop-dev/pixelshop/internal/cli/session"
	envconfig "github.com/pixelshop-dev/pixelshop/internal/config"
	"github.com/pixelshop-dev/pixelshop/internal/logger"
)

// Globals carries root-level flags and settings into every command
type Globals struct {
	ServerAlias string
	Env         *envconfig.Config
}

// app is everything a command needs once a server has been chosen
type app struct {
	api      *client.Client
	server   *config.Server
	session  *session.Store
	out      io.Writer
	pageSize int
	now      func() time.Time

	// confirm asks a yes/no question; false means the user declined
	confirm func(label string) (bool, error)
	// readSecret reads a password without echo
	readSecret func(label string) (string, error)
	openURL    func(url string) error
}

// LoadEnv reads the environment configuration once
func (g *Globals) LoadEnv() (*envconfig.Config, error) {
	if g.Env != nil {
		return g.Env, nil
	}
	env, err := envconfig.Load()
	if err != nil {
		return nil, err
	}
	g.Env = env
	return env, nil
}

// resolveServer picks the server from PIXELSHOP_API_URL or pixelshop.yaml
func (g *Globals) resolveServer(warnings io.Writer) (*config.Server, int, error) {
	env, err := g.LoadEnv()
	if err != nil {
		return nil, 0, err
	}

	if env.API.URL != "" && g.ServerAlias == "" {
		return &config.Server{URL: env.API.URL, Alias: "env"}, client.DefaultPageSize, nil
	}

	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load config: %w\nRun 'pixelshop init <api-url>' to create a configuration file", err)
	}

	resolver := &serverselect.Resolver{ConfigDir: env.ConfigDir, Warnings: warnings}
	server, err := resolver.ResolveServer(cfg, g.ServerAlias)
	if err != nil {
		return nil, 0, err
	}

	if server.URL == "" {
		return nil, 0, fmt.Errorf("server URL is empty. Please edit %s and add a valid URL", config.ConfigFileName)
	}

	return server, cfg.EffectivePageSize(client.DefaultPageSize), nil
}

// open builds the app for cmd against the resolved server
func (g *Globals) open(cmd *cobra.Command) (*app, error) {
	server, pageSize, err := g.resolveServer(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	store := session.Open(g.Env.ConfigDir, server.URL)
	api, err := client.New(server.URL,
		client.WithTokenStore(auth.Default),
		client.WithSession(store),
		client.WithLogger(logger.GetLogger()),
		client.WithTimeout(g.Env.API.Timeout),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		api:        api,
		server:     server,
		session:    store,
		out:        cmd.OutOrStdout(),
		pageSize:   pageSize,
		now:        time.Now,
		confirm:    promptConfirm,
		readSecret: promptSecret(cmd.OutOrStdout()),
		openURL:    openBrowser,
	}, nil
}

// withApp adapts a run function to cobra's RunE
func (g *Globals) withApp(run func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := g.open(cmd)
		if err != nil {
			return err
		}
		return run(cmd.Context(), a, args)
	}
}

func promptConfirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation cancelled: %w", err)
	}
	return true, nil
}

func promptSecret(out io.Writer) func(label string) (string, error) {
	return func(label string) (string, error) {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return "", fmt.Errorf("%s is required in non-interactive mode", strings.ToLower(label))
		}
		fmt.Fprintf(out, "%s: ", label)
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}
		return string(secret), nil
	}
}

// sessionHint drops the refresh failure detail from an expired session; the
// sentinel already tells the user what to do.
func sessionHint(err error) error {
	if client.IsSessionExpired(err) {
		log := logger.GetLogger()
		log.Debug().Err(err).Msg("session expired")
		return client.ErrSessionExpired
	}
	return err
}

func formatPrice(price float64) string {
	if price == 0 {
		return "free"
	}
	return fmt.Sprintf("$%.2f", price)
}

func formatTime(ts client.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

// pageFooter prints the 1-based position within a paginated result
func pageFooter[T any](w io.Writer, page *client.Page[T]) {
	if page.TotalPages == 0 {
		return
	}
	fmt.Fprintf(w, "\nPage %d / %d (%d total)", page.Number+1, page.TotalPages, page.TotalElements)
	if page.HasNext() {
		fmt.Fprintf(w, ", next: --page %d", page.Number+2)
	}
	fmt.Fprintln(w)
}

// pageRequest converts a 1-based --page flag
func pageRequest(page, size int) client.PageRequest {
	return client.PageRequest{Page: max(page-1, 0), Size: size}
}
