package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pixelshop-dev/pixelshop/internal/cli/config"
	"github.com/pixelshop-dev/pixelshop/internal/cli/serverselect"
	"github.com/pixelshop-dev/pixelshop/internal/cli/userconfig"
)

// NewSelectServerCmd creates the select-server command
func NewSelectServerCmd(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-server [url-or-alias]",
		Short: "Select the server to use for commands",
		Long: `Select the server to use for commands.

If no param is provided, an interactive prompt will be shown.

Examples:
  $ pixelshop select-server                                   # Interactive selection
  $ pixelshop select-server https://api.pixelshop.dev/api/v1  # Select by URL
  $ pixelshop select-server production                        # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}

			cfg, err := config.LoadFromCurrentDir()
			if err != nil {
				return fmt.Errorf("failed to load config: %w\nRun 'pixelshop init <api-url>' to create a configuration file", err)
			}
			env, err := g.LoadEnv()
			if err != nil {
				return err
			}
			return runSelectServer(cmd.OutOrStdout(), cfg, env.ConfigDir, urlOrAlias, serverselect.PromptServerSelection)
		},
	}

	return cmd
}

func runSelectServer(out io.Writer, cfg *config.Config, configDir, urlOrAlias string, prompt serverselect.Prompter) error {
	var server *config.Server
	var err error

	if urlOrAlias != "" {
		server, err = serverselect.GetServerByURLOrAlias(cfg, urlOrAlias)
	} else {
		server, err = prompt(cfg)
	}
	if err != nil {
		return err
	}

	if err := userconfig.SetSelectedServer(configDir, server.URL); err != nil {
		return fmt.Errorf("failed to save selected server: %w", err)
	}

	fmt.Fprintf(out, "Selected server: %s\n", server.Label())
	return nil
}
