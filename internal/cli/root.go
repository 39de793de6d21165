package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pixelshop-dev/pixelshop/internal/cli/commands"
	"github.com/pixelshop-dev/pixelshop/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	globals := &commands.Globals{}
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "pixelshop",
		Short: "Pixelshop - Pixel art marketplace from the terminal",
		Long: `Pixelshop CLI - Browse, upload and sell pixel art sprites and asset packs.

Point it at a marketplace API with 'pixelshop init <api-url>', sign in with
'pixelshop login' and explore with 'pixelshop browse'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}

			env, err := globals.LoadEnv()
			if err != nil {
				return err
			}

			level := env.Logging.Level
			if logLevel != "" {
				level = logLevel
			}
			logger.Init(level, env.Logging.Format)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&globals.ServerAlias, "server", "", "Server alias from pixelshop.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, off)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pixelshop version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSelectServerCmd(globals))
	rootCmd.AddCommand(commands.NewLoginCmd(globals))
	rootCmd.AddCommand(commands.NewLogoutCmd(globals))
	rootCmd.AddCommand(commands.NewWhoamiCmd(globals))
	rootCmd.AddCommand(commands.NewRegisterCmd(globals))
	rootCmd.AddCommand(commands.NewResetPasswordCmd(globals))
	rootCmd.AddCommand(commands.NewSpritesCmd(globals))
	rootCmd.AddCommand(commands.NewTrashCmd(globals))
	rootCmd.AddCommand(commands.NewPacksCmd(globals))
	rootCmd.AddCommand(commands.NewCategoriesCmd(globals))
	rootCmd.AddCommand(commands.NewUsersCmd(globals))
	rootCmd.AddCommand(commands.NewProfileCmd(globals))
	rootCmd.AddCommand(commands.NewOpenCmd(globals))
	rootCmd.AddCommand(commands.NewBrowseCmd(globals))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
