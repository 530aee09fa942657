// Package cli holds the scrapmarket commands.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/config"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/env"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/logging"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// RootOptions is the state shared by all commands.
type RootOptions struct {
	Config config.Config
	Log    zerolog.Logger
}

// NewRootCommand creates the scrapmarket command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "scrapmarket",
		Short:         "ScrapMarket - scrap materials marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			env.SetupEnvFile()
			opts.Config = config.Load()
			opts.Log = logging.Init(opts.Config.Log)
			return nil
		},
	}

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewBackfillCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("scrapmarket " + Version)
		},
	}
}
