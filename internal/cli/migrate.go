package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/database"
)

// NewMigrateCommand creates the migrate command group.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	withMigrator := func(fn func(*database.Migrator, []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			mg, err := database.NewMigrator(opts.Config.DB.DSN(), opts.Log)
			if err != nil {
				return err
			}
			defer mg.Close()
			return fn(mg, args)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE: withMigrator(func(mg *database.Migrator, _ []string) error {
			return mg.Up()
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: withMigrator(func(mg *database.Migrator, _ []string) error {
			return mg.Down()
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "goto VERSION",
		Short: "Migrate to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: withMigrator(func(mg *database.Migrator, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			return mg.Goto(uint(version))
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			mg, err := database.NewMigrator(opts.Config.DB.DSN(), opts.Log)
			if err != nil {
				return err
			}
			defer mg.Close()
			version, dirty, ok, err := mg.Status()
			if err != nil {
				return err
			}
			if !ok {
				cmd.Println("no migrations applied")
				return nil
			}
			cmd.Printf("version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	})
	return cmd
}
