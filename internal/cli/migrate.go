package cli

import (
	"context"
	"fmt"

	"Tracker/internal/app"

	"github.com/spf13/cobra"
)

var migrateCommands = []string{"up", "up-by-one", "down", "redo", "reset", "status", "version"}

// migrate is a seam for testing app.Migrate.
var migrate = func(ctx context.Context, dsn, command string) error {
	return app.Migrate(ctx, dsn, command)
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <command>",
		Short: "Run database migrations",
		Long: `Run a goose command against the embedded migrations.

Commands: up, up-by-one, down, redo, reset, status, version.`,
		Args:          cobra.ExactArgs(1),
		ValidArgs:     migrateCommands,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isMigrateCommand(args[0]) {
				return fmt.Errorf("unknown migrate command %q: must be one of %v", args[0], migrateCommands)
			}
			if err := rootOpts.requireDSN(); err != nil {
				return err
			}
			if err := migrate(cmd.Context(), rootOpts.DSN, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", args[0])
			return nil
		},
	}
}

func isMigrateCommand(s string) bool {
	for _, c := range migrateCommands {
		if c == s {
			return true
		}
	}
	return false
}
