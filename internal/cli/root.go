package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DSN        string
	BcryptCost int
}

// NewRootCommand creates the root command of the admin CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "trackerctl",
		Short: "Activity tracker administration",
		Long:  "Runs schema migrations and manages accounts of the activity tracker.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
				return fmt.Errorf("invalid cost %d: must be between %d and %d", opts.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", os.Getenv("PG_DSN"), "Postgres DSN (default $PG_DSN)")
	cmd.PersistentFlags().IntVar(&opts.BcryptCost, "cost", bcrypt.DefaultCost, "bcrypt cost for new hashes")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewHashPasswordCommand(opts))
	cmd.AddCommand(NewCreateUserCommand(opts))

	return cmd
}

func (o *RootOptions) requireDSN() error {
	if o.DSN == "" {
		return fmt.Errorf("no database: set --dsn or PG_DSN")
	}
	return nil
}
