package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"Tracker/internal/dto"
	"Tracker/internal/repo"
	"Tracker/internal/service"
	"Tracker/internal/validate"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// openUsers is a seam for testing; it returns the user repository and a
// function that releases it.
var openUsers = func(ctx context.Context, dsn string) (repo.UserRepo, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("pg connect: %w", err)
	}
	return repo.NewPGUserRepo(pool), pool.Close, nil
}

// NewHashPasswordCommand creates the hash-password command. Without an
// argument the password is read from the first line of stdin.
func NewHashPasswordCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "hash-password [password]",
		Short:         "Print the bcrypt hash of a password",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				sc := bufio.NewScanner(cmd.InOrStdin())
				if sc.Scan() {
					password = strings.TrimRight(sc.Text(), "\r")
				}
				if err := sc.Err(); err != nil {
					return fmt.Errorf("read password: %w", err)
				}
			}
			if password == "" {
				return errors.New("password cannot be empty")
			}
			h, err := bcrypt.GenerateFromPassword([]byte(password), rootOpts.BcryptCost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(h))
			return nil
		},
	}
}

// NewCreateUserCommand creates the create-user command.
func NewCreateUserCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "create-user <username> <password>",
		Short:         "Create an account",
		Long:          "Create an account with the same rules as the sign-up form.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateUser(cmd, rootOpts, args[0], args[1])
		},
	}
}

func runCreateUser(cmd *cobra.Command, opts *RootOptions, username, password string) error {
	req := dto.CreateAccountRequest{Username: username, Password: password}
	msgs, err := validate.Check(&req)
	if err != nil {
		return err
	}
	if len(msgs) > 0 {
		return errors.New(strings.Join(msgs, " "))
	}
	username = req.Username
	if err := opts.requireDSN(); err != nil {
		return err
	}

	ctx := cmd.Context()
	users, release, err := openUsers(ctx, opts.DSN)
	if err != nil {
		return err
	}
	defer release()

	g, err := service.NewGateways(service.Deps{Users: users, BcryptCost: opts.BcryptCost})
	if err != nil {
		return err
	}
	tr := g.For(nil)

	taken, err := tr.CheckIfUsernameExists(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("username %q is already taken", username)
	}
	created, err := tr.CreateAccount(ctx, username, password)
	if err != nil {
		if tr.IsUniqueConstraintViolation(err) {
			return fmt.Errorf("username %q is already taken", username)
		}
		return err
	}
	if !created {
		return errors.New("account was not created")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", username)
	return nil
}
