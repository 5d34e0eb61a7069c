package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/studyhive/studyhive/internal/database"
)

const minPasswordLength = 8

// mockable
var (
	readPasswordFunc     = term.ReadPassword
	migrateUpFunc        = database.MigrateUp
	migrateDownFunc      = database.MigrateDown
	migrationVersionFunc = database.MigrationVersion
)

var (
	errHelp          = errors.New("help provided")
	errShortPassword = fmt.Errorf("password must be at least %d characters", minPasswordLength)
)

type passwordResetter interface {
	ResetPassword(ctx context.Context, email, password string) error
}

type commandLine struct {
	db    *sql.DB
	users passwordResetter
	out   io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate up                    - apply pending migrations")
	fmt.Fprintln(cli.out, "  migrate down [-steps N]       - roll back N migrations (default 1)")
	fmt.Fprintln(cli.out, "  migrate version               - print the schema version")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL    - reset a user's password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		return cli.migrate(args[2:])
	case "resetpassword":
		return cli.resetPassword(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) migrate(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}

	switch args[0] {
	case "up":
		if err := migrateUpFunc(cli.db); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "migrations applied")
		return nil
	case "down":
		downCmd := flag.NewFlagSet("down", flag.ExitOnError)
		steps := downCmd.Int("steps", 1, "Number of migrations to roll back.")
		if err := downCmd.Parse(args[1:]); err != nil {
			return err
		}
		if err := migrateDownFunc(cli.db, *steps); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "rolled back %d migration(s)\n", *steps)
		return nil
	case "version":
		version, dirty, err := migrationVersionFunc(cli.db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "version %d (dirty: %t)\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("%q: no such migrate command", args[0])
	}
}

func (cli *commandLine) resetPassword(args []string) error {
	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	email := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")
	if err := resetPasswordCmd.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		resetPasswordCmd.Usage()
		return errHelp
	}

	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		resetPasswordCmd.Usage()
		return errHelp
	}
	if len(pwd) < minPasswordLength {
		return errShortPassword
	}

	if err := cli.users.ResetPassword(context.Background(), *email, string(pwd)); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "password updated")
	return nil
}
