// Package admincli implements the operator commands for managing identities
// directly against the database.
package admincli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iudanet/medrecords/internal/iocli"
	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/accounts"
)

// PasswordEnv lets scripts supply the new user's password.
const PasswordEnv = "MEDRECORDS_ADMIN_PASSWORD"

// ErrUnknownCommand is returned for anything Run does not dispatch.
var ErrUnknownCommand = errors.New("unknown command")

// Accounts is the subset of the identity service the commands use.
type Accounts interface {
	CreateUser(ctx context.Context, in accounts.NewUser) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, actor *models.User, id string, upd accounts.UserUpdate) (*models.User, error)
}

type Cli struct {
	io       iocli.IO
	accounts Accounts
	getenv   func(string) string
}

func New(stdio iocli.IO, acc Accounts) *Cli {
	return &Cli{io: stdio, accounts: acc, getenv: os.Getenv}
}

// Run dispatches args[0] to a command.
func (c *Cli) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: none given", ErrUnknownCommand)
	}

	switch args[0] {
	case "create-user":
		return c.RunCreateUser(ctx, args[1:])
	case "set-role":
		return c.RunSetRole(ctx, args[1:])
	case "set-active":
		return c.RunSetActive(ctx, args[1:])
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
}

func PrintUsage(w io.Writer) {
	_, _ = fmt.Fprint(w, `Medical Records Admin

Usage:
  medrecords-admin [--version] COMMAND [OPTIONS]

Commands:
  create-user  -email EMAIL -name NAME [-role ADMIN|DOCTOR|PATIENT] [-password-file PATH]
  set-role     -email EMAIL -role ADMIN|DOCTOR|PATIENT
  set-active   -email EMAIL -active=true|false

The database is taken from DATABASE_URL (or .env).

Password priority for create-user (highest to lowest):
  1. MEDRECORDS_ADMIN_PASSWORD environment variable
  2. -password-file (file path)
  3. Interactive prompt
`)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseRole(s string) (models.Role, error) {
	role := models.Role(strings.ToUpper(strings.TrimSpace(s)))
	if !role.Valid() {
		return "", fmt.Errorf("invalid role %q: use ADMIN, DOCTOR or PATIENT", s)
	}
	return role, nil
}

func (c *Cli) lookup(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, errors.New("-email is required")
	}
	user, err := c.accounts.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", email, err)
	}
	return user, nil
}
