package admincli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/accounts"
)

func (c *Cli) RunCreateUser(ctx context.Context, args []string) error {
	fs := newFlagSet("create-user")
	email := fs.String("email", "", "email address")
	name := fs.String("name", "", "full name")
	roleFlag := fs.String("role", string(models.RoleAdmin), "role")
	passwordFile := fs.String("password-file", "", "file containing the password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	role, err := parseRole(*roleFlag)
	if err != nil {
		return err
	}

	if *email == "" {
		if *email, err = c.io.ReadInput("Email: "); err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}
	if *name == "" {
		if *name, err = c.io.ReadInput("Full name: "); err != nil {
			return fmt.Errorf("failed to read name: %w", err)
		}
	}

	password, err := c.password(*passwordFile)
	if err != nil {
		return err
	}

	user, err := c.accounts.CreateUser(ctx, accounts.NewUser{
		Email:    *email,
		Password: password,
		FullName: *name,
		Role:     role,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	c.io.Printf("Created %s %s (id %s)\n", user.Role, user.Email, user.ID)
	return nil
}

// password follows the priority env, file, prompt. A prompted password is
// asked twice.
func (c *Cli) password(file string) (string, error) {
	if pw := c.getenv(PasswordEnv); pw != "" {
		return pw, nil
	}

	if file != "" {
		content, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		pw := strings.TrimRight(string(content), "\r\n")
		if pw == "" {
			return "", errors.New("password file is empty")
		}
		return pw, nil
	}

	pw, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	confirm, err := c.io.ReadPassword("Repeat password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if pw != confirm {
		return "", errors.New("passwords do not match")
	}
	return pw, nil
}

func (c *Cli) RunSetRole(ctx context.Context, args []string) error {
	fs := newFlagSet("set-role")
	email := fs.String("email", "", "email address")
	roleFlag := fs.String("role", "", "new role")
	if err := fs.Parse(args); err != nil {
		return err
	}

	role, err := parseRole(*roleFlag)
	if err != nil {
		return err
	}

	user, err := c.lookup(ctx, *email)
	if err != nil {
		return err
	}

	user, err = c.accounts.UpdateUser(ctx, nil, user.ID, accounts.UserUpdate{Role: &role})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	c.io.Printf("%s is now %s\n", user.Email, user.Role)
	return nil
}

func (c *Cli) RunSetActive(ctx context.Context, args []string) error {
	fs := newFlagSet("set-active")
	email := fs.String("email", "", "email address")
	active := fs.Bool("active", true, "whether the user may log in")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := c.lookup(ctx, *email)
	if err != nil {
		return err
	}

	user, err = c.accounts.UpdateUser(ctx, nil, user.ID, accounts.UserUpdate{IsActive: active})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	state := "active"
	if !user.IsActive {
		state = "inactive"
	}
	c.io.Printf("%s is now %s\n", user.Email, state)
	return nil
}
