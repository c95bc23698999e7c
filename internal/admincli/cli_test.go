package admincli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/medrecords/internal/crypto"
	"github.com/iudanet/medrecords/internal/iocli"
	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/accounts"
	"github.com/iudanet/medrecords/internal/server/storage/sqlstore"
	"github.com/iudanet/medrecords/internal/server/token"
)

func newAccounts(t *testing.T) *accounts.Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlstore.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tokens, err := token.NewService(token.Config{Secret: []byte("admin-cli-test"), TTL: time.Minute}, logger)
	require.NoError(t, err)

	svc, err := accounts.NewService(store, crypto.NewPasswords(4), tokens, logger, nil)
	require.NoError(t, err)
	return svc
}

// newIO answers prompts from inputs and passwords in order and collects output.
func newIO(inputs, passwords []string, out *[]string) *iocli.IOMock {
	return &iocli.IOMock{
		ReadInputFunc: func(prompt string) (string, error) {
			if len(inputs) == 0 {
				return "", io.EOF
			}
			v := inputs[0]
			inputs = inputs[1:]
			return v, nil
		},
		ReadPasswordFunc: func(prompt string) (string, error) {
			if len(passwords) == 0 {
				return "", io.EOF
			}
			v := passwords[0]
			passwords = passwords[1:]
			return v, nil
		},
		PrintfFunc: func(format string, a ...any) {
			*out = append(*out, fmt.Sprintf(format, a...))
		},
		PrintlnFunc: func(a ...any) {
			*out = append(*out, fmt.Sprintln(a...))
		},
	}
}

func newCli(stdio iocli.IO, acc Accounts, env map[string]string) *Cli {
	c := New(stdio, acc)
	c.getenv = func(k string) string { return env[k] }
	return c
}

func TestRunCreateUser_Prompted(t *testing.T) {
	acc := newAccounts(t)
	var out []string
	mockIO := newIO([]string{"root@example.com", "Root Admin"}, []string{"password123", "password123"}, &out)

	err := newCli(mockIO, acc, nil).Run(context.Background(), []string{"create-user"})
	require.NoError(t, err)

	user, err := acc.GetUserByEmail(context.Background(), "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "Root Admin", user.FullName)
	assert.True(t, user.IsActive)

	assert.Len(t, mockIO.ReadPasswordCalls(), 2)
	require.Len(t, out, 1)
	assert.Contains(t, out[0], "Created ADMIN root@example.com")

	_, _, err = acc.Login(context.Background(), "root@example.com", "password123")
	assert.NoError(t, err)
}

func TestRunCreateUser_PasswordSources(t *testing.T) {
	file := filepath.Join(t.TempDir(), "pw.txt")
	require.NoError(t, os.WriteFile(file, []byte("from-file-123\n"), 0o600))

	tests := []struct {
		name     string
		env      map[string]string
		args     []string
		wantPass string
	}{
		{
			name:     "env wins over file",
			env:      map[string]string{PasswordEnv: "from-env-123"},
			args:     []string{"-password-file", file},
			wantPass: "from-env-123",
		},
		{
			name:     "file",
			args:     []string{"-password-file", file},
			wantPass: "from-file-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newAccounts(t)
			var out []string
			mockIO := newIO(nil, nil, &out)

			args := append([]string{"create-user", "-email", "doc@example.com", "-name", "Doc", "-role", "doctor"}, tt.args...)
			require.NoError(t, newCli(mockIO, acc, tt.env).Run(context.Background(), args))

			assert.Empty(t, mockIO.ReadPasswordCalls())
			_, user, err := acc.Login(context.Background(), "doc@example.com", tt.wantPass)
			require.NoError(t, err)
			assert.Equal(t, models.RoleDoctor, user.Role)
		})
	}
}

func TestRunCreateUser_Errors(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		passwords []string
		wantErr   string
	}{
		{
			name:      "mismatched confirmation",
			args:      []string{"-email", "a@example.com", "-name", "A"},
			passwords: []string{"password123", "password124"},
			wantErr:   "passwords do not match",
		},
		{
			name:    "bad role",
			args:    []string{"-email", "a@example.com", "-name", "A", "-role", "nurse"},
			wantErr: `invalid role "nurse"`,
		},
		{
			name:      "weak password",
			args:      []string{"-email", "a@example.com", "-name", "A"},
			passwords: []string{"short", "short"},
			wantErr:   "failed to create user",
		},
		{
			name:    "unknown flag",
			args:    []string{"-colour", "red"},
			wantErr: "flag provided but not defined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out []string
			err := newCli(newIO(nil, tt.passwords, &out), newAccounts(t), nil).
				Run(context.Background(), append([]string{"create-user"}, tt.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunSetRoleAndActive(t *testing.T) {
	ctx := context.Background()
	acc := newAccounts(t)
	_, err := acc.CreateUser(ctx, accounts.NewUser{
		Email: "pat@example.com", Password: "password123", FullName: "Pat", Role: models.RolePatient,
	})
	require.NoError(t, err)

	var out []string
	c := newCli(newIO(nil, nil, &out), acc, nil)

	require.NoError(t, c.Run(ctx, []string{"set-role", "-email", "pat@example.com", "-role", "DOCTOR"}))
	require.NoError(t, c.Run(ctx, []string{"set-active", "-email", "pat@example.com", "-active=false"}))

	user, err := acc.GetUserByEmail(ctx, "pat@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, user.Role)
	assert.False(t, user.IsActive)
	assert.Equal(t, []string{"pat@example.com is now DOCTOR\n", "pat@example.com is now inactive\n"}, out)

	err = c.Run(ctx, []string{"set-role", "-email", "ghost@example.com", "-role", "ADMIN"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")

	err = c.Run(ctx, []string{"set-active"})
	assert.EqualError(t, err, "-email is required")
}

func TestRun_UnknownCommand(t *testing.T) {
	c := newCli(newIO(nil, nil, new([]string)), nil, nil)

	assert.ErrorIs(t, c.Run(context.Background(), nil), ErrUnknownCommand)
	assert.ErrorIs(t, c.Run(context.Background(), []string{"drop-db"}), ErrUnknownCommand)
}
