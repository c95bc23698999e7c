package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswords_Hash(t *testing.T) {
	p := NewPasswords(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
		errMsg   string
		wantErr  bool
	}{
		{
			name:     "successful hash",
			password: "secret123",
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
			errMsg:   "password cannot be empty",
		},
		{
			name:     "exactly 72 bytes",
			password: strings.Repeat("a", 71) + "1",
		},
		{
			name:     "too long",
			password: strings.Repeat("a", 73),
			wantErr:  true,
			errMsg:   "exceeds 72 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := p.Hash(tt.password)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Empty(t, hash)
			} else {
				require.NoError(t, err)
				assert.NotEqual(t, tt.password, hash)
				assert.True(t, strings.HasPrefix(hash, "$2"), "bcrypt hash expected")
			}
		})
	}
}

func TestPasswords_HashIsSalted(t *testing.T) {
	p := NewPasswords(bcrypt.MinCost)

	h1, err := p.Hash("secret123")
	require.NoError(t, err)
	h2, err := p.Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, p.Verify("secret123", h1))
	assert.True(t, p.Verify("secret123", h2))
}

func TestPasswords_Verify(t *testing.T) {
	p := NewPasswords(bcrypt.MinCost)
	hash, err := p.Hash("secret123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{name: "match", password: "secret123", hash: hash, want: true},
		{name: "wrong password", password: "secret124", hash: hash, want: false},
		{name: "empty password", password: "", hash: hash, want: false},
		{name: "empty hash", password: "secret123", hash: "", want: false},
		{name: "malformed hash", password: "secret123", hash: "not-a-bcrypt-hash", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Verify(tt.password, tt.hash))
		})
	}
}

func TestNewPasswords_CostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswords(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswords(bcrypt.MaxCost+1).cost)
	assert.Equal(t, bcrypt.MinCost, NewPasswords(bcrypt.MinCost).cost)
}

func TestPasswords_ZeroValue(t *testing.T) {
	var p Passwords
	hash, err := p.Hash("x1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
