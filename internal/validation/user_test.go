package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		errMsg  string
		wantErr bool
	}{
		{name: "valid", email: "doctor@hospital.org"},
		{name: "valid with plus", email: "a.b+tag@example.co.uk"},
		{name: "empty", email: "", wantErr: true, errMsg: "email cannot be empty"},
		{name: "no at", email: "doctor.hospital.org", wantErr: true, errMsg: "not a valid address"},
		{name: "display name", email: "Doc <doctor@hospital.org>", wantErr: true, errMsg: "not a valid address"},
		{name: "no tld", email: "doctor@localhost", wantErr: true, errMsg: "not a valid address"},
		{name: "spaces", email: " doctor@hospital.org", wantErr: true, errMsg: "not a valid address"},
		{name: "too long", email: strings.Repeat("a", 250) + "@x.org", wantErr: true, errMsg: "must not exceed 255"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		errMsg   string
		wantErr  bool
	}{
		{name: "valid", password: "secret123"},
		{name: "valid min length", password: "abcdefg1"},
		{name: "valid max length", password: strings.Repeat("a", 71) + "1"},
		{name: "empty", password: "", wantErr: true, errMsg: "password cannot be empty"},
		{name: "too short", password: "abc1", wantErr: true, errMsg: "at least 8 characters"},
		{name: "too long", password: strings.Repeat("a", 72) + "1", wantErr: true, errMsg: "must not exceed 72 bytes"},
		{name: "no digit", password: "abcdefghij", wantErr: true, errMsg: "at least one digit"},
		{name: "no letter", password: "1234567890", wantErr: true, errMsg: "at least one letter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateFullName(t *testing.T) {
	require.NoError(t, ValidateFullName("Dr. Gregory House"))
	require.NoError(t, ValidateFullName(strings.Repeat("я", 255)))

	err := ValidateFullName("   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full name cannot be empty")

	err = ValidateFullName(strings.Repeat("a", 256))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not exceed 255")
}
