package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/medrecords/internal/server/upload"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, envFrom(map[string]string{"SECRET_KEY": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.ServerAddr)
	assert.Equal(t, "medrecords.db", cfg.DatabaseURL)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, upload.DefaultMaxSize, cfg.MaxUploadSize)
	assert.Equal(t, upload.DefaultExtensions(), cfg.AllowedExtensions)
	assert.Equal(t, upload.DefaultMIMETypes(), cfg.AllowedMIMETypes)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Precedence(t *testing.T) {
	env := map[string]string{
		"SERVER_ADDR":                 ":9000",
		"DATABASE_URL":                "postgres://db/medrecords",
		"SECRET_KEY":                  "from-env",
		"ACCESS_TOKEN_EXPIRE_MINUTES": "60",
		"UPLOAD_DIR":                  "/var/lib/medrecords",
		"MAX_UPLOAD_SIZE":             "2048",
		"ALLOWED_EXTENSIONS":          ".png, .jpg ,",
		"ALLOWED_MIME_TYPES":          "image/png,image/jpeg",
		"BCRYPT_COST":                 "4",
		"LOG_LEVEL":                   "debug",
		"SHUTDOWN_TIMEOUT":            "3s",
	}

	cfg, err := Load([]string{"-a", "127.0.0.1:8080", "-s", "from-flag", "-t", "5"}, envFrom(env))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.ServerAddr, "flag wins over env")
	assert.Equal(t, "from-flag", cfg.SecretKey)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "postgres://db/medrecords", cfg.DatabaseURL, "env wins over default")
	assert.Equal(t, "/var/lib/medrecords", cfg.UploadDir)
	assert.Equal(t, int64(2048), cfg.MaxUploadSize)
	assert.Equal(t, []string{".png", ".jpg"}, cfg.AllowedExtensions)
	assert.Equal(t, []string{"image/png", "image/jpeg"}, cfg.AllowedMIMETypes)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)

	p := cfg.UploadPolicy()
	assert.Equal(t, int64(2048), p.MaxSize)
	assert.Equal(t, upload.DefaultSniffLen, p.SniffLen)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		env     map[string]string
		name    string
		errMsg  string
		args    []string
		wantErr bool
	}{
		{
			name:    "missing secret",
			env:     map[string]string{},
			wantErr: true,
			errMsg:  "SECRET_KEY is required",
		},
		{
			name:    "malformed integer",
			env:     map[string]string{"SECRET_KEY": "x", "MAX_UPLOAD_SIZE": "10MB"},
			wantErr: true,
			errMsg:  `MAX_UPLOAD_SIZE must be an integer, got "10MB"`,
		},
		{
			name:    "unknown flag",
			env:     map[string]string{"SECRET_KEY": "x"},
			args:    []string{"-z"},
			wantErr: true,
			errMsg:  "flag provided but not defined: -z",
		},
		{
			name:    "version skips validation",
			env:     map[string]string{},
			args:    []string{"-version"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args, envFrom(tt.env))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidate_ReportsEverything(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = ""
	cfg.AccessTokenTTL = 0
	cfg.MaxUploadSize = -1
	cfg.BcryptCost = 99
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, msg := range []string{
		"SECRET_KEY is required",
		"access token lifetime must be positive",
		"max upload size must be positive",
		"bcrypt cost must be between",
		`unknown log level "loud"`,
	} {
		assert.Contains(t, err.Error(), msg)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			assert.NoError(t, err, tt.in)
		}
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MEDRECORDS_TEST_DOTENV=from-file\n"), 0o600))

	t.Setenv("MEDRECORDS_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("MEDRECORDS_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("MEDRECORDS_TEST_DOTENV"))
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MEDRECORDS_TEST_KEEP=from-file\n"), 0o600))

	t.Setenv("MEDRECORDS_TEST_KEEP", "from-process")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-process", os.Getenv("MEDRECORDS_TEST_KEEP"))
}
