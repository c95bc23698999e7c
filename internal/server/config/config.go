// Package config handles configuration for the server component,
// including defaults, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/medrecords/internal/server/upload"
)

// Config holds runtime settings for the medrecords server.
//
// Fields:
//   - ServerAddr: HTTP bind address.
//   - DatabaseURL: SQLite file path, ":memory:", or a postgres:// DSN.
//   - SecretKey: HMAC secret for signing access tokens (HS256). Required.
//   - AccessTokenTTL: lifetime of issued tokens.
//   - UploadDir: root directory for stored image files.
//   - MaxUploadSize, AllowedExtensions, AllowedMIMETypes: upload policy.
type Config struct {
	ServerAddr        string
	DatabaseURL       string
	SecretKey         string
	UploadDir         string
	LogLevel          string
	AllowedExtensions []string
	AllowedMIMETypes  []string
	AccessTokenTTL    time.Duration
	ShutdownTimeout   time.Duration
	MaxUploadSize     int64
	BcryptCost        int
	ShowVersion       bool
}

// LoadDefaults populates Config with development defaults. SecretKey has
// no default and must be supplied.
func (c *Config) LoadDefaults() {
	c.ServerAddr = ":8000"
	c.DatabaseURL = "medrecords.db"
	c.SecretKey = ""
	c.UploadDir = "uploads"
	c.LogLevel = "info"
	c.AllowedExtensions = upload.DefaultExtensions()
	c.AllowedMIMETypes = upload.DefaultMIMETypes()
	c.AccessTokenTTL = 30 * time.Minute
	c.ShutdownTimeout = 10 * time.Second
	c.MaxUploadSize = upload.DefaultMaxSize
	c.BcryptCost = 12
}

// Load builds a Config by applying defaults, then values from getenv, then
// command-line args, and validates the result.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, getenv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if cfg.ShowVersion {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.ServerAddr) == "" {
		errs = append(errs, errors.New("server address cannot be empty"))
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("database url cannot be empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if strings.TrimSpace(c.UploadDir) == "" {
		errs = append(errs, errors.New("upload dir cannot be empty"))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("access token lifetime must be positive"))
	}
	if c.MaxUploadSize <= 0 {
		errs = append(errs, errors.New("max upload size must be positive"))
	}
	if len(c.AllowedExtensions) == 0 {
		errs = append(errs, errors.New("allowed extensions cannot be empty"))
	}
	if len(c.AllowedMIMETypes) == 0 {
		errs = append(errs, errors.New("allowed mime types cannot be empty"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// UploadPolicy returns the upload limits this configuration describes.
func (c *Config) UploadPolicy() upload.Policy {
	return upload.Policy{
		AllowedExtensions: c.AllowedExtensions,
		AllowedMIMETypes:  c.AllowedMIMETypes,
		MaxSize:           c.MaxUploadSize,
		SniffLen:          upload.DefaultSniffLen,
	}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
