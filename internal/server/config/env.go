package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv exports variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// parseEnv overlays cfg with the environment. Malformed values are
// collected and reported together.
func parseEnv(cfg *Config, getenv func(string) string) error {
	var errs []error

	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setList := func(key string, dst *[]string) {
		if v := getenv(key); v != "" {
			*dst = splitList(v)
		}
	}
	setInt := func(key string, apply func(int64)) {
		v := getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be an integer, got %q", key, v))
			return
		}
		apply(n)
	}

	setString("SERVER_ADDR", &cfg.ServerAddr)
	setString("DATABASE_URL", &cfg.DatabaseURL)
	setString("SECRET_KEY", &cfg.SecretKey)
	setString("UPLOAD_DIR", &cfg.UploadDir)
	setString("LOG_LEVEL", &cfg.LogLevel)
	setList("ALLOWED_EXTENSIONS", &cfg.AllowedExtensions)
	setList("ALLOWED_MIME_TYPES", &cfg.AllowedMIMETypes)
	setInt("ACCESS_TOKEN_EXPIRE_MINUTES", func(n int64) { cfg.AccessTokenTTL = time.Duration(n) * time.Minute })
	setInt("MAX_UPLOAD_SIZE", func(n int64) { cfg.MaxUploadSize = n })
	setInt("BCRYPT_COST", func(n int64) { cfg.BcryptCost = int(n) })

	if v := getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be a duration, got %q", v))
		} else {
			cfg.ShutdownTimeout = d
		}
	}

	return errors.Join(errs...)
}

// splitList splits a comma separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
