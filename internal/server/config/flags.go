package config

import (
	"flag"
	"io"
	"time"
)

// parseFlags overlays cfg with command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":8000")
//	-d string   database path or postgres:// DSN
//	-s string   token signing secret
//	-t int      access token validity, minutes
//	-u string   upload directory
//	-m int      max upload size, bytes
//	-l string   log level
//	-version    print build information and exit
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("medrecords-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerAddr, "a", cfg.ServerAddr, "address and port to run server")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "database path or DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "token signing secret")
	ttl := fs.Int("t", int(cfg.AccessTokenTTL.Minutes()), "access token validity (in minutes)")
	fs.StringVar(&cfg.UploadDir, "u", cfg.UploadDir, "upload directory")
	fs.Int64Var(&cfg.MaxUploadSize, "m", cfg.MaxUploadSize, "max upload size (in bytes)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "show version information")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.AccessTokenTTL = time.Duration(*ttl) * time.Minute
	return nil
}
