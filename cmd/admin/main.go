package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/iudanet/medrecords/internal/admincli"
	"github.com/iudanet/medrecords/internal/crypto"
	"github.com/iudanet/medrecords/internal/iocli"
	"github.com/iudanet/medrecords/internal/server/accounts"
	"github.com/iudanet/medrecords/internal/server/config"
	"github.com/iudanet/medrecords/internal/server/storage/sqlstore"
	"github.com/iudanet/medrecords/internal/server/token"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = func() { admincli.PrintUsage(os.Stderr) }
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		admincli.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, admincli.ErrUnknownCommand) {
			admincli.PrintUsage(os.Stderr)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(nil, os.Getenv)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Command output is the report; service logs are not.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlstore.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close database: %v\n", err)
		}
	}()

	tokens, err := token.NewService(token.Config{Secret: []byte(cfg.SecretKey), TTL: cfg.AccessTokenTTL}, logger)
	if err != nil {
		return err
	}
	acc, err := accounts.NewService(store, crypto.NewPasswords(cfg.BcryptCost), tokens, logger, nil)
	if err != nil {
		return err
	}

	return admincli.New(iocli.NewStdio(), acc).Run(ctx, args)
}

func printVersion() {
	fmt.Printf("Medical Records Admin\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
