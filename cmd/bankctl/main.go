/**
 * @description
 * bankctl is a command-line front end for the mobile banking client. It reads the
 * bearer token from the configured token source, calls the banking backend and prints
 * results as JSON. It is mostly used against the sandbox backend during development.
 *
 * @dependencies
 * - github.com/joho/godotenv: loads a local .env file.
 * - github.com/spf13/pflag: per-command flags.
 * - internal/config, pkg/bankingclient, pkg/tokenstore.
 */

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/brankadelic/Banka-1-Mobile/internal/config"
	"github.com/brankadelic/Banka-1-Mobile/pkg/bankingclient"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}

	tokens, sink, closeTokens, err := newTokenSource(cfg)
	if err != nil {
		logger.Fatalf("level=fatal component=bootstrap msg=\"token source init failed\" source=%s err=%v", cfg.TokenSource, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	client := bankingclient.NewClient(cfg.BaseURL, tokens,
		bankingclient.WithTimeout(cfg.Timeout()),
		bankingclient.WithLogger(logger),
	)
	code := run(ctx, &app{
		client: client,
		tokens: tokens,
		sink:   sink,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}, os.Args[1:])

	stop()
	if err := closeTokens(); err != nil {
		logger.Printf("level=warn component=bootstrap msg=\"failed to close token source\" err=%v", err)
	}
	os.Exit(code)
}
