/**
 * @description
 * This is the main entry point for the sandbox banking backend. It loads configuration,
 * seeds the in-memory store with demo users, prints a development token for each of
 * them and serves the banking API until it receives SIGINT or SIGTERM.
 *
 * @dependencies
 * - github.com/joho/godotenv: loads a local .env file.
 * - internal/config, internal/sandbox: configuration and the backend itself.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brankadelic/Banka-1-Mobile/internal/config"
	"github.com/brankadelic/Banka-1-Mobile/internal/sandbox"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("level=info component=bootstrap msg=\"no .env file found, using environment variables\"")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}

	srv, err := sandbox.New(sandbox.Options{
		JWTSecret: cfg.SandboxJWTSecret,
		FixedOTP:  cfg.SandboxFixedOTP,
		OTPTTL:    cfg.OTPTTL(),
		AccessLog: true,
	}, true)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"sandbox init failed\" err=%v", err)
	}

	for _, user := range sandbox.DemoUsers {
		token, err := srv.Token(user.ID, user.Email, 24*time.Hour)
		if err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"token issue failed\" user_id=%d err=%v", user.ID, err)
		}
		log.Printf("level=info component=bootstrap msg=\"dev token\" user_id=%d email=%s token=%s", user.ID, user.Email, token)
	}
	if cfg.SandboxFixedOTP == "" {
		log.Println("level=info component=bootstrap msg=\"random OTP codes are logged when transfers are created\"")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.SandboxPort),
		Handler:           srv.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("level=info component=bootstrap msg=\"starting sandbox backend\" port=%s", cfg.SandboxPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=bootstrap msg=\"server failed\" err=%v", err)
		}
	}()

	<-sigCh
	log.Println("level=info component=bootstrap msg=\"shutdown signal received\"")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("level=error component=bootstrap msg=\"server shutdown failed\" err=%v", err)
	}
	log.Println("level=info component=bootstrap msg=\"server stopped\"")
}
