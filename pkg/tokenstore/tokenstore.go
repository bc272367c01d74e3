/**
 * @description
 * This package provides the token sources the banking client reads its bearer token
 * from. Every source is read again on each call so a token refreshed by another
 * process is picked up by the next request.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9: shared session store for server-side callers.
 * - github.com/golang-jwt/jwt/v5: reads session claims out of the stored token.
 */
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Static always returns the same token.
type Static string

func (s Static) Token(ctx context.Context) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// Env reads the token from an environment variable.
type Env string

func (e Env) Token(ctx context.Context) (string, error) {
	return strings.TrimSpace(os.Getenv(string(e))), nil
}

// File reads the token from a file on disk. A missing file means no token.
type File struct {
	Path string
}

// NewFile creates a file token source.
func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) Token(ctx context.Context) (string, error) {
	if strings.TrimSpace(f.Path) == "" {
		return "", nil
	}

	info, err := os.Stat(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat token file: %w", err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		log.Printf("level=warn component=tokenstore path=%s mode=%o msg=\"token file is readable by other users\"", f.Path, info.Mode().Perm())
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token with owner-only permissions.
func (f *File) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(f.Path, []byte(strings.TrimSpace(token)+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Clear removes the stored token.
func (f *File) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
