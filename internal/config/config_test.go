package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	for _, key := range []string{"BANKING_BASE_URL", "BANKING_API_BASE_URL", "BANKING_TIMEOUT_SECONDS", "BANKING_TOKEN_SOURCE", "SANDBOX_PORT", "PORT", "SANDBOX_OTP_TTL_SECONDS"} {
		unsetEnvWithCleanup(t, key)
	}

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8082" {
		t.Fatalf("expected default base url, got %q", cfg.BaseURL)
	}
	if cfg.Timeout() != 20*time.Second {
		t.Fatalf("expected 20s timeout, got %s", cfg.Timeout())
	}
	if cfg.TokenSource != TokenSourceFile {
		t.Fatalf("expected file token source, got %q", cfg.TokenSource)
	}
	if cfg.SandboxPort != "8082" || cfg.OTPTTL() != 5*time.Minute {
		t.Fatalf("unexpected sandbox defaults: port=%q ttl=%s", cfg.SandboxPort, cfg.OTPTTL())
	}
}

func TestLoadConfig_BaseURLAliasAndTrailingSlash(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "BANKING_BASE_URL")
	setEnvWithCleanup(t, "BANKING_API_BASE_URL", "http://192.168.88.44:8082/")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.BaseURL != "http://192.168.88.44:8082" {
		t.Fatalf("expected base url from alias without trailing slash, got %q", cfg.BaseURL)
	}
}

func TestLoadConfig_CoercesInvalidValues(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "BANKING_TIMEOUT_SECONDS", "-3")
	setEnvWithCleanup(t, "BANKING_TOKEN_SOURCE", "keychain")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.TimeoutSeconds != 20 {
		t.Fatalf("expected timeout coerced to 20, got %d", cfg.TimeoutSeconds)
	}
	if cfg.TokenSource != TokenSourceFile {
		t.Fatalf("expected unknown token source to fall back to file, got %q", cfg.TokenSource)
	}
}

func TestLoadConfig_RedisSourceNeedsURL(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "BANKING_TOKEN_SOURCE", "redis")
	unsetEnvWithCleanup(t, "REDIS_URL")
	unsetEnvWithCleanup(t, "BANKING_REDIS_URL")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.TokenSource != TokenSourceFile {
		t.Fatalf("expected fallback to file without REDIS_URL, got %q", cfg.TokenSource)
	}
}

func TestLoadConfig_ReadsDotEnvFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "BANKING_BASE_URL")
	unsetEnvWithCleanup(t, "BANKING_API_BASE_URL")
	unsetEnvWithCleanup(t, "SANDBOX_FIXED_OTP")

	dir := t.TempDir()
	content := "BANKING_BASE_URL=http://bank.test\nSANDBOX_FIXED_OTP=1234\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.BaseURL != "http://bank.test" || cfg.SandboxFixedOTP != "1234" {
		t.Fatalf("expected values from .env, got base=%q otp=%q", cfg.BaseURL, cfg.SandboxFixedOTP)
	}
}

func TestLoadConfig_PortOverridesSandboxPort(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "SANDBOX_PORT", "9000")
	setEnvWithCleanup(t, "PORT", "9100")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.SandboxPort != "9100" {
		t.Fatalf("expected PORT to win, got %q", cfg.SandboxPort)
	}
}

func setEnvWithCleanup(t *testing.T, key string, value string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}

func unsetEnvWithCleanup(t *testing.T, key string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}
