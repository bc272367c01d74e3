/**
 * @description
 * This package handles configuration for the banking client binaries. It uses Viper to
 * read an optional .env file and environment variables into one Config struct.
 *
 * @dependencies
 * - github.com/spf13/viper: configuration loading and environment binding.
 */

package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Token sources understood by the CLI.
const (
	TokenSourceFile   = "file"
	TokenSourceEnv    = "env"
	TokenSourceRedis  = "redis"
	TokenSourceStatic = "static"
)

// Config holds the settings for bankctl and the sandbox backend.
type Config struct {
	BaseURL        string `mapstructure:"BANKING_BASE_URL"`
	TimeoutSeconds int    `mapstructure:"BANKING_TIMEOUT_SECONDS"`
	TokenSource    string `mapstructure:"BANKING_TOKEN_SOURCE"`
	TokenFile      string `mapstructure:"BANKING_TOKEN_FILE"`
	Token          string `mapstructure:"BANKING_TOKEN"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	TokenRedisKey  string `mapstructure:"BANKING_TOKEN_REDIS_KEY"`

	SandboxPort          string `mapstructure:"SANDBOX_PORT"`
	SandboxJWTSecret     string `mapstructure:"SANDBOX_JWT_SECRET"`
	SandboxFixedOTP      string `mapstructure:"SANDBOX_FIXED_OTP"`
	SandboxOTPTTLSeconds int    `mapstructure:"SANDBOX_OTP_TTL_SECONDS"`
}

// Timeout is the per-request timeout for the banking client.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// OTPTTL is how long a sandbox OTP stays valid.
func (c Config) OTPTTL() time.Duration {
	return time.Duration(c.SandboxOTPTTLSeconds) * time.Second
}

// LoadConfig reads configuration from the environment and an optional .env file in path.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("BANKING_BASE_URL", "http://localhost:8082")
	viper.SetDefault("BANKING_TIMEOUT_SECONDS", 20)
	viper.SetDefault("BANKING_TOKEN_SOURCE", TokenSourceFile)
	viper.SetDefault("BANKING_TOKEN_FILE", defaultTokenFile())
	viper.SetDefault("BANKING_TOKEN_REDIS_KEY", "banking:token")
	viper.SetDefault("SANDBOX_PORT", "8082")
	viper.SetDefault("SANDBOX_JWT_SECRET", "sandbox-secret")
	viper.SetDefault("SANDBOX_OTP_TTL_SECONDS", 300)

	_ = viper.BindEnv("BANKING_BASE_URL", "BANKING_BASE_URL", "BANKING_API_BASE_URL")
	_ = viper.BindEnv("BANKING_TIMEOUT_SECONDS")
	_ = viper.BindEnv("BANKING_TOKEN_SOURCE")
	_ = viper.BindEnv("BANKING_TOKEN_FILE")
	_ = viper.BindEnv("BANKING_TOKEN")
	_ = viper.BindEnv("REDIS_URL", "REDIS_URL", "BANKING_REDIS_URL")
	_ = viper.BindEnv("BANKING_TOKEN_REDIS_KEY")
	_ = viper.BindEnv("SANDBOX_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("SANDBOX_JWT_SECRET")
	_ = viper.BindEnv("SANDBOX_FIXED_OTP")
	_ = viper.BindEnv("SANDBOX_OTP_TTL_SECONDS")

	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.SandboxPort = port
	}

	config.BaseURL = strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	config.Token = strings.TrimSpace(config.Token)
	config.RedisURL = strings.TrimSpace(config.RedisURL)

	if config.TimeoutSeconds <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive timeout configured; using default\" timeout_seconds=%d", config.TimeoutSeconds)
		config.TimeoutSeconds = 20
	}
	if config.SandboxOTPTTLSeconds <= 0 {
		config.SandboxOTPTTLSeconds = 300
	}

	config.TokenSource = strings.ToLower(strings.TrimSpace(config.TokenSource))
	switch config.TokenSource {
	case TokenSourceFile, TokenSourceEnv, TokenSourceRedis, TokenSourceStatic:
	default:
		log.Printf("level=warn component=config msg=\"unknown token source; using file\" value=%q", config.TokenSource)
		config.TokenSource = TokenSourceFile
	}
	if config.TokenSource == TokenSourceRedis && config.RedisURL == "" {
		log.Println("level=warn component=config msg=\"redis token source without REDIS_URL; using file\"")
		config.TokenSource = TokenSourceFile
	}

	return
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".banking-token"
	}
	return filepath.Join(home, ".banking", "token")
}
