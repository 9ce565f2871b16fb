package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DBPath   string `envconfig:"RAINMAKER_DB_PATH" default:"./data/rainmaker.sqlite"`
	Port     int    `envconfig:"RAINMAKER_PORT" default:"8080"`
	LogLevel string `envconfig:"RAINMAKER_LOG_LEVEL" default:"info"`
	LogDir   string `envconfig:"RAINMAKER_LOG_DIR" default:"./logs"`

	// RPCURL is the JSON-RPC endpoint of the node the session adapter talks to.
	// The chain id reported by this node decides which distribution contract
	// the dispatcher targets.
	RPCURL string `envconfig:"RAINMAKER_RPC_URL" default:"http://127.0.0.1:8545"`

	// KeyFile points to a file containing the hex-encoded signing key for the
	// operator account. When unset the server starts without a session account
	// and every submission fails at the signature step.
	KeyFile string `envconfig:"RAINMAKER_KEY_FILE"`

	RPCRateLimit int `envconfig:"RAINMAKER_RPC_RATE_LIMIT" default:"10"`
}

// Load reads configuration from .env file (if present) then from environment variables.
// Environment variables override .env values.
func Load() (*Config, error) {
	// godotenv does NOT override already-set env vars, so real environment
	// variables take precedence over .env values.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			slog.Warn("failed to load .env file", "error", err)
		} else {
			slog.Info("loaded .env file")
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be 1-65535, got %d", ErrInvalidConfig, c.Port)
	}
	if c.RPCURL == "" {
		return fmt.Errorf("%w: RPC URL must not be empty", ErrInvalidConfig)
	}
	if c.RPCRateLimit < 1 {
		return fmt.Errorf("%w: RPC rate limit must be at least 1 rps, got %d", ErrInvalidConfig, c.RPCRateLimit)
	}
	return nil
}
