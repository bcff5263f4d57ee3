// Package config handles deve-ledger configuration via environment variables.
//
// Configuration is loaded from environment variables using LoadFromEnv() and
// can be validated with Validate() before use. Command-line flags (see
// cmd/deve-ledger) take precedence when explicitly set; LoadFromEnv supplies
// the defaults a flag falls back to.
//
// Example Usage:
//
//	cfg := config.LoadFromEnv()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("invalid config: %v", err)
//	}
//
// Environment Variables:
//
//   - DEVE_LEDGER_DIR="./.ledger"
//   - DEVE_LEDGER_SNAPSHOT_DEPTH=200
//   - DEVE_LEDGER_SYNC_MODE="auto" or "manual"
//   - DEVE_LEDGER_WS_ADDRESS="0.0.0.0"
//   - DEVE_LEDGER_WS_PORT=7420
//   - DEVE_LEDGER_PBKDF2_ITERATIONS=600000
//   - DEVE_LEDGER_LOG_LEVEL="info"
//   - DEVE_LEDGER_LOG_FORMAT="text"
//
// For a complete list, see the Config struct field documentation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all deve-ledger configuration loaded from environment
// variables.
//
// Configuration is organized into logical sections:
//   - Ledger: on-disk layout and snapshotting
//   - Sync: peer sync engine behavior
//   - Server: WebSocket transport settings
//   - Logging: logging configuration
type Config struct {
	Ledger  LedgerConfig
	Sync    SyncConfig
	Server  ServerConfig
	Logging LoggingConfig
}

// LedgerConfig holds on-disk ledger directory and snapshotting settings.
type LedgerConfig struct {
	// Dir is the root directory holding local/ and remotes/ stores.
	Dir string
	// SnapshotDepth is the number of snapshots kept per document; saving
	// one more prunes the oldest (by BaseSeq).
	SnapshotDepth int
	// RepoName is the human-readable name of the local repository.
	RepoName string
}

// SyncConfig holds peer sync engine settings.
type SyncConfig struct {
	// Mode is "auto" (apply remote ops immediately) or "manual" (buffer
	// them for review via ConfirmMerge/DiscardPending).
	Mode string
	// PBKDF2Iterations is validated (minimum 100,000) but not read by
	// cryptobox: WrapWithPassphrase/UnwrapWithPassphrase always use a
	// fixed 600,000 iterations.
	PBKDF2Iterations int
}

// ServerConfig holds WebSocket transport settings.
type ServerConfig struct {
	// Address to bind the sync listener to.
	Address string
	// Port for the WebSocket sync listener.
	Port int
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string
	// Format is "text" or "json".
	Format string
}

// LoadFromEnv builds a Config from environment variables, applying
// defaults for anything unset.
func LoadFromEnv() *Config {
	cfg := &Config{}

	cfg.Ledger.Dir = getEnv("DEVE_LEDGER_DIR", "./.ledger")
	cfg.Ledger.SnapshotDepth = getEnvInt("DEVE_LEDGER_SNAPSHOT_DEPTH", 200)
	cfg.Ledger.RepoName = getEnv("DEVE_LEDGER_REPO_NAME", "default")

	cfg.Sync.Mode = strings.ToLower(getEnv("DEVE_LEDGER_SYNC_MODE", "auto"))
	cfg.Sync.PBKDF2Iterations = getEnvInt("DEVE_LEDGER_PBKDF2_ITERATIONS", 600_000)

	cfg.Server.Address = getEnv("DEVE_LEDGER_WS_ADDRESS", "0.0.0.0")
	cfg.Server.Port = getEnvInt("DEVE_LEDGER_WS_PORT", 7420)

	cfg.Logging.Level = getEnv("DEVE_LEDGER_LOG_LEVEL", "info")
	cfg.Logging.Format = getEnv("DEVE_LEDGER_LOG_FORMAT", "text")

	return cfg
}

// Validate checks the configuration for logical errors and invalid values.
//
// Call Validate() after LoadFromEnv() and before using the Config.
func (c *Config) Validate() error {
	if c.Ledger.Dir == "" {
		return fmt.Errorf("ledger dir must not be empty")
	}
	if c.Ledger.SnapshotDepth <= 0 {
		return fmt.Errorf("snapshot depth must be positive, got %d", c.Ledger.SnapshotDepth)
	}
	switch c.Sync.Mode {
	case "auto", "manual":
	default:
		return fmt.Errorf("sync mode must be %q or %q, got %q", "auto", "manual", c.Sync.Mode)
	}
	if c.Sync.PBKDF2Iterations < 100_000 {
		return fmt.Errorf("pbkdf2 iterations too low for safe key derivation: %d", c.Sync.PBKDF2Iterations)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid websocket port: %d", c.Server.Port)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be %q or %q, got %q", "text", "json", c.Logging.Format)
	}
	return nil
}

// String renders the config for startup logging.
func (c *Config) String() string {
	return fmt.Sprintf("ledger=%s snapshotDepth=%d syncMode=%s ws=%s:%d logLevel=%s",
		c.Ledger.Dir, c.Ledger.SnapshotDepth, c.Sync.Mode, c.Server.Address, c.Server.Port, c.Logging.Level)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
