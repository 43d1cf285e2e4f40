package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Browser attachment
	ControlURL string // DevTools websocket of an already-running browser; empty launches one
	BrowserBin string
	Headless   bool
	StartURL   string
	TargetHost string // host fragment a tab must match to be watched

	// Body resolution timing. Empirical constants tied to Chromium's
	// buffering behavior; overridable, not load-bearing precision.
	ResolveInitialDelay time.Duration
	ResolveRetryDelay   time.Duration
	ResolveMaxAttempts  int

	// Local detail proxy
	ProxyPort     string
	ProxyUsername string
	ProxyPassword string

	// MCP HTTP server
	HTTPPort string
	APIKey   string

	// Logging
	Debug bool
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		StartURL:            "https://shopee.co.id/",
		TargetHost:          "shopee.",
		ResolveInitialDelay: 100 * time.Millisecond,
		ResolveRetryDelay:   200 * time.Millisecond,
		ResolveMaxAttempts:  3,
		ProxyPort:           "5599",
		HTTPPort:            "8080",
	}
}

// LoadFromEnv loads .env file (if present) then overrides config from
// environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("WINSTORE_CONTROL_URL"); v != "" {
		c.ControlURL = v
	}
	if v := os.Getenv("WINSTORE_BROWSER_BIN"); v != "" {
		c.BrowserBin = v
	}
	if v := os.Getenv("WINSTORE_HEADLESS"); v == "true" {
		c.Headless = true
	}
	if v := os.Getenv("WINSTORE_START_URL"); v != "" {
		c.StartURL = v
	}
	if v := os.Getenv("WINSTORE_TARGET_HOST"); v != "" {
		c.TargetHost = v
	}
	if v := os.Getenv("WINSTORE_RESOLVE_INITIAL_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ResolveInitialDelay = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("WINSTORE_RESOLVE_RETRY_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ResolveRetryDelay = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("WINSTORE_RESOLVE_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.ResolveMaxAttempts = n
		}
	}
	if v := os.Getenv("WINSTORE_PROXY_PORT"); v != "" {
		c.ProxyPort = v
	}
	if v := os.Getenv("WINSTORE_PROXY_USERNAME"); v != "" {
		c.ProxyUsername = v
	}
	if v := os.Getenv("WINSTORE_PROXY_PASSWORD"); v != "" {
		c.ProxyPassword = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("WINSTORE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("WINSTORE_DEBUG"); v == "true" {
		c.Debug = true
	}
}
