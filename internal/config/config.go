// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"FURNISHOP_DB_PATH" envDefault:"./data/furnishop.db"`
	SessionSecret string `env:"FURNISHOP_SESSION_SECRET,required"`
	ServerHost    string `env:"FURNISHOP_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"FURNISHOP_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"FURNISHOP_ENV" envDefault:"development"`
	LogLevel      string `env:"FURNISHOP_LOG_LEVEL" envDefault:"info"`

	// Optional Redis URL; when set, sessions are stored in Redis instead of SQLite
	RedisURL string `env:"FURNISHOP_REDIS_URL"`

	// Marketplace API location, see APIBaseURL
	APIBaseURLOverride string        `env:"FURNISHOP_API_BASE_URL"`
	APITarget          string        `env:"FURNISHOP_API_TARGET"`
	PublicHost         string        `env:"FURNISHOP_PUBLIC_HOST"`
	FallbackHostSuffix string        `env:"FURNISHOP_FALLBACK_HOST_SUFFIX" envDefault:".vercel.app"`
	FallbackAPIURL     string        `env:"FURNISHOP_FALLBACK_API_URL" envDefault:"https://furniture-backend-gfjq.onrender.com"`
	DefaultAPIURL      string        `env:"FURNISHOP_DEFAULT_API_URL" envDefault:"http://localhost:8000"`
	APITimeout         time.Duration `env:"FURNISHOP_API_TIMEOUT" envDefault:"15s"`

	// Product image uploads
	MaxUploadMB       int   `env:"FURNISHOP_MAX_UPLOAD_MB" envDefault:"10"`
	ImageMaxDimension int   `env:"FURNISHOP_IMAGE_MAX_DIMENSION" envDefault:"1600"`
	ImageMaxPixels    int64 `env:"FURNISHOP_IMAGE_MAX_PIXELS" envDefault:"40000000"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisSessions returns true if sessions should be kept in Redis.
func (c Config) UseRedisSessions() bool {
	return c.RedisURL != ""
}

// MaxUploadBytes returns the product image size limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// APIBaseURL resolves the marketplace API root. An explicit base URL wins,
// then the API target. A public host under the fallback suffix (a preview
// deployment) uses the hosted backend; anything else the local default.
// A trailing slash and then a trailing "/api" are removed, since request
// paths already start with /api/.
func (c Config) APIBaseURL() string {
	base := c.APIBaseURLOverride
	if base == "" {
		base = c.APITarget
	}
	if base == "" {
		if c.FallbackHostSuffix != "" && strings.HasSuffix(hostOnly(c.PublicHost), c.FallbackHostSuffix) {
			base = c.FallbackAPIURL
		} else {
			base = c.DefaultAPIURL
		}
	}
	base = strings.TrimSuffix(base, "/")
	return strings.TrimSuffix(base, "/api")
}

// hostOnly strips a scheme, port and path from h.
func hostOnly(h string) string {
	if _, rest, ok := strings.Cut(h, "://"); ok {
		h = rest
	}
	h, _, _ = strings.Cut(h, "/")
	if i := strings.LastIndexByte(h, ':'); i >= 0 && !strings.Contains(h[i:], "]") {
		h = h[:i]
	}
	return strings.ToLower(h)
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("FURNISHOP_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("FURNISHOP_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("FURNISHOP_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("FURNISHOP_MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	if cfg.ImageMaxPixels <= 0 {
		return nil, fmt.Errorf("FURNISHOP_IMAGE_MAX_PIXELS must be positive, got %d", cfg.ImageMaxPixels)
	}
	if cfg.APITimeout <= 0 {
		return nil, fmt.Errorf("FURNISHOP_API_TIMEOUT must be positive, got %s", cfg.APITimeout)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
