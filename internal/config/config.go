// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and CROSSCOUNT_* env vars over the defaults.
// - External errors are wrapped with ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"strings"
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreFile   = "file"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":5002".
	Addr string `koanf:"addr"`

	// Store selects the session backend: memory, sqlite or file.
	Store string `koanf:"store"`

	// DatabasePath is the SQLite file used by the sqlite backend.
	DatabasePath string `koanf:"database_path"`

	// ResultsFile is the JSON results file written by the tracking client.
	// It is the backing file of the file backend and an import source otherwise.
	ResultsFile string `koanf:"results_file"`

	// MaxRankings caps GET /api/rankings?limit and is its default.
	MaxRankings int `koanf:"max_rankings"`

	// Precision is the number of decimals rates are rounded to in responses.
	// Negative disables rounding.
	Precision int `koanf:"precision"`

	// CORSOrigins is a comma separated list of allowed origins, "*" for any.
	CORSOrigins string `koanf:"cors_origins"`

	// MaxBodyBytes caps POST /api/submit payloads.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// SiteAPIURL is the API base the embedded page calls. Empty means same origin.
	SiteAPIURL string `koanf:"site_api_url"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":5002",
		Store:        StoreMemory,
		DatabasePath: "rankings.db",
		ResultsFile:  "",
		MaxRankings:  50,
		Precision:    1,
		CORSOrigins:  "*",
		MaxBodyBytes: 64 << 10,
	}
}

// AllowedOrigins splits CORSOrigins into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
