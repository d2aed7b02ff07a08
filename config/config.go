/*
Package config defines process configuration for the reconciliation CLIs.

PURPOSE:
  One configuration shape for both binaries: cmd/reconcile (which carrier
  files to parse, the reporting period, ranking size, similarity tuning)
  and cmd/server (listen address, database path).

LOADING:
  Layered, low to high precedence:
    1. Defaults (Default())
    2. YAML file named by COMMISSION_CONFIG, if set
    3. Environment variables with the COMMISSION_ prefix
       (COMMISSION_PERIOD, COMMISSION_TOP_N, COMMISSION_DB_PATH, ...)

SEE ALSO:
  - loader.go: koanf layering
  - cmd/reconcile, cmd/server: The consumers
*/
package config

import (
	"github.com/warp/commission-engine/match"
)

// Source names one carrier statement to ingest.
type Source struct {
	// Carrier is a registry identifier: centene, emblem, healthfirst.
	Carrier string `koanf:"carrier"`

	// File is the path to the .xlsx statement.
	File string `koanf:"file"`
}

// Config contains process configuration for both binaries.
type Config struct {
	// Addr is the HTTP listen address for cmd/server, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database path. ":memory:" works for ephemeral runs.
	DBPath string `koanf:"db_path"`

	// Period is the YYYY-MM reporting period to reconcile and report on.
	Period string `koanf:"period"`

	// TopN sets the leaderboard size.
	TopN int `koanf:"top_n"`

	// DedupeNames enables agent-name clustering during normalization.
	DedupeNames bool `koanf:"dedupe_names"`

	// NameThreshold is the similarity cutoff for clustering.
	NameThreshold float64 `koanf:"name_threshold"`

	// Sources lists the carrier statements to ingest.
	Sources []Source `koanf:"sources"`
}

// Default returns the baseline configuration the loader layers onto.
func Default() *Config {
	return &Config{
		Addr:          ":8080",
		DBPath:        "commissions.db",
		Period:        "2024-06",
		TopN:          10,
		DedupeNames:   false,
		NameThreshold: match.DefaultThreshold,
	}
}
