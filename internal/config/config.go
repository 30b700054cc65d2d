// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

// Package config loads server configuration from a YAML file and
// command-line flags, flags taking precedence.
package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds the full server configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Observability ObservabilityConfig `koanf:"observability"`
	Database      DatabaseConfig      `koanf:"database"`
	Game          GameConfig          `koanf:"game"`
	Log           LogConfig           `koanf:"log"`
}

// ServerConfig configures the public HTTP server.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// ObservabilityConfig configures the metrics/health server.
type ObservabilityConfig struct {
	Addr string `koanf:"addr"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// GameConfig holds game-level settings, including the name-policy
// blocklists. The blocklists are configuration, not code, so operators
// can extend them without a release.
type GameConfig struct {
	ProductName     string   `koanf:"product_name"`
	BlockedPrefixes []string `koanf:"blocked_prefixes"`
	BlockedPhrases  []string `koanf:"blocked_phrases"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `koanf:"format"` // "json" or "text"
}

// Default returns the configuration defaults. Blocklists default to
// empty here; the name policy layers its own defaults when none are
// configured.
func Default() *Config {
	return &Config{
		Server:        ServerConfig{Addr: ":8080"},
		Observability: ObservabilityConfig{Addr: "127.0.0.1:9100"},
		Game:          GameConfig{ProductName: "Emberwake"},
		Log:           LogConfig{Format: "json"},
	}
}

// RegisterFlags declares the standard configuration flags on fs. The
// flag defaults are the documented defaults from Default, so an
// unchanged flag layered by Load merges the documented value rather
// than an empty string that would mask file and default values.
func RegisterFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.String("server.addr", def.Server.Addr, "public HTTP listen address")
	fs.String("observability.addr", def.Observability.Addr, "metrics/health listen address")
	fs.String("database.url", "", "PostgreSQL connection URL")
	fs.String("log.format", def.Log.Format, "log format: json or text")
}

// Load builds a Config from defaults, then the YAML file at path (if
// non-empty), then flags (if non-nil). Later sources win; an unchanged
// flag never overrides a value set by the file.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("source", "flags").
				Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	if cfg.Database.URL == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}

	return cfg, nil
}
