// Package config loads the gloss configuration file.
//
// Configuration lives in a single YAML document, by default
// ~/.config/gloss/config.yaml, overridable with the --config flag.
// Every field has a usable default so a missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultEndpoint     = "https://zh.wikipedia.org/w/api.php"
	defaultStatsHost    = "xtools.wmcloud.org"
	defaultSummary      = "Adding writing review with gloss"
	defaultRefreshDelay = 2 * time.Second
)

// WikiConfig addresses the wiki the review fragments are committed to.
type WikiConfig struct {
	Endpoint string `yaml:"endpoint"`
	Server   string `yaml:"server,omitempty"`

	// PageTitle is the commit fallback when a heading carries no edit link.
	PageTitle string `yaml:"page_title,omitempty"`

	UserName  string `yaml:"user_name,omitempty"`
	Summary   string `yaml:"summary,omitempty"`
	UserAgent string `yaml:"user_agent,omitempty"`
}

// RedisConfig enables the Redis annotation store when Addr is set; an empty
// Addr keeps annotations in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	TTL      string `yaml:"ttl,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// ServeConfig configures the HTTP host.
type ServeConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Config models the whole configuration file.
type Config struct {
	Wiki         WikiConfig  `yaml:"wiki"`
	Redis        RedisConfig `yaml:"redis,omitempty"`
	Serve        ServeConfig `yaml:"serve,omitempty"`
	StatsHost    string      `yaml:"stats_host,omitempty"`
	RefreshDelay string      `yaml:"refresh_delay,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Wiki: WikiConfig{
			Endpoint: defaultEndpoint,
			Summary:  defaultSummary,
		},
		Serve:     ServeConfig{Addr: ":8341"},
		StatsHost: defaultStatsHost,
	}
}

// DefaultPath returns the conventional location of the config file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "gloss.yaml"
	}
	return filepath.Join(dir, "gloss", "config.yaml")
}

// Load reads the config file at path, layering it over the defaults. A
// missing file yields the defaults; a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.Wiki.Endpoint == "" {
		c.Wiki.Endpoint = defaultEndpoint
	}
	if c.Wiki.Summary == "" {
		c.Wiki.Summary = defaultSummary
	}
	if c.StatsHost == "" {
		c.StatsHost = defaultStatsHost
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":8341"
	}
	return c
}

// RefreshDelayDuration parses the refresh delay, falling back to the
// default on absence or a bad value.
func (c Config) RefreshDelayDuration() time.Duration {
	if c.RefreshDelay == "" {
		return defaultRefreshDelay
	}
	d, err := time.ParseDuration(c.RefreshDelay)
	if err != nil || d <= 0 {
		return defaultRefreshDelay
	}
	return d
}

// RedisTTL parses the Redis TTL; zero means no expiry.
func (c Config) RedisTTL() time.Duration {
	if c.Redis.TTL == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Redis.TTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
