package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPaths are tried in order when no explicit path is given
var DefaultPaths = []string{"config.yml", "./config/config.yml"}

// ErrNoFeed is returned by SelectFeed when the configuration lists no feeds
var ErrNoFeed = errors.New("no feed configured")

// LoadAppConfig loads and validates the application configuration. With no
// arguments the DefaultPaths are tried; the first readable file wins.
func LoadAppConfig(paths ...string) (AppConfig, error) {
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return AppConfig{}, err
	}
	return Parse(data)
}

// Parse decodes YAML bytes, validates them and fills defaults
func Parse(data []byte) (AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse config: %w", err)
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("validate config: %w", err)
	}
	cfg.Search = cfg.Search.WithDefaults()
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	return cfg, nil
}

// WithDefaults returns a copy where unset values take their defaults.
// Bounds where zero means "unlimited" are left untouched.
func (s SearchConfig) WithDefaults() SearchConfig {
	if s.Heuristic == "" {
		s.Heuristic = "euclidean"
	}
	if s.WalkSpeed == 0 {
		s.WalkSpeed = 1.33
	}
	if s.WalkReluctance == 0 {
		s.WalkReluctance = 2.0
	}
	if s.WaitReluctance == 0 {
		s.WaitReluctance = 1.0
	}
	if s.MaxTransitSpeed == 0 {
		s.MaxTransitSpeed = 40
	}
	if s.TransferRadius == 0 {
		s.TransferRadius = 300
	}
	if len(s.Modes) == 0 {
		s.Modes = []string{"WALK", "TRANSIT"}
	}
	if s.Concurrency == 0 {
		s.Concurrency = 4
	}
	return s
}

// SelectFeed chooses a feed by name; fallback to first.
func SelectFeed(cfg AppConfig, name string) (Feed, error) {
	if name != "" {
		for _, f := range cfg.Feeds {
			if f.Name == name {
				return f, nil
			}
		}
	}
	if len(cfg.Feeds) > 0 {
		return cfg.Feeds[0], nil
	}
	return Feed{}, ErrNoFeed
}
