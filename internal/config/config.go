package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidInterval = errors.New("interval must be positive")
	ErrInvalidLevel    = errors.New("unknown log level")
)

// Config carries runtime options for pipegauge.
type Config struct {
	Interval time.Duration `yaml:"interval"`
	Seed     uint64        `yaml:"seed"`
	Listen   string        `yaml:"listen"`
	LogLevel string        `yaml:"log_level"`
	LogFile  string        `yaml:"log_file"`
	LeadID   string        `yaml:"lead_id"`
	Company  string        `yaml:"company"`
}

func Default() Config {
	return Config{
		Interval: 2500 * time.Millisecond,
		Seed:     0,
		Listen:   ":8080",
		LogLevel: "info",
		LogFile:  "",
		LeadID:   "12345",
		Company:  "Acme Corp",
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the
// file keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv applies PIPEGAUGE_* environment overrides. Malformed values are ignored.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("PIPEGAUGE_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Interval = parsed
		} else if parsed, err2 := time.ParseDuration(v + "s"); err2 == nil {
			cfg.Interval = parsed
		}
	}
	if v := os.Getenv("PIPEGAUGE_SEED"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Seed = parsed
		}
	}
	if v := os.Getenv("PIPEGAUGE_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("PIPEGAUGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// RegisterFlags adds the config flags to fs with their defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("config", "", "path to a YAML config file")
	fs.Duration("interval", d.Interval, "tick interval")
	fs.Uint64("seed", d.Seed, "random seed (0 picks one from the clock)")
	fs.String("listen", d.Listen, "HTTP listen address for serve")
	fs.String("log-level", d.LogLevel, "log level: debug|info|warn|error")
	fs.String("log-file", d.LogFile, "log file (the TUI logs nowhere when empty)")
	fs.String("lead-id", d.LeadID, "lead referenced by the toast")
	fs.String("company", d.Company, "company name shown in the toast")
}

// Resolve builds the effective config: defaults, then the YAML file named by
// --config, then the environment, then flags set on the command line.
func Resolve(fs *pflag.FlagSet) (Config, error) {
	cfg := Default()
	if path, _ := fs.GetString("config"); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	ApplyEnv(&cfg)

	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "interval":
			cfg.Interval, err = fs.GetDuration(f.Name)
		case "seed":
			cfg.Seed, err = fs.GetUint64(f.Name)
		case "listen":
			cfg.Listen, err = fs.GetString(f.Name)
		case "log-level":
			cfg.LogLevel, err = fs.GetString(f.Name)
		case "log-file":
			cfg.LogFile, err = fs.GetString(f.Name)
		case "lead-id":
			cfg.LeadID, err = fs.GetString(f.Name)
		case "company":
			cfg.Company, err = fs.GetString(f.Name)
		}
	})
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, c.Interval)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLevel, c.LogLevel)
	}
	return nil
}
