package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source selects which pipeline feeds the bus.
type Source string

const (
	SourceAuto     Source = "auto"
	SourceNative   Source = "native"
	SourceFallback Source = "fallback"
)

// Mode selects the output surface.
type Mode string

const (
	ModeTUI        Mode = "tui"
	ModeJSON       Mode = "json"
	ModeJSONStream Mode = "json-stream"
	ModeServe      Mode = "serve"
)

// Config carries runtime options for pulse.
type Config struct {
	Interval         time.Duration `yaml:"interval"`
	FallbackInterval time.Duration `yaml:"fallback_interval"`
	Source           Source        `yaml:"source"`
	StoragePath      string        `yaml:"storage_path"`
	SyntheticCPU     bool          `yaml:"synthetic_cpu"`
	Mode             Mode          `yaml:"mode"`
	Listen           string        `yaml:"listen"`
	LogLevel         string        `yaml:"log_level"`
	LogFile          string        `yaml:"log_file"`
}

func Default() Config {
	return Config{
		Interval:         2 * time.Second,
		FallbackInterval: 3 * time.Second,
		Source:           SourceAuto,
		StoragePath:      "/",
		Mode:             ModeTUI,
		Listen:           "127.0.0.1:9477",
		LogLevel:         "info",
	}
}

// FromFlags builds a Config from defaults, an optional YAML file named by
// -config, the remaining flags and finally environment overrides.
func FromFlags(args []string) (Config, error) {
	cfg := Default()

	if path := configPath(args); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	fs := flag.NewFlagSet("pulse", flag.ContinueOnError)
	fs.String("config", "", "YAML config file")
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "native polling interval")
	fs.DurationVar(&cfg.FallbackInterval, "fallback-interval", cfg.FallbackInterval, "fallback polling interval")
	fs.StringVar((*string)(&cfg.Source), "source", string(cfg.Source), "metric source: auto|native|fallback")
	fs.StringVar(&cfg.StoragePath, "storage", cfg.StoragePath, "filesystem to report storage for")
	fs.BoolVar(&cfg.SyntheticCPU, "synthetic-cpu", cfg.SyntheticCPU, "report a labeled synthetic CPU signal")
	fs.StringVar((*string)(&cfg.Mode), "mode", string(cfg.Mode), "output: tui|json|json-stream|serve")
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "bridge listen address for serve mode")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file path (defaults to stderr, or a temp file in tui mode)")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if v := os.Getenv("PULSE_INTERVAL"); v != "" {
		if d, ok := parseDuration(v); ok {
			cfg.Interval = d
		}
	}
	if v := os.Getenv("PULSE_FALLBACK_INTERVAL"); v != "" {
		if d, ok := parseDuration(v); ok {
			cfg.FallbackInterval = d
		}
	}
	if v := os.Getenv("PULSE_SOURCE"); v != "" {
		cfg.Source = Source(v)
	}
	if v := os.Getenv("PULSE_SYNTHETIC_CPU"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SyntheticCPU = b
		}
	}
	if v := os.Getenv("PULSE_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("PULSE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg, cfg.Validate()
}

// Validate rejects values no pipeline can run with.
func (c Config) Validate() error {
	var errs []error
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", c.Interval))
	}
	if c.FallbackInterval <= 0 {
		errs = append(errs, fmt.Errorf("fallback interval must be positive, got %s", c.FallbackInterval))
	}
	switch c.Source {
	case SourceAuto, SourceNative, SourceFallback:
	default:
		errs = append(errs, fmt.Errorf("unknown source %q", c.Source))
	}
	switch c.Mode {
	case ModeTUI, ModeJSON, ModeJSONStream, ModeServe:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}
	return errors.Join(errs...)
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// configPath finds -config ahead of the main parse so file values can be
// overridden by flags.
func configPath(args []string) string {
	fs := flag.NewFlagSet("pulse", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.String("config", "", "")
	for i, a := range args {
		if a == "-config" || a == "--config" || strings.HasPrefix(a, "-config=") || strings.HasPrefix(a, "--config=") {
			_ = fs.Parse(args[i : min(i+2, len(args))])
			break
		}
	}
	return *path
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(v string) (time.Duration, bool) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if d, err := time.ParseDuration(v + "s"); err == nil {
		return d, true
	}
	return 0, false
}
