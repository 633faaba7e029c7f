// Package config loads settings from .env, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix = "OPPOSITIONS_"

	// DefaultFile is read when OPPOSITIONS_CONFIG is unset. It is optional.
	DefaultFile = "ls-oppositions.yaml"

	DefaultBoundariesURL = "http://cdsarc.u-strasbg.fr/ftp/VI/49/bound_20.dat.gz"
)

// Data locates the input files. Relative paths are resolved against Dir.
type Data struct {
	Dir           string        `yaml:"dir"`
	Catalogue     string        `yaml:"catalogue"`
	CatalogueURL  string        `yaml:"catalogue_url"`
	Boundaries    string        `yaml:"boundaries"`
	BoundariesURL string        `yaml:"boundaries_url"`
	Names         string        `yaml:"names"` // empty uses the built-in table
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	Refresh       bool          `yaml:"refresh"` // download even when present
}

// Scan tunes the two passes.
type Scan struct {
	Workers        int           `yaml:"workers"` // 0 = one per CPU
	CoarseStepDays float64       `yaml:"coarse_step_days"`
	FineStep       time.Duration `yaml:"fine_step"`
}

// Limits are capacity limits applied while loading data.
type Limits struct {
	MaxRegions      int `yaml:"max_regions"`
	MaxRegionPoints int `yaml:"max_region_points"`
	MaxBodies       int `yaml:"max_bodies"` // 0 = unlimited
}

// Log configures diagnostics.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config holds all settings.
type Config struct {
	Data        Data   `yaml:"data"`
	Scan        Scan   `yaml:"scan"`
	Limits      Limits `yaml:"limits"`
	Output      string `yaml:"output"` // text or json
	Log         Log    `yaml:"log"`
	MetricsAddr string `yaml:"metrics_addr"`
	UI          string `yaml:"ui"` // auto, on or off
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Data: Data{
			Dir:           "data",
			Catalogue:     "asteroids.json",
			Boundaries:    filepath.Join("constellations", "bound_20.dat.gz"),
			BoundariesURL: DefaultBoundariesURL,
			FetchTimeout:  5 * time.Minute,
		},
		Scan: Scan{
			CoarseStepDays: 4,
			FineStep:       30 * time.Second,
		},
		Limits: Limits{
			MaxRegions:      90,
			MaxRegionPoints: 1024,
		},
		Output: "text",
		Log:    Log{Level: "warn", Format: "text"},
		UI:     "auto",
	}
}

// Load reads .env, then the YAML file named by OPPOSITIONS_CONFIG (or DefaultFile if it
// exists), then environment overrides, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := Default()

	path, explicit := os.LookupEnv(envPrefix + "CONFIG")
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.readFile(path, explicit); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) readFile(path string, required bool) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Data.Dir = EnvOrDefault(envPrefix+"DATA_DIR", c.Data.Dir)
	c.Data.Catalogue = EnvOrDefault(envPrefix+"CATALOGUE", c.Data.Catalogue)
	c.Data.CatalogueURL = EnvOrDefault(envPrefix+"CATALOGUE_URL", c.Data.CatalogueURL)
	c.Data.Boundaries = EnvOrDefault(envPrefix+"BOUNDARIES", c.Data.Boundaries)
	c.Data.BoundariesURL = EnvOrDefault(envPrefix+"BOUNDARIES_URL", c.Data.BoundariesURL)
	c.Data.Names = EnvOrDefault(envPrefix+"NAMES", c.Data.Names)
	c.Output = EnvOrDefault(envPrefix+"OUTPUT", c.Output)
	c.MetricsAddr = EnvOrDefault(envPrefix+"METRICS_ADDR", c.MetricsAddr)
	c.UI = EnvOrDefault(envPrefix+"UI", c.UI)
	c.Log.Level = EnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = EnvOrDefault("LOG_FORMAT", c.Log.Format)

	var err error
	if c.Data.Refresh, err = envBool(envPrefix+"REFRESH", c.Data.Refresh); err != nil {
		return err
	}
	if c.Data.FetchTimeout, err = envDuration(envPrefix+"FETCH_TIMEOUT", c.Data.FetchTimeout); err != nil {
		return err
	}
	if c.Scan.Workers, err = envInt(envPrefix+"WORKERS", c.Scan.Workers); err != nil {
		return err
	}
	if c.Scan.CoarseStepDays, err = envFloat(envPrefix+"COARSE_STEP_DAYS", c.Scan.CoarseStepDays); err != nil {
		return err
	}
	if c.Scan.FineStep, err = envDuration(envPrefix+"FINE_STEP", c.Scan.FineStep); err != nil {
		return err
	}
	if c.Limits.MaxBodies, err = envInt(envPrefix+"MAX_BODIES", c.Limits.MaxBodies); err != nil {
		return err
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case c.Scan.Workers < 0:
		return errors.New("scan.workers must not be negative")
	case c.Scan.CoarseStepDays <= 0:
		return errors.New("scan.coarse_step_days must be positive")
	case c.Scan.FineStep <= 0:
		return errors.New("scan.fine_step must be positive")
	case c.Scan.FineStep.Hours()/24 > c.Scan.CoarseStepDays:
		return errors.New("scan.fine_step must not exceed the coarse step")
	case c.Limits.MaxRegions <= 0 || c.Limits.MaxRegionPoints <= 0:
		return errors.New("limits.max_regions and limits.max_region_points must be positive")
	case c.Limits.MaxBodies < 0:
		return errors.New("limits.max_bodies must not be negative")
	case c.Data.FetchTimeout <= 0:
		return errors.New("data.fetch_timeout must be positive")
	}

	switch strings.ToLower(c.Output) {
	case "text", "json":
	default:
		return fmt.Errorf("output must be text or json, got %q", c.Output)
	}
	switch strings.ToLower(c.UI) {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("ui must be auto, on or off, got %q", c.UI)
	}
	return nil
}

// FineStepDays returns the fine step in days.
func (c *Config) FineStepDays() float64 {
	return c.Scan.FineStep.Seconds() / 86400
}

// Path resolves a data file name against Data.Dir. Empty names stay empty.
func (c *Config) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Data.Dir, name)
}

// EnvOrDefault returns the value of key, or fallback when it is unset or empty.
func EnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
