// Package config loads pipeline settings from YAML with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultInputPath     = "data/raw/results.csv"
	DefaultProcessedPath = "data/processed/processed.csv"
	DefaultFeaturesPath  = "data/features/team_features.csv"
	DefaultCutoffDate    = "2010-01-01"
	DefaultWindow        = 5
)

// S3 configures optional publishing of the written files.
type S3 struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// Config is the full pipeline configuration.
type Config struct {
	InputPath      string `yaml:"input_path"`
	ProcessedPath  string `yaml:"processed_path"`
	FeaturesPath   string `yaml:"features_path"`
	SummaryPath    string `yaml:"summary_path"`
	LatestFormPath string `yaml:"latest_form_path"`
	CutoffDate     string `yaml:"cutoff_date"`
	Window         int    `yaml:"window"`

	// Optional sinks; empty disables.
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
	SQLitePath    string `yaml:"sqlite_path"`
	MetricsFile   string `yaml:"metrics_file"`
	S3            S3     `yaml:"s3"`

	Verbose bool `yaml:"verbose"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		InputPath:     DefaultInputPath,
		ProcessedPath: DefaultProcessedPath,
		FeaturesPath:  DefaultFeaturesPath,
		CutoffDate:    DefaultCutoffDate,
		Window:        DefaultWindow,
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// decode rejects unknown keys so typos do not silently disable a sink.
func decode(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

// ApplyEnv overrides sink settings from POSTGRES_DSN, CLICKHOUSE_DSN,
// SQLITE_PATH and S3_BUCKET when they are set and non-empty.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for name, dst := range map[string]*string{
		"POSTGRES_DSN":   &c.PostgresDSN,
		"CLICKHOUSE_DSN": &c.ClickhouseDSN,
		"SQLITE_PATH":    &c.SQLitePath,
		"S3_BUCKET":      &c.S3.Bucket,
	} {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
}

// Cutoff parses CutoffDate as a UTC date.
func (c Config) Cutoff() (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(c.CutoffDate))
	if err != nil {
		return time.Time{}, fmt.Errorf("cutoff_date %q: want YYYY-MM-DD", c.CutoffDate)
	}
	return t, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.InputPath == "" {
		errs = append(errs, errors.New("input_path is required"))
	}
	if c.ProcessedPath == "" {
		errs = append(errs, errors.New("processed_path is required"))
	}
	if c.FeaturesPath == "" {
		errs = append(errs, errors.New("features_path is required"))
	}
	if c.Window < 1 {
		errs = append(errs, fmt.Errorf("window must be >= 1, got %d", c.Window))
	}
	if _, err := c.Cutoff(); err != nil {
		errs = append(errs, err)
	}
	if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
		errs = append(errs, errors.New("s3 access_key_id and secret_access_key must be set together"))
	}

	return errors.Join(errs...)
}
