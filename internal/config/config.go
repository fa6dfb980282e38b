// Package config holds the workflow configuration: data location, split
// and cross-validation settings, the search grid and report options.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yotsuba-lab/iristree/pkg/errors"
)

// Config is the root configuration for a training run.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Split   SplitConfig   `yaml:"split"`
	CV      CVConfig      `yaml:"cv"`
	Grid    GridConfig    `yaml:"grid"`
	Report  ReportConfig  `yaml:"report"`
	Logging LoggingConfig `yaml:"logging"`
}

type DataConfig struct {
	Path string `yaml:"path"`
}

type SplitConfig struct {
	TestSize   float64 `yaml:"test_size"`
	RandomSeed int     `yaml:"random_seed"`
}

type CVConfig struct {
	Folds int `yaml:"folds"`
	// Stratified defaults to true; a pointer distinguishes unset from false.
	Stratified *bool `yaml:"stratified"`
}

// IsStratified reports whether folds should preserve class proportions.
func (c CVConfig) IsStratified() bool {
	return c.Stratified == nil || *c.Stratified
}

type GridConfig struct {
	MaxDepths []int    `yaml:"max_depths"`
	Criteria  []string `yaml:"criteria"`
}

type ReportConfig struct {
	PreviewRows       int `yaml:"preview_rows"`
	SamplePredictions int `yaml:"sample_predictions"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a YAML configuration file, expanding environment
// variables and filling unset fields with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Split.TestSize == 0 {
		cfg.Split.TestSize = 0.3
	}
	if cfg.Split.RandomSeed == 0 {
		cfg.Split.RandomSeed = 42
	}
	if cfg.CV.Folds == 0 {
		cfg.CV.Folds = 5
	}
	if len(cfg.Grid.MaxDepths) == 0 {
		cfg.Grid.MaxDepths = []int{2, 4, 6, 8}
	}
	if len(cfg.Grid.Criteria) == 0 {
		cfg.Grid.Criteria = []string{"gini", "entropy"}
	}
	if cfg.Report.PreviewRows == 0 {
		cfg.Report.PreviewRows = 5
	}
	if cfg.Report.SamplePredictions == 0 {
		cfg.Report.SamplePredictions = 10
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate rejects settings the workflow cannot run with.
func (cfg *Config) Validate() error {
	if cfg.Data.Path == "" {
		return errors.NewValidationError("data.path", "must not be empty", cfg.Data.Path)
	}
	if cfg.Split.TestSize <= 0 || cfg.Split.TestSize >= 1 {
		return errors.NewValidationError("split.test_size", "must be in (0, 1)", cfg.Split.TestSize)
	}
	if cfg.CV.Folds < 2 {
		return errors.NewValidationError("cv.folds", "must be at least 2", cfg.CV.Folds)
	}
	for _, depth := range cfg.Grid.MaxDepths {
		if depth < 1 {
			return errors.NewValidationError("grid.max_depths", "depths must be positive", depth)
		}
	}
	for _, criterion := range cfg.Grid.Criteria {
		if criterion != "gini" && criterion != "entropy" {
			return errors.NewValidationError("grid.criteria",
				"must be \"gini\" or \"entropy\"", criterion)
		}
	}
	if cfg.Report.PreviewRows < 0 || cfg.Report.SamplePredictions < 0 {
		return errors.NewValidationError("report", "row counts must not be negative", nil)
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.NewValidationError("logging.level",
			"must be one of debug, info, warn, error", cfg.Logging.Level)
	}
	return nil
}
