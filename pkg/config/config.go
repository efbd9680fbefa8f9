package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zpam/classifier/pkg/dataset"
	"github.com/zpam/classifier/pkg/knn"
	"github.com/zpam/classifier/pkg/store"
)

// Config represents classifier configuration
type Config struct {
	// Naive Bayes settings
	Classifier ClassifierConfig `yaml:"classifier"`

	// Nearest neighbour settings
	KNN KNNConfig `yaml:"knn"`

	// Input data settings
	Dataset DatasetConfig `yaml:"dataset"`

	// Dataset and run persistence
	Store store.Config `yaml:"store"`

	// Scoring settings
	Evaluation EvaluationConfig `yaml:"evaluation"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// ClassifierConfig selects the prior and smoothing of the Bayes model
type ClassifierConfig struct {
	Prior string  `yaml:"prior"` // uniform or multinomial
	Zero  float64 `yaml:"zero"`  // probability of a value never seen with a label

	// Buckets fixes the candidate labels and their tie-break order.
	// Empty means labels in order of first appearance.
	Buckets []string `yaml:"buckets,omitempty"`

	// Frequencies overrides the label frequencies of the multinomial prior.
	// Empty means frequencies observed in training data.
	Frequencies map[string]float64 `yaml:"frequencies,omitempty"`
}

// KNNConfig contains nearest neighbour parameters
type KNNConfig struct {
	Enabled  bool   `yaml:"enabled"`
	K        int    `yaml:"k"`
	Distance string `yaml:"distance"` // euclidean, manhattan or chebyshev
}

// DatasetConfig describes how to read and split input data
type DatasetConfig struct {
	Path        string  `yaml:"path"`
	LabelColumn int     `yaml:"label_column"` // negative counts from the end
	Header      bool    `yaml:"header"`
	Delimiter   string  `yaml:"delimiter"`
	Bins        int     `yaml:"bins"` // 0 keeps values as categories
	TestRatio   float64 `yaml:"test_ratio"`
	Seed        int64   `yaml:"seed"`

	Text TextConfig `yaml:"text"`
}

// TextConfig turns the first feature column into word-presence features
type TextConfig struct {
	Enabled            bool `yaml:"enabled"`
	dataset.TextConfig `yaml:",inline"`
}

// EvaluationConfig contains scoring parameters
type EvaluationConfig struct {
	Concurrency int  `yaml:"concurrency"` // models scored in parallel
	Progress    bool `yaml:"progress"`    // show progress bars
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty logs to stderr
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Classifier: ClassifierConfig{
			Prior: "uniform",
			Zero:  0.0,
		},
		KNN: KNNConfig{
			Enabled:  true,
			K:        5,
			Distance: "euclidean",
		},
		Dataset: DatasetConfig{
			LabelColumn: -1,
			Header:      true,
			Delimiter:   ",",
			Bins:        0,
			TestRatio:   0.25,
			Seed:        42,
			Text: TextConfig{
				Enabled:    false,
				TextConfig: *dataset.DefaultTextConfig(),
			},
		},
		Store: store.Config{
			Backend: "memory",
			Redis:   store.DefaultRedisConfig(),
		},
		Evaluation: EvaluationConfig{
			Concurrency: 2,
			Progress:    true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// If no config file specified, return defaults
	if configPath == "" {
		return config, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}

	return config, nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}

// Validate validates configuration values
func (c *Config) Validate() error {
	switch c.Classifier.Prior {
	case "uniform", "multinomial":
	default:
		return fmt.Errorf("classifier prior must be 'uniform' or 'multinomial', got %q", c.Classifier.Prior)
	}

	if c.Classifier.Zero < 0 || c.Classifier.Zero > 1 {
		return fmt.Errorf("classifier zero must be between 0 and 1")
	}

	for label, f := range c.Classifier.Frequencies {
		if f < 0 {
			return fmt.Errorf("frequency of %q must be >= 0", label)
		}
	}

	if c.KNN.Enabled {
		if c.KNN.K < 1 {
			return fmt.Errorf("knn k must be >= 1")
		}
		if _, err := knn.DistanceByName(c.KNN.Distance); err != nil {
			return err
		}
	}

	if c.Dataset.TestRatio <= 0 || c.Dataset.TestRatio >= 1 {
		return fmt.Errorf("test_ratio must be between 0 and 1")
	}

	if len([]rune(c.Dataset.Delimiter)) != 1 {
		return fmt.Errorf("delimiter must be a single character")
	}

	if c.Dataset.Bins < 0 {
		return fmt.Errorf("bins must be >= 0")
	}

	if c.Dataset.Text.Enabled {
		if c.Dataset.Text.MinWordLength < 1 || c.Dataset.Text.MaxWordLength < c.Dataset.Text.MinWordLength {
			return fmt.Errorf("text word lengths must satisfy 1 <= min <= max")
		}
	}

	switch c.Store.Backend {
	case "", "memory":
	case "redis":
		if c.Store.Redis == nil || c.Store.Redis.RedisURL == "" {
			return fmt.Errorf("redis_url cannot be empty with the redis backend")
		}
	default:
		return fmt.Errorf("store backend must be 'memory' or 'redis'")
	}

	if c.Evaluation.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	validLevel := false
	for _, level := range validLevels {
		if c.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	return nil
}

// CSVOptions returns the reader options of the dataset section
func (c *Config) CSVOptions() dataset.CSVOptions {
	delimiter := ','
	if r := []rune(c.Dataset.Delimiter); len(r) == 1 {
		delimiter = r[0]
	}
	return dataset.CSVOptions{
		LabelColumn: c.Dataset.LabelColumn,
		Header:      c.Dataset.Header,
		Delimiter:   delimiter,
	}
}
