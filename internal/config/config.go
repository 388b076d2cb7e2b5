package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/kompare/internal/errors"
	"github.com/mcncl/kompare/internal/log"
	"github.com/mcncl/kompare/internal/presenter"
)

// Config represents the complete configuration for kompare
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Compare CompareConfig `yaml:"compare"`
	Dev     DevConfig     `yaml:"dev"`
}

// OutputConfig controls how results are written
type OutputConfig struct {
	Format string `yaml:"format"`
	Color  string `yaml:"color"`
	Indent string `yaml:"indent"`
	Stats  bool   `yaml:"stats"`
}

// CompareConfig controls the comparison itself
type CompareConfig struct {
	SortKeys    bool     `yaml:"sort_keys"`
	IgnorePaths []string `yaml:"ignore_paths"`
	MaxDepth    int      `yaml:"max_depth"`
	Concurrency int      `yaml:"concurrency"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// Overrides holds values given on the command line. Zero values mean the flag
// was not set and leave the configured value alone.
type Overrides struct {
	Format      string
	Color       string
	Indent      string
	Stats       bool
	SortKeys    bool
	IgnorePaths []string
	MaxDepth    int
	Concurrency int
	Debug       bool
}

// configNames are searched for, in order, in each directory
var configNames = []string{".kompare.yml", ".kompare.yaml", "kompare.yml", "kompare.yaml"}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: string(presenter.FormatText),
			Color:  string(presenter.ColorAuto),
			Indent: "  ",
			Stats:  false,
		},
		Compare: CompareConfig{
			SortKeys:    false,
			IgnorePaths: []string{},
			MaxDepth:    0,
			Concurrency: 1,
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read config file '%s'", path), err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to parse config file '%s'", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in the current directory and its parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findConfigFileFrom(currentDir)
}

func findConfigFileFrom(dir string) string {
	for {
		for _, name := range configNames {
			configPath := filepath.Join(dir, name)
			if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
				return configPath
			}
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			// Reached root directory
			break
		}
		dir = parentDir
	}

	return ""
}

// Validate checks that every value is one kompare understands. The format
// name is normalized in place.
func (c *Config) Validate() error {
	format, err := presenter.ParseFormat(c.Output.Format)
	if err != nil {
		return errors.NewConfigError(fmt.Sprintf("invalid output format '%s'", c.Output.Format), errors.ErrUnknownFormat)
	}
	c.Output.Format = string(format)

	switch presenter.ColorMode(c.Output.Color) {
	case presenter.ColorAuto, presenter.ColorAlways, presenter.ColorNever:
	default:
		return errors.NewConfigError(fmt.Sprintf("invalid color mode '%s', want auto, always or never", c.Output.Color), nil)
	}

	if c.Compare.MaxDepth < 0 {
		return errors.NewConfigError(fmt.Sprintf("max_depth must not be negative, got %d", c.Compare.MaxDepth), nil)
	}
	if c.Compare.Concurrency < 0 {
		return errors.NewConfigError(fmt.Sprintf("concurrency must not be negative, got %d", c.Compare.Concurrency), nil)
	}
	return nil
}

// WithOverrides returns a copy of c with every flag that was set applied on
// top. Ignore paths from the command line are added to the configured ones.
func (c *Config) WithOverrides(o Overrides) *Config {
	merged := *c
	merged.Compare.IgnorePaths = append([]string{}, c.Compare.IgnorePaths...)

	if o.Format != "" {
		merged.Output.Format = o.Format
	}
	if o.Color != "" {
		merged.Output.Color = o.Color
	}
	if o.Indent != "" {
		merged.Output.Indent = o.Indent
	}
	if o.Stats {
		merged.Output.Stats = true
	}
	if o.SortKeys {
		merged.Compare.SortKeys = true
	}
	merged.Compare.IgnorePaths = append(merged.Compare.IgnorePaths, o.IgnorePaths...)
	if o.MaxDepth != 0 {
		merged.Compare.MaxDepth = o.MaxDepth
	}
	if o.Concurrency != 0 {
		merged.Compare.Concurrency = o.Concurrency
	}
	if o.Debug {
		merged.Dev.Debug = true
	}

	return &merged
}

// LoadConfigWithCLI loads config with CLI argument precedence. An empty
// configPath uses the nearest config file, or the defaults when there is none.
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg := NewConfig()
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		log.Infof("using config file %s", configPath)
		cfg = fileConfig
	}

	cfg = cfg.WithOverrides(o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
