// Package config loads scan defaults from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/idelchi/dupfind/internal/dupfind"
	"github.com/idelchi/dupfind/internal/recursion"
)

// AllowedOutputs lists the supported output formats.
//
//nolint:gochecknoglobals // Config constant
var AllowedOutputs = []string{"table", "json", "plain"}

// Config holds the defaults for every scan flag.
type Config struct {
	Recursive  string   `yaml:"recursive"`
	Strategy   string   `yaml:"strategy"`
	Hash       string   `yaml:"hash"`
	Engine     string   `yaml:"engine"`
	Excludes   []string `yaml:"excludes"`
	MinSize    string   `yaml:"min_size"`
	Workers    int      `yaml:"workers"`
	DirWorkers int      `yaml:"dir_workers"`
	Buffer     int      `yaml:"buffer"`
	Output     string   `yaml:"output"`
}

// GetDefault returns the built-in configuration.
func GetDefault() *Config {
	return &Config{
		Recursive:  "",
		Strategy:   string(dupfind.StrategySize),
		Hash:       string(dupfind.SHA256),
		Engine:     string(dupfind.EngineBFS),
		Excludes:   []string{},
		MinSize:    "0B",
		Workers:    runtime.NumCPU(),
		DirWorkers: 1,
		Buffer:     dupfind.DefaultBuffer,
		Output:     "table",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/dupfind/config.yaml or its platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "dupfind", "config.yaml"), nil
}

// Load reads the configuration at path on top of the defaults.
// A missing file yields the defaults unless required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := GetDefault()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}

		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := recursion.Parse(c.Recursive); err != nil {
		return err
	}

	if _, err := dupfind.ParseStrategy(c.Strategy); err != nil {
		return err
	}

	if _, err := dupfind.ParseAlgorithm(c.Hash); err != nil {
		return err
	}

	if _, err := dupfind.ParseEngine(c.Engine); err != nil {
		return err
	}

	if _, err := humanize.ParseBytes(c.MinSize); err != nil {
		return fmt.Errorf("invalid min_size %q: %w", c.MinSize, err)
	}

	if c.Workers < 1 {
		return errors.New("workers must be >= 1")
	}

	if c.DirWorkers < 1 {
		return errors.New("dir_workers must be >= 1")
	}

	if c.Buffer < 1 {
		return errors.New("buffer must be >= 1")
	}

	if !slices.Contains(AllowedOutputs, c.Output) {
		return fmt.Errorf("invalid output format %q: must be one of %v", c.Output, AllowedOutputs)
	}

	return nil
}
