// Package config supplies the output directory used when a survey derives its
// store path on first ingestion.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// EnvOutputDirectory is the environment variable consulted by FromEnv.
const EnvOutputDirectory = "SURVEYGO_OUTPUT_DIRECTORY"

// ErrNoOutputDirectory is returned when no output directory is configured.
var ErrNoOutputDirectory = errors.New("no output directory configured")

// Provider yields the directory where generated store files are placed.
type Provider interface {
	OutputDirectory() (string, error)
}

// DataConfig holds the data section of a config file.
type DataConfig struct {
	OutputDirectory string `yaml:"output_directory"`
}

// Config is a file-backed Provider.
type Config struct {
	Data DataConfig `yaml:"data"`
}

// Load reads a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

// DefaultPath returns the conventional config location, config.yaml in the
// working directory.
func DefaultPath() string {
	dir, _ := os.Getwd()
	return filepath.Join(dir, "config.yaml")
}

// OutputDirectory implements Provider.
func (c *Config) OutputDirectory() (string, error) {
	if c.Data.OutputDirectory == "" {
		return "", ErrNoOutputDirectory
	}
	return c.Data.OutputDirectory, nil
}

// Static is a fixed-directory Provider, mainly for tests and embedding.
type Static string

// OutputDirectory implements Provider.
func (s Static) OutputDirectory() (string, error) {
	if s == "" {
		return "", ErrNoOutputDirectory
	}
	return string(s), nil
}

type envProvider struct {
	key string
}

// FromEnv returns a Provider reading EnvOutputDirectory from the environment
// on every call.
func FromEnv() Provider {
	return envProvider{key: EnvOutputDirectory}
}

// OutputDirectory implements Provider.
func (e envProvider) OutputDirectory() (string, error) {
	if dir := os.Getenv(e.key); dir != "" {
		return dir, nil
	}
	return "", ErrNoOutputDirectory
}
