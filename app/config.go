package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds defaults that flags may override. All fields are
// optional; a missing config file yields the zero Config.
type Config struct {
	// Year is the tax year to compute. Zero means the last full year.
	Year int `yaml:"year"`
	// Strategy is the lot-matching strategy name (fifo, lifo or hifo).
	Strategy string `yaml:"strategy"`
	// Assets is the tracked asset allowlist. Empty accepts any symbol.
	Assets []string `yaml:"assets"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultTaxYear is the most recent year for which a full ledger can
// exist.
func DefaultTaxYear() int {
	return time.Now().UTC().Year() - 1
}
