// Package config loads the perception-layer configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/neboloop/pagelens/internal/dom"
)

// Config holds the perception-layer configuration.
type Config struct {
	// Extraction tuning
	Extraction ExtractionConfig `yaml:"extraction"`

	// RemoteURL is a CDP websocket endpoint for the CLI to attach to
	// (empty = launch a local browser)
	RemoteURL string `yaml:"remote_url"`
}

// ExtractionConfig tunes the pipeline. The tolerance and opacity values are
// heuristics, deliberately configurable rather than baked in; zero selects
// the built-in defaults.
type ExtractionConfig struct {
	OcclusionFilter   *bool    `yaml:"occlusion_filter"`   // default: true
	IncludeAttributes []string `yaml:"include_attributes"` // default: built-in list
	ViewportTolerance float64  `yaml:"viewport_tolerance"` // px of near-viewport slack
	OcclusionOpacity  float64  `yaml:"occlusion_opacity"`  // min opacity to occlude
}

// Load reads a YAML config file, expanding environment variables first.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// Options converts the config into pipeline options.
func (c Config) Options() dom.Options {
	opts := dom.DefaultOptions()
	e := c.Extraction
	if e.OcclusionFilter != nil {
		opts.OcclusionFilter = *e.OcclusionFilter
	}
	if len(e.IncludeAttributes) > 0 {
		opts.IncludeAttributes = e.IncludeAttributes
	}
	opts.ViewportTolerance = e.ViewportTolerance
	opts.OcclusionOpacity = e.OcclusionOpacity
	return opts
}
