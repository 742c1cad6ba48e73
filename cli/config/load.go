package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the config file at path. Relative scenario_files entries are
// resolved against the file's directory so a config can travel with its
// scenario catalog.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	cfg, err := Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, f := range cfg.ScenarioFiles {
		if f != "" && !filepath.IsAbs(f) {
			cfg.ScenarioFiles[i] = filepath.Join(base, f)
		}
	}
	return cfg, nil
}

// Parse expands environment references in r, decodes it strictly and
// validates the result. An empty document yields a zero Config.
func Parse(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc, err := ExpandEnv(string(raw))
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	dec := yaml.NewDecoder(strings.NewReader(doc))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid: %w", err)
	}
	return &cfg, nil
}
