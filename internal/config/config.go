// Package config loads the rnse configuration file: logging settings and the
// list of bundles for batch verification.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"rnse/internal/verify"
)

// DefaultParallel bounds concurrent bundle verifications when unset.
const DefaultParallel = 4

// Log holds logging settings.
type Log struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// BundleRef names one bundle: either a directory holding manifest.json and
// trace.f64le, or explicit file paths.
type BundleRef struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Dir      string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Manifest string `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	Trace    string `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// Config is the parsed configuration file.
type Config struct {
	Log      Log         `json:"log" yaml:"log"`
	Parallel int         `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	Bundles  []BundleRef `json:"bundles" yaml:"bundles"`

	// baseDir resolves relative bundle paths; set by LoadFromPath.
	baseDir string
}

// LoadFromPath reads a config file (YAML or JSON). Relative bundle paths are
// resolved against the file's directory.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Load(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	c.baseDir = filepath.Dir(path)
	return c, nil
}

// Load parses config from bytes. ext is the file extension (e.g. ".json", ".yaml") for format hint; empty = detect from content.
func Load(data []byte, ext string) (*Config, error) {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext == "" && strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		ext = ".json"
	}

	var c Config
	if ext == ".json" {
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) validate() error {
	if c.Parallel < 0 {
		return fmt.Errorf("config: parallel must be >= 0, got %d", c.Parallel)
	}
	for i, b := range c.Bundles {
		hasFiles := b.Manifest != "" && b.Trace != ""
		switch {
		case b.Dir != "" && (b.Manifest != "" || b.Trace != ""):
			return fmt.Errorf("config: bundle %d: set either dir or manifest+trace, not both", i)
		case b.Dir == "" && !hasFiles:
			return fmt.Errorf("config: bundle %d: dir or both manifest and trace are required", i)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Parallel == 0 {
		c.Parallel = DefaultParallel
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// ResolvedBundles returns the configured bundles as verify.Bundle values with
// paths resolved. Unnamed bundles are named after their directory or position.
func (c *Config) ResolvedBundles() []verify.Bundle {
	out := make([]verify.Bundle, 0, len(c.Bundles))
	for i, ref := range c.Bundles {
		var b verify.Bundle
		if ref.Dir != "" {
			b = verify.BundleDir(c.resolve(ref.Dir))
		} else {
			b = verify.Bundle{
				Name:         fmt.Sprintf("bundle-%d", i+1),
				ManifestPath: c.resolve(ref.Manifest),
				TracePath:    c.resolve(ref.Trace),
			}
		}
		if ref.Name != "" {
			b.Name = ref.Name
		}
		out = append(out, b)
	}
	return out
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.baseDir == "" {
		return p
	}
	return filepath.Join(c.baseDir, p)
}
