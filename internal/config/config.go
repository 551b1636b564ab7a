// Package config loads the ambient project configuration the CLI layer
// needs around the core engine: source roots, file discovery patterns, and
// lint ignore patterns (spec §6 "no environment variables, no CLI" governs
// the engine itself; this package is purely CLI-side plumbing, see
// SPEC_FULL.md §10.1).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level project configuration for the autoexpand CLI.
type Config struct {
	// Standard is an informational Verilog/SystemVerilog flavor hint; the
	// engine itself never branches on it.
	Standard string `json:"standard,omitempty" yaml:"standard,omitempty"`

	// Files is an explicit list of files with optional per-file overrides.
	Files []FileEntry `json:"files,omitempty" yaml:"files,omitempty"`

	// SourceRoots maps a named root (e.g. "rtl", "tb") to its glob patterns.
	SourceRoots map[string]SourceRootConfig `json:"sourceRoots,omitempty" yaml:"sourceRoots,omitempty"`

	Lint     LintConfig     `json:"lint,omitempty" yaml:"lint,omitempty"`
	Analysis AnalysisConfig `json:"analysis,omitempty" yaml:"analysis,omitempty"`
}

// SourceRootConfig is one named group of source files.
type SourceRootConfig struct {
	Files        []string `json:"files" yaml:"files"`
	Exclude      []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	IsThirdParty bool     `json:"isThirdParty,omitempty" yaml:"isThirdParty,omitempty"`
}

// FileEntry is an explicit file entry with optional per-file overrides.
type FileEntry struct {
	File         string `json:"file" yaml:"file"`
	IsThirdParty bool   `json:"isThirdParty,omitempty" yaml:"isThirdParty,omitempty"`
}

// LintConfig configures the CLI's own diagnostics layer
// (internal/lintpolicy), not the core engine.
type LintConfig struct {
	IgnorePatterns   []string `json:"ignorePatterns,omitempty" yaml:"ignorePatterns,omitempty"`
	EnableLintPolicy bool     `json:"enableLintPolicy,omitempty" yaml:"enableLintPolicy,omitempty"`
}

// AnalysisConfig controls the project-wide scan. MaxParallelFiles caps how
// many files are read and parsed at once; 0 means no cap.
type AnalysisConfig struct {
	MaxParallelFiles int `json:"maxParallelFiles,omitempty" yaml:"maxParallelFiles,omitempty"`
}

// DefaultConfig returns a sensible default configuration: scan every .v/.sv
// source under the project root.
func DefaultConfig() *Config {
	return &Config{
		Standard: "sv2017",
		SourceRoots: map[string]SourceRootConfig{
			"default": {
				Files: []string{"**/*.v", "**/*.sv", "**/*.vh", "**/*.svh"},
			},
		},
		Lint: LintConfig{
			IgnorePatterns: []string{},
		},
		Analysis: AnalysisConfig{
			MaxParallelFiles: 0, // auto
		},
	}
}

// Load finds and loads the project configuration file.
// Search order:
//  1. ./autoexpand.json / ./autoexpand.yaml (current working directory)
//  2. ./.autoexpand.json / ./.autoexpand.yaml (current working directory)
//  3. <rootPath>/autoexpand.json, autoexpand.yaml, .autoexpand.json,
//     .autoexpand.yaml (if rootPath is a directory other than cwd)
//  4. ~/.config/autoexpand/config.json
//
// Returns DefaultConfig if no config file is found.
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "autoexpand.json"),
		filepath.Join(cwd, "autoexpand.yaml"),
		filepath.Join(cwd, ".autoexpand.json"),
		filepath.Join(cwd, ".autoexpand.yaml"),
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "autoexpand.json"),
				filepath.Join(rootPath, "autoexpand.yaml"),
				filepath.Join(rootPath, ".autoexpand.json"),
				filepath.Join(rootPath, ".autoexpand.yaml"),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "autoexpand", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file, dispatching on
// extension between JSON and YAML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config file: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config file: %w", err)
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Standard == "" {
		c.Standard = "sv2017"
	}
	if c.SourceRoots == nil {
		if len(c.Files) == 0 {
			c.SourceRoots = map[string]SourceRootConfig{
				"default": {Files: []string{"**/*.v", "**/*.sv", "**/*.vh", "**/*.svh"}},
			}
		} else {
			c.SourceRoots = map[string]SourceRootConfig{}
		}
	}
}

// Save writes the configuration to path as JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// ShouldIgnoreFile checks if a file should be skipped entirely.
func (c *Config) ShouldIgnoreFile(filePath string) bool {
	for _, pattern := range c.Lint.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, filePath); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(filePath)); matched {
			return true
		}
	}
	return false
}

// IsThirdPartyFile reports whether filePath belongs to a source root or
// explicit file entry marked third-party.
func (c *Config) IsThirdPartyFile(filePath string) bool {
	for _, entry := range c.Files {
		if entry.File == "" {
			continue
		}
		if matched, _ := filepath.Match(entry.File, filePath); matched {
			return entry.IsThirdParty
		}
		if matched, _ := filepath.Match(entry.File, filepath.Base(filePath)); matched {
			return entry.IsThirdParty
		}
	}
	for _, root := range c.SourceRoots {
		if !root.IsThirdParty {
			continue
		}
		for _, pattern := range root.Files {
			if MatchGlob(pattern, filePath) {
				return true
			}
		}
	}
	return false
}
