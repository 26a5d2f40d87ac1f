package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/tagger/internal/record"
	"github.com/llehouerou/tagger/internal/rename"
	"github.com/llehouerou/tagger/internal/sanitize"
	"github.com/llehouerou/tagger/internal/tags"
)

const appName = "tagger"

type Config struct {
	Rename RenameConfig `koanf:"rename"`
	Tags   TagsConfig   `koanf:"tags"`
	Log    LogConfig    `koanf:"log"`
}

// RenameConfig holds the file naming preferences.
type RenameConfig struct {
	IllegalChars  string `koanf:"illegal_chars"`  // "ascii", "unicode" or "spaces" (default: "ascii")
	Spaces        string `koanf:"spaces"`         // "underscore", "remove" or "keep" (default: "underscore")
	ExtensionCase string `koanf:"extension_case"` // "lower", "upper" or "unchanged" (default: "lower")
	Mask          string `koanf:"mask"`           // rename mask used when none is given
	Root          string `koanf:"root"`           // directory renames never rewrite
}

// TagsConfig holds the tag value preferences.
type TagsConfig struct {
	SplitFields    []string `koanf:"split_fields"`    // fields stored as several values
	SplitDelimiter string   `koanf:"split_delimiter"` // joins them for display (default: " / ")
}

type LogConfig struct {
	Level string `koanf:"level"` // zerolog level name (default: "info")
}

// Load reads the user config then ./config.toml, then every path in
// extra. Later files override earlier ones; missing files are skipped.
func Load(extra ...string) (*Config, error) {
	return loadFiles(append(getConfigPaths(), extra...))
}

func loadFiles(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		path = expandPath(path)
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Rename.Root != "" {
		cfg.Rename.Root = expandPath(cfg.Rename.Root)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/tagger/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// Validate reports every value the settings methods fall back from.
func (c *Config) Validate() error {
	var errs []error
	if _, err := sanitize.ParseIllegalChars(c.Rename.IllegalChars); err != nil {
		errs = append(errs, fmt.Errorf("rename.illegal_chars: %w", err))
	}
	if _, err := sanitize.ParseSpaceMode(c.Rename.Spaces); err != nil {
		errs = append(errs, fmt.Errorf("rename.spaces: %w", err))
	}
	if c.Rename.ExtensionCase != "" {
		if _, err := record.ParseExtCase(c.Rename.ExtensionCase); err != nil {
			errs = append(errs, fmt.Errorf("rename.extension_case: %w", err))
		}
	}
	for _, name := range c.Tags.SplitFields {
		if _, ok := tags.ParseField(name); !ok {
			errs = append(errs, fmt.Errorf("tags.split_fields: unknown field %q", name))
		}
	}
	return errors.Join(errs...)
}

// RenamePolicy returns the sanitize policy for renamed files.
func (c *Config) RenamePolicy() sanitize.Policy {
	// both parsers return their default alongside an error
	illegal, _ := sanitize.ParseIllegalChars(c.Rename.IllegalChars)
	spaces, _ := sanitize.ParseSpaceMode(c.Rename.Spaces)
	return sanitize.Policy{Illegal: illegal, Spaces: spaces}
}

func (c *Config) ExtensionCase() record.ExtCase {
	ec, err := record.ParseExtCase(c.Rename.ExtensionCase)
	if err != nil {
		return record.ExtLower
	}
	return ec
}

// SplitFields returns the configured fields, ignoring unknown names.
func (c *Config) SplitFields() tags.FieldMask {
	var fields []tags.Field
	for _, name := range c.Tags.SplitFields {
		if f, ok := tags.ParseField(name); ok {
			fields = append(fields, f)
		}
	}
	return tags.MaskOf(fields...)
}

func (c *Config) SplitDelimiter() string {
	if c.Tags.SplitDelimiter == "" {
		return tags.DefaultDelimiter
	}
	return c.Tags.SplitDelimiter
}

// RenameMask returns the configured mask or rename.DefaultMask.
func (c *Config) RenameMask() string {
	if strings.TrimSpace(c.Rename.Mask) == "" {
		return rename.DefaultMask
	}
	return c.Rename.Mask
}

// LogLevel returns the configured level name, "info" when unset.
func (c *Config) LogLevel() string {
	if c.Log.Level == "" {
		return "info"
	}
	return c.Log.Level
}

var _ record.Settings = (*Config)(nil)
