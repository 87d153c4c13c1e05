// Package config loads the optional application configuration file. World
// content is compiled in; this file only tunes the session around it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration. Zero values are filled from
// Default before the file is applied, so a partial file is fine.
type Config struct {
	// LogFile is where the session log is written. Empty disables logging.
	LogFile string `yaml:"log_file"`

	// ContentDir overrides the embedded world with Lua files from disk.
	ContentDir string `yaml:"content_dir"`

	// Seed fixes the session RNG. The same seed and command script always
	// produce the same cycle.
	Seed int64 `yaml:"seed"`

	// Plain selects the line-mode front end instead of the TUI.
	Plain bool `yaml:"plain"`

	// Script is a file of commands to replay instead of reading stdin.
	Script string `yaml:"script"`

	// AllowDebug enables the debugmode command surface.
	AllowDebug bool `yaml:"allow_debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogFile: "colony4b.log",
		Seed:    1,
	}
}

// Load reads the configuration file at path over the defaults. An empty
// path means no file and returns the defaults; a path that is missing,
// unreadable, or malformed is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
