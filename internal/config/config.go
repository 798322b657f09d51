// Package config loads persistent compiler defaults from a TOML file:
// include search paths, predefined macros and diagnostic toggles that would
// otherwise have to be repeated on every invocation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Config represents the compiler configuration.
type Config struct {
	// Preprocessor settings.
	Preprocessor struct {
		SystemIncludeDirs []string `toml:"system_include_dirs"`
		Defines           []string `toml:"defines"` // "NAME" or "NAME=BODY" entries.
		MaxIncludeDepth   int      `toml:"max_include_depth"`
		MaxCallDepth      int      `toml:"max_call_depth"`
	} `toml:"preprocessor"`

	// Code generation settings.
	Codegen struct {
		TraceRegisters  bool `toml:"trace_registers"`
		TraceStackUsage bool `toml:"trace_stack_usage"`
	} `toml:"codegen"`

	// Diagnostics settings.
	Diagnostics struct {
		LogLevel  string `toml:"log_level"` // debug, info, warn, error.
		LogFormat string `toml:"log_format"`
	} `toml:"diagnostics"`
}

// ---------------------
// ----- Functions -----
// ---------------------

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Preprocessor.SystemIncludeDirs = nil
	cfg.Preprocessor.Defines = nil
	cfg.Preprocessor.MaxIncludeDepth = 32
	cfg.Preprocessor.MaxCallDepth = 256

	cfg.Codegen.TraceRegisters = false
	cfg.Codegen.TraceStackUsage = false

	cfg.Diagnostics.LogLevel = "info"
	cfg.Diagnostics.LogFormat = "text"

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "rucc")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "rucc.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "rucc")

	default:
		return "rucc.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "rucc.toml"
	}
	return filepath.Join(configDir, "config.toml")
}

// Load reads the configuration from path. A missing file is not an error:
// the defaults are returned unchanged, so a fresh installation works
// without any setup.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: creating %s: %w", path, err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

func (c *Config) validate() error {
	if c.Preprocessor.MaxIncludeDepth < 1 {
		return fmt.Errorf("max_include_depth must be at least 1, got %d", c.Preprocessor.MaxIncludeDepth)
	}
	if c.Preprocessor.MaxCallDepth < 1 {
		return fmt.Errorf("max_call_depth must be at least 1, got %d", c.Preprocessor.MaxCallDepth)
	}
	switch c.Diagnostics.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug/info/warn/error, got %q", c.Diagnostics.LogLevel)
	}
	return nil
}
