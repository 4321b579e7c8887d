package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/scenefile/pkg/encoding"
)

// EnvConfig names a config file when -config is not given.
const EnvConfig = "SCENETOOL_CONFIG"

var logLevels = []string{"debug", "info", "warn", "error"}

// Load loads configuration with priority: defaults < file < flags,
// then validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := configPath(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// configPath picks the file to load: -config, then $SCENETOOL_CONFIG,
// then the first existing standard location.
func configPath() string {
	if path := ConfigPath(); path != "" {
		return path
	}
	if path := os.Getenv(EnvConfig); path != "" {
		return path
	}
	return findConfigFile()
}

// findConfigFile returns the first of ./scenetool.yaml and
// ConfigDir()/config.yaml that exists.
func findConfigFile() string {
	for _, path := range []string{"scenetool.yaml", DefaultPath()} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "scenetool")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "scenetool")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "scenetool")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "scenetool")
	}
}

// loadFromFile merges a YAML file over cfg. Unknown keys are an error
// and an empty file leaves cfg unchanged.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports the first setting that the tool cannot act on.
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level %q: want one of %s", c.Logging.Level, strings.Join(logLevels, ", "))
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return errors.New("logging rotation limits must not be negative")
	}
	if _, err := encoding.Lookup(c.Source.Encoding); err != nil {
		return fmt.Errorf("source.encoding: %w", err)
	}
	for _, ext := range c.Check.ImageExtensions {
		if len(ext) < 2 || ext[0] != '.' {
			return fmt.Errorf("check.image_extensions: %q must start with a dot", ext)
		}
	}
	return nil
}
