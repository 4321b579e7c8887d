// Package config handles scenetool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Source  SourceConfig  `yaml:"source"`
	Check   CheckConfig   `yaml:"check"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// SourceConfig controls how scene files are located and decoded.
type SourceConfig struct {
	SearchPaths []string `yaml:"search_paths"` // Extra directories for scenes and resources
	Encoding    string   `yaml:"encoding"`     // Charset of scene files
	Cache       bool     `yaml:"cache"`
}

// CheckConfig holds settings for the check command.
type CheckConfig struct {
	ImageExtensions []string `yaml:"image_extensions"` // Tried when a texture file is missing
	FailOnUnset     bool     `yaml:"fail_on_unset"`    // Treat unset references as problems
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
		Source: SourceConfig{
			SearchPaths: nil,
			Encoding:    "utf-8",
			Cache:       true,
		},
		Check: CheckConfig{
			ImageExtensions: []string{".tga", ".png", ".jpg"},
			FailOnUnset:     false,
		},
	}
}
