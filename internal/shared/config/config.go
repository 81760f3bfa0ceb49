// Package config loads project settings from defaults, an optional YAML file
// and DELAY_ environment variables.
package config

// LoggingConfig contains logging-related configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
