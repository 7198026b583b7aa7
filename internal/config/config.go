// Package config loads and validates the TodoFlow CLI configuration.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 120,
		},
		Chat: ChatConfig{
			HistoryLimit: 15,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
