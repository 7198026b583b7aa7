package config

import (
	"fmt"
	"net/url"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Server validation
	if cfg.Server.BaseURL == "" {
		issues = append(issues, ValidationIssue{
			Path:    "server.baseUrl",
			Message: "must not be empty",
		})
	} else if u, err := url.Parse(cfg.Server.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		issues = append(issues, ValidationIssue{
			Path:    "server.baseUrl",
			Message: fmt.Sprintf("must be an http(s) URL, got %q", cfg.Server.BaseURL),
		})
	}

	if cfg.Server.TimeoutSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "server.timeoutSeconds",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Server.TimeoutSeconds),
		})
	}

	// Chat validation
	if cfg.Chat.HistoryLimit < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "chat.historyLimit",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Chat.HistoryLimit),
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	return issues
}
