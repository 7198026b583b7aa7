package config

// Config is the root configuration for the TodoFlow CLI.
type Config struct {
	Server  ServerConfig  `yaml:"server,omitempty"`
	Chat    ChatConfig    `yaml:"chat,omitempty"`
	Cache   CacheConfig   `yaml:"cache,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// ServerConfig points at the TodoFlow backend.
type ServerConfig struct {
	BaseURL        string `yaml:"baseUrl,omitempty"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"` // whole-request timeout, including streaming reads
}

// ChatConfig controls the conversation view.
type ChatConfig struct {
	HistoryLimit int `yaml:"historyLimit,omitempty"` // messages fetched per history refresh
}

// CacheConfig controls the local task cache.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"` // defaults to true
	Path    string `yaml:"path,omitempty"`    // overrides the default cache db location
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
}

// CacheEnabled reports the effective cache switch.
func (c *Config) CacheEnabled() bool {
	if c.Cache.Enabled == nil {
		return true
	}
	return *c.Cache.Enabled
}
