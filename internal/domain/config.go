package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	LLM         LLMConfig      `mapstructure:"llm"`
	Breaker     BreakerConfig  `mapstructure:"breaker"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Parser      ParserConfig   `mapstructure:"parser"`
	Fallback    FallbackConfig `mapstructure:"fallback"`
	Logging     LoggingConfig  `mapstructure:"logging"`
	MCP         MCPConfig      `mapstructure:"mcp"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// LLMConfig represents the chat completion endpoint configuration.
// An empty APIKey disables remote generation.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	RateLimit   float64       `mapstructure:"rate_limit"` // requests per second, 0 disables
	Burst       int           `mapstructure:"burst"`
}

// Enabled reports whether a credential is configured
func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

// BreakerConfig represents the circuit breaker guarding the completion endpoint
type BreakerConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// CacheConfig represents explanation cache configuration
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Backend  string        `mapstructure:"backend"` // "memory", "redis"
	MaxItems int           `mapstructure:"max_items"`
	TTL      time.Duration `mapstructure:"ttl"`
	RedisURL string        `mapstructure:"redis_url"`
}

// ParserConfig represents variant-call upload limits
type ParserConfig struct {
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// FallbackConfig represents the offline explanation table configuration
type FallbackConfig struct {
	OverrideFile string `mapstructure:"override_file"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
}
