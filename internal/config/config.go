package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pharmaguard-server/internal/domain"
)

const envPrefix = "PHARMAGUARD"

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v          *viper.Viper
	configFile string
	config     *domain.Config
}

// NewManager creates a new configuration manager. configFile may be empty, in which
// case config.yaml is searched for in the usual locations.
func NewManager(configFile string) (*Manager, error) {
	m := &Manager{configFile: configFile}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from defaults, the optional file and the environment
func (m *Manager) loadConfig() error {
	v := viper.New()

	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/pharmaguard/")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Deployment inputs that predate the prefixed names
	if err := v.BindEnv("llm.api_key", envPrefix+"_LLM_API_KEY", "OPENAI_API_KEY"); err != nil {
		return fmt.Errorf("error binding llm.api_key: %w", err)
	}
	if err := v.BindEnv("llm.model", envPrefix+"_LLM_MODEL", "OPENAI_MODEL"); err != nil {
		return fmt.Errorf("error binding llm.model: %w", err)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.v = v
	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")

	// Completion endpoint defaults
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 1000)
	v.SetDefault("llm.rate_limit", 5)
	v.SetDefault("llm.burst", 5)

	// Circuit breaker defaults
	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", "60s")
	v.SetDefault("breaker.timeout", "30s")
	v.SetDefault("breaker.min_requests", 5)
	v.SetDefault("breaker.failure_ratio", 0.6)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_items", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")

	// Parser defaults
	v.SetDefault("parser.max_upload_bytes", 5<<20)

	v.SetDefault("fallback.override_file", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// MCP defaults
	v.SetDefault("mcp.server_name", "pharmaguard")
	v.SetDefault("mcp.server_version", "1.0.0")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetLLMConfig returns completion endpoint configuration
func (m *Manager) GetLLMConfig() *domain.LLMConfig {
	return &m.config.LLM
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.LLM.Timeout <= 0 {
		return fmt.Errorf("llm timeout must be positive: %s", config.LLM.Timeout)
	}
	if config.LLM.BaseURL == "" {
		return fmt.Errorf("llm base URL is required")
	}
	if config.LLM.RateLimit < 0 {
		return fmt.Errorf("llm rate limit must not be negative: %v", config.LLM.RateLimit)
	}
	if config.Breaker.FailureRatio <= 0 || config.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker failure ratio must be in (0, 1]: %v", config.Breaker.FailureRatio)
	}

	if config.Cache.Enabled {
		switch strings.ToLower(config.Cache.Backend) {
		case "memory":
		case "redis":
			if config.Cache.RedisURL == "" {
				return fmt.Errorf("Redis URL is required for the redis cache backend")
			}
		default:
			return fmt.Errorf("invalid cache backend: %s", config.Cache.Backend)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("cache ttl must be positive: %s", config.Cache.TTL)
		}
	}

	if config.Parser.MaxUploadBytes <= 0 {
		return fmt.Errorf("parser max upload bytes must be positive: %d", config.Parser.MaxUploadBytes)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.config.Environment)
	return env == "development" || env == "dev" || env == ""
}
