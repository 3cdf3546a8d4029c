// Package setup registers the PharmaGuard MCP server with Claude Desktop.
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
)

// ServerName is the key under which the server is registered in mcpServers
const ServerName = "pharmaguard"

const (
	binaryName    = "mcp-server"
	mcpServersKey = "mcpServers"
)

// MCPServerConfig represents a single MCP server configuration
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// ClaudeDesktopConfig is the Claude Desktop configuration file. Keys other than
// mcpServers are preserved untouched.
type ClaudeDesktopConfig struct {
	MCPServers map[string]MCPServerConfig
	other      map[string]json.RawMessage
}

// Options contains options for registering the server
type Options struct {
	BinaryPath string            // Path to the MCP server binary; searched for when empty
	ConfigFile string            // Optional server configuration file passed as --config
	Env        map[string]string // Environment for the server process, e.g. OPENAI_API_KEY
}

// Status represents the current registration status
type Status struct {
	ConfigPath string   `json:"config_path"`
	Configured bool     `json:"configured"`
	ServerPath string   `json:"server_path,omitempty"`
	EnvKeys    []string `json:"env_keys,omitempty"`
	Issues     []string `json:"issues"`
}

// GetClaudeDesktopConfigPath returns the path to Claude Desktop's config file
func GetClaudeDesktopConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support", "Claude")
	case "linux":
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "Claude")
			break
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "Claude")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		configDir = filepath.Join(appData, "Claude")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return filepath.Join(configDir, "claude_desktop_config.json"), nil
}

// LoadClaudeDesktopConfig loads the configuration. A missing file yields an empty config.
func LoadClaudeDesktopConfig(configPath string) (*ClaudeDesktopConfig, error) {
	config := &ClaudeDesktopConfig{
		MCPServers: make(map[string]MCPServerConfig),
		other:      make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &config.other); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if raw, ok := config.other[mcpServersKey]; ok {
		if err := json.Unmarshal(raw, &config.MCPServers); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", mcpServersKey, err)
		}
		if config.MCPServers == nil {
			config.MCPServers = make(map[string]MCPServerConfig)
		}
		delete(config.other, mcpServersKey)
	}

	return config, nil
}

// SaveClaudeDesktopConfig writes the configuration, creating its directory if needed
func SaveClaudeDesktopConfig(configPath string, config *ClaudeDesktopConfig) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	doc := make(map[string]interface{}, len(config.other)+1)
	for k, v := range config.other {
		doc[k] = v
	}
	doc[mcpServersKey] = config.MCPServers

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Configure adds or updates the pharmaguard entry in the config at configPath
func Configure(configPath string, opts Options) (MCPServerConfig, error) {
	config, err := LoadClaudeDesktopConfig(configPath)
	if err != nil {
		return MCPServerConfig{}, err
	}

	binaryPath := opts.BinaryPath
	if binaryPath == "" {
		binaryPath, err = findBinary()
		if err != nil {
			return MCPServerConfig{}, fmt.Errorf("could not find server binary: %w", err)
		}
	}

	serverConfig := MCPServerConfig{Command: binaryPath}
	if opts.ConfigFile != "" {
		absConfig, err := filepath.Abs(opts.ConfigFile)
		if err != nil {
			return MCPServerConfig{}, fmt.Errorf("failed to resolve config file: %w", err)
		}
		serverConfig.Args = []string{"--config", absConfig}
	}
	if len(opts.Env) > 0 {
		serverConfig.Env = make(map[string]string, len(opts.Env))
		for k, v := range opts.Env {
			serverConfig.Env[k] = v
		}
	}

	config.MCPServers[ServerName] = serverConfig
	if err := SaveClaudeDesktopConfig(configPath, config); err != nil {
		return MCPServerConfig{}, err
	}
	return serverConfig, nil
}

// Remove deletes the pharmaguard entry. It reports whether an entry existed.
func Remove(configPath string) (bool, error) {
	config, err := LoadClaudeDesktopConfig(configPath)
	if err != nil {
		return false, err
	}
	if _, ok := config.MCPServers[ServerName]; !ok {
		return false, nil
	}
	delete(config.MCPServers, ServerName)
	return true, SaveClaudeDesktopConfig(configPath, config)
}

// GetStatus checks whether the server is registered and its binary exists
func GetStatus(configPath string) (*Status, error) {
	status := &Status{
		ConfigPath: configPath,
		Issues:     []string{},
	}

	config, err := LoadClaudeDesktopConfig(configPath)
	if err != nil {
		return nil, err
	}

	serverConfig, ok := config.MCPServers[ServerName]
	if !ok {
		status.Issues = append(status.Issues, "PharmaGuard is not configured in Claude Desktop")
		return status, nil
	}

	status.Configured = true
	status.ServerPath = serverConfig.Command
	for k := range serverConfig.Env {
		status.EnvKeys = append(status.EnvKeys, k)
	}
	sort.Strings(status.EnvKeys)

	info, err := os.Stat(serverConfig.Command)
	switch {
	case os.IsNotExist(err):
		status.Issues = append(status.Issues, fmt.Sprintf("Server binary not found at: %s", serverConfig.Command))
	case err == nil && info.Mode()&0111 == 0:
		status.Issues = append(status.Issues, fmt.Sprintf("Server binary is not executable: %s", serverConfig.Command))
	}

	if _, ok := serverConfig.Env["OPENAI_API_KEY"]; !ok {
		status.Issues = append(status.Issues, "OPENAI_API_KEY not set for the server; explanations will use the offline table")
	}

	return status, nil
}

// findBinary attempts to find the server binary in common locations
func findBinary() (string, error) {
	if path, err := exec.LookPath(binaryName); err == nil {
		return path, nil
	}

	home, _ := os.UserHomeDir()
	locations := []string{
		"./" + binaryName,
		"./build/" + binaryName,
		filepath.Join(home, ".local", "bin", binaryName),
		"/usr/local/bin/" + binaryName,
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			absPath, err := filepath.Abs(loc)
			if err != nil {
				return loc, nil
			}
			return absPath, nil
		}
	}

	return "", fmt.Errorf("binary '%s' not found in common locations", binaryName)
}
