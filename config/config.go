package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ubq-audit/tally/internal/constants"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Org           string   `yaml:"org,omitempty"`
	BotAccounts   []string `yaml:"bot_accounts,omitempty"`
	ExcludeRepos  []string `yaml:"exclude_repos,omitempty"`
	DefaultSince  string   `yaml:"default_since,omitempty"`
	OutputDir     string   `yaml:"output_dir,omitempty"`
	DefaultFormat string   `yaml:"default_format,omitempty"`
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".tally"
	}
	return filepath.Join(configDir, "tally")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".tally.yaml"
}

// ConfigFileExists returns true if the config file exists on disk
func ConfigFileExists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Load loads the configuration from disk.
// It first loads the global config from XDG config directory, then merges
// any local .tally.yaml config on top (local values take precedence).
func Load() (*Config, error) {
	cfg := DefaultConfig()

	globalPath := ConfigPath()
	if _, err := os.Stat(globalPath); err == nil {
		data, err := os.ReadFile(globalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read global config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse global config file: %w", err)
		}
	}

	localPath := LocalConfigPath()
	if _, err := os.Stat(localPath); err == nil {
		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local config file: %w", err)
		}

		var localCfg Config
		if err := yaml.Unmarshal(data, &localCfg); err != nil {
			return nil, fmt.Errorf("failed to parse local config file: %w", err)
		}

		cfg = mergeConfig(cfg, &localCfg)
	}

	if cfg.Org == "" {
		cfg.Org = constants.DefaultOrg
	}
	if len(cfg.BotAccounts) == 0 {
		cfg.BotAccounts = []string{constants.DefaultBotLogin}
	}
	if cfg.DefaultSince == "" {
		cfg.DefaultSince = constants.DefaultSince
	}
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "csv"
	}

	return cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := &Config{}

	if local.Org != "" {
		result.Org = local.Org
	} else {
		result.Org = global.Org
	}

	if local.DefaultSince != "" {
		result.DefaultSince = local.DefaultSince
	} else {
		result.DefaultSince = global.DefaultSince
	}

	if local.OutputDir != "" {
		result.OutputDir = local.OutputDir
	} else {
		result.OutputDir = global.OutputDir
	}

	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	} else {
		result.DefaultFormat = global.DefaultFormat
	}

	if len(local.BotAccounts) > 0 {
		result.BotAccounts = local.BotAccounts
	} else {
		result.BotAccounts = global.BotAccounts
	}

	if len(local.ExcludeRepos) > 0 {
		result.ExcludeRepos = local.ExcludeRepos
	} else {
		result.ExcludeRepos = global.ExcludeRepos
	}

	return result
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	configDir := DefaultConfigDir()

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := ConfigPath()
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetGitHubToken returns the GitHub token from the GITHUB_TOKEN environment variable.
// Following 12-factor app best practices, tokens are only read from the environment.
func (c *Config) GetGitHubToken() string {
	return os.Getenv("GITHUB_TOKEN")
}

// IsRepoExcluded checks if a repo is in the exclude list
func (c *Config) IsRepoExcluded(repoName string) bool {
	for _, excluded := range c.ExcludeRepos {
		if excluded == repoName {
			return true
		}
	}
	return false
}

// DefaultConfig returns a config populated with the default values.
func DefaultConfig() *Config {
	return &Config{
		Org:           constants.DefaultOrg,
		BotAccounts:   []string{constants.DefaultBotLogin},
		DefaultSince:  constants.DefaultSince,
		DefaultFormat: "csv",
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# Tally configuration file
# See: tally config defaults  (for all available options)

# Organization to scan
org: Ubiquity

# Bot accounts whose comments carry payout claims
bot_accounts:
  - ubiquibot

# Earliest issue activity to scan (YYYY-MM-DD or 30d, 6mo, 1y)
default_since: "2023-01-01"

# Skip these repositories (optional)
# exclude_repos:
#   - noisy-repo

# Output format: csv or json
default_format: csv

# Directory for report artifacts (optional, defaults to current directory)
# output_dir: ./reports
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
