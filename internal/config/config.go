// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"synthetica/internal/core"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server,omitempty"`
	API      APIConfig      `yaml:"api,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// APIConfig holds completion API settings.
type APIConfig struct {
	// BaseURL overrides the production endpoint, mainly for testing.
	BaseURL string `yaml:"base_url,omitempty"`

	// Keys seeds the credential pool. Environment keys are appended.
	Keys []string `yaml:"keys,omitempty"`
}

// DefaultsConfig holds default debate settings applied to fresh participant
// configs.
type DefaultsConfig struct {
	Preset           string  `yaml:"preset"`
	Model            string  `yaml:"model,omitempty"`
	MaxTurns         int     `yaml:"max_turns"`
	Temperature      float64 `yaml:"temperature"`
	MaxTokens        int     `yaml:"max_tokens"`
	TopP             float64 `yaml:"top_p"`
	FrequencyPenalty float64 `yaml:"frequency_penalty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8173,
		},
		Defaults: DefaultsConfig{
			Preset:      "marx_smith",
			MaxTurns:    core.DefaultMaxTurns,
			Temperature: 0.9,
			MaxTokens:   512,
			TopP:        1.0,
		},
	}
}

// ParticipantDefaults builds a participant config from the defaults section.
func (c *Config) ParticipantDefaults() core.AIConfig {
	return core.AIConfig{
		Model:            c.Defaults.Model,
		Temperature:      c.Defaults.Temperature,
		MaxTokens:        c.Defaults.MaxTokens,
		TopP:             c.Defaults.TopP,
		FrequencyPenalty: c.Defaults.FrequencyPenalty,
	}
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".synthetica", "config.yaml")
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from a specific path. A missing file is not
// an error; defaults apply. Environment overrides (including a .env file in
// the working directory) are applied last.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	godotenv.Load()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides updates the configuration from environment variables.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}
	if val := os.Getenv("OPENROUTER_BASE_URL"); val != "" {
		cfg.API.BaseURL = val
	}
	if val := os.Getenv("OPENROUTER_API_KEY"); val != "" {
		cfg.API.Keys = appendKey(cfg.API.Keys, val)
	}
	if val := os.Getenv("OPENROUTER_API_KEYS"); val != "" {
		for _, key := range strings.Split(val, ",") {
			cfg.API.Keys = appendKey(cfg.API.Keys, strings.TrimSpace(key))
		}
	}
	if val := os.Getenv("DEFAULT_MODEL"); val != "" {
		cfg.Defaults.Model = val
	}
	if val := os.Getenv("DEFAULT_MAX_TURNS"); val != "" {
		if turns, err := strconv.Atoi(val); err == nil && turns > 0 {
			cfg.Defaults.MaxTurns = turns
		}
	}
}

func appendKey(keys []string, key string) []string {
	if key == "" {
		return keys
	}
	for _, k := range keys {
		if k == key {
			return keys
		}
	}
	return append(keys, key)
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo saves the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
