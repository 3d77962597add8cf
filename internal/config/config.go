package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Token storage backends
const (
	TokenStoreFile   = "file"
	TokenStoreSQLite = "sqlite"
)

// Config holds user preferences
type Config struct {
	APIURL         string        `yaml:"api_url" json:"api_url" envconfig:"API_URL"`                         // Backend base URL
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout" envconfig:"REQUEST_TIMEOUT"` // Per-request transport timeout
	TokenStore     string        `yaml:"token_store" json:"token_store" envconfig:"TOKEN_STORE"`             // "file" or "sqlite"
	ConfirmDelete  bool          `yaml:"confirm_delete" json:"confirm_delete" envconfig:"CONFIRM_DELETE"`    // Require confirmation for delete

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level" envconfig:"LOG_LEVEL"`       // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file" envconfig:"LOG_FILE"`          // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console" envconfig:"LOG_CONSOLE"` // Enable console logging
}

// envPrefix namespaces environment overrides, e.g. TASKBOARD_API_URL
const envPrefix = "TASKBOARD"

// Dir returns the directory holding config, token and logs. TASKBOARD_HOME
// overrides the default ~/.taskboard.
func Dir() (string, error) {
	if dir := os.Getenv("TASKBOARD_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskboard"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	logPath := ""
	if dir, err := Dir(); err == nil {
		logPath = filepath.Join(dir, "logs", "taskboard.log")
	}

	return &Config{
		APIURL:         "http://127.0.0.1:8000",
		RequestTimeout: 30 * time.Second,
		TokenStore:     TokenStoreFile,
		ConfirmDelete:  true,
		LogLevel:       "INFO",
		LogFile:        logPath,
		LogConsole:     false,
	}
}

// Path returns the config file location
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads config from <Dir>/config.yaml and applies environment overrides
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the YAML file at path (missing file means defaults) and then
// applies TASKBOARD_* environment overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url must not be empty")
	}
	switch c.TokenStore {
	case TokenStoreFile, TokenStoreSQLite:
	default:
		return fmt.Errorf("unknown token_store %q (want %q or %q)", c.TokenStore, TokenStoreFile, TokenStoreSQLite)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}

// Save saves config to <Dir>/config.yaml
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config as YAML to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
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
