package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// defaultBaseURL assumes the client is served next to the backend behind
// one origin; override with DISTR_API_BASE_URL or the config file.
const defaultBaseURL = "/api"

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Auth    AuthConfig    `mapstructure:"auth"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds backend connection configuration
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"` // Backend base URL
}

// AuthConfig holds the persisted session credential.
// The token survives restarts of the client; it is cleared on logout and
// whenever the backend rejects it.
type AuthConfig struct {
	Token string `mapstructure:"token"`
	Login string `mapstructure:"login"` // Last login, prefilled on the login form
}

// UIConfig holds UI configuration
type UIConfig struct {
	PageSize int `mapstructure:"page_size"` // Items per page in list views
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: defaultBaseURL,
		},
		UI: UIConfig{
			PageSize: 10,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "distr-is", "distr.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "distr-is", "distr.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "distr-is")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "distr-is")
	}
}

// defaultCachePath returns the default cache directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "distr-is", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "distr-is", "cache")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides (DISTR_API_BASE_URL etc.)
	viper.SetEnvPrefix("DISTR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	viper.Set("api.base_url", cfg.API.BaseURL)
	viper.Set("auth.token", cfg.Auth.Token)
	viper.Set("auth.login", cfg.Auth.Login)
	viper.Set("ui.page_size", cfg.UI.PageSize)
	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	return writeConfig()
}

// SaveToken updates just the persisted session token
func SaveToken(token string) error {
	viper.Set("auth.token", token)
	return writeConfig()
}

// ClearToken removes the persisted session token
func ClearToken() error {
	viper.Set("auth.token", "")
	return writeConfig()
}

func writeConfig() error {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// HasSession returns true if a credential token is persisted
func (c *Config) HasSession() bool {
	return c.Auth.Token != ""
}

// GetCachePath returns the cache directory path
func GetCachePath() string {
	return defaultCachePath()
}
