package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values from the config file.
const (
	EnvAPIURL       = "WATCHLOG_API_URL"
	EnvCloudName    = "CLOUDINARY_CLOUD_NAME"
	EnvUploadPreset = "CLOUDINARY_UPLOAD_PRESET"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API     APIConfig     `toml:"api"`
	Session SessionConfig `toml:"session"`
	Upload  UploadConfig  `toml:"upload"`
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
	Import  ImportConfig  `toml:"import"`
}

// APIConfig points at the media tracking REST service.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
}

// SessionConfig contains settings for the local session database.
type SessionConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// UploadConfig contains the external image host settings.
type UploadConfig struct {
	Endpoint     string `toml:"endpoint"`
	CloudName    string `toml:"cloud_name"`
	UploadPreset string `toml:"upload_preset"`
}

// Enabled reports whether file uploads can be attempted.
func (u UploadConfig) Enabled() bool {
	return u.CloudName != "" && u.UploadPreset != ""
}

// LogConfig controls log level and the TUI log file.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// ServerConfig contains settings for the local mock API server.
type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	JWTSecret string `toml:"jwt_secret"`
}

// ImportConfig contains bulk import settings.
type ImportConfig struct {
	RateLimit float64 `toml:"rate_limit"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Fields missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ResolveConfig loads path when it exists, falls back to defaults otherwise, then applies .env and environment overrides.
func ResolveConfig(path, envFile string) (*Config, error) {
	config := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	config.ApplyEnv()
	return config, nil
}

// ApplyEnv overrides config values with any non-empty environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvCloudName); v != "" {
		c.Upload.CloudName = v
	}
	if v := os.Getenv(EnvUploadPreset); v != "" {
		c.Upload.UploadPreset = v
	}
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
