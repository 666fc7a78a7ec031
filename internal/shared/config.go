package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Player  PlayerConfig  `toml:"player"`
	Home    HomeConfig    `toml:"home"`
	Log     LogConfig     `toml:"log"`
	Dev     DevConfig     `toml:"dev"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	AuthScheme     string `toml:"auth_scheme"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// StorageConfig selects where the credential token is persisted.
type StorageConfig struct {
	Driver       string `toml:"driver"`
	TokenPath    string `toml:"token_path"`
	DatabasePath string `toml:"database_path"`
}

// PlayerConfig contains playback and progress reporting settings.
type PlayerConfig struct {
	ReportInterval    int     `toml:"report_interval"`
	CatchUpBuckets    bool    `toml:"catch_up_buckets"`
	ControlsTimeoutMS int     `toml:"controls_timeout_ms"`
	DefaultDuration   float64 `toml:"default_duration"`
	Volume            float64 `toml:"volume"`
}

// HomeConfig tunes the concurrent home page loader.
type HomeConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DevConfig contains settings for the local fake backend.
type DevConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Timeout returns the configured HTTP timeout.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ControlsTimeout returns the player controls inactivity timeout.
func (c PlayerConfig) ControlsTimeout() time.Duration {
	if c.ControlsTimeoutMS <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.ControlsTimeoutMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
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

// ApplyEnv overrides config values from STREAMZ_* environment variables.
//
// A .env file in the working directory is loaded first when present; variables already set in the environment win.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("STREAMZ_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("STREAMZ_AUTH_SCHEME"); v != "" {
		c.API.AuthScheme = v
	}
	if v := os.Getenv("STREAMZ_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("STREAMZ_TOKEN_PATH"); v != "" {
		c.Storage.TokenPath = v
	}
	if v := os.Getenv("STREAMZ_DATABASE_PATH"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("STREAMZ_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("STREAMZ_DEV_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Dev.Port = port
		}
	}
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
