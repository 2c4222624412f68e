package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// EnvPrefix is prepended to environment overrides, e.g. ICU_INTERVALS_API_KEY
const EnvPrefix = "ICU"

// Config represents the application configuration
type Config struct {
	Intervals IntervalsConfig `json:"intervals" mapstructure:"intervals"`
	Cache     CacheConfig     `json:"cache" mapstructure:"cache"`
	Server    ServerConfig    `json:"server" mapstructure:"server"`
	Database  DatabaseConfig  `json:"database" mapstructure:"database"`
	Log       LogConfig       `json:"log" mapstructure:"log"`
}

// IntervalsConfig holds intervals.icu credentials. Either an API key or an
// OAuth client is required.
type IntervalsConfig struct {
	AthleteID    string `json:"athlete_id" mapstructure:"athlete_id"`
	APIKey       string `json:"api_key" mapstructure:"api_key"`
	ClientID     string `json:"client_id" mapstructure:"client_id"`
	ClientSecret string `json:"client_secret" mapstructure:"client_secret"`
	BaseURL      string `json:"base_url" mapstructure:"base_url"`
	CallbackPort int    `json:"callback_port" mapstructure:"callback_port"`
}

// CacheConfig controls how long fetched data is reused
type CacheConfig struct {
	ProfileTTLMinutes int `json:"profile_ttl_minutes" mapstructure:"profile_ttl_minutes"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

// DatabaseConfig holds the SQLite location; empty means ~/.icu-workouts/data.db
type DatabaseConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// LogConfig holds log file rotation settings
type LogConfig struct {
	File       string `json:"file" mapstructure:"file"`
	MaxSizeMB  int    `json:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" mapstructure:"max_age_days"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

const (
	placeholderAPIKey       = "YOUR_API_KEY"
	placeholderClientID     = "YOUR_CLIENT_ID"
	placeholderClientSecret = "YOUR_CLIENT_SECRET"
)

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Intervals: IntervalsConfig{
			AthleteID:    "0",
			BaseURL:      "https://intervals.icu/api/v1",
			CallbackPort: 8089,
		},
		Cache: CacheConfig{
			ProfileTTLMinutes: 360,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			File:       "icu-workouts.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads the configuration from ~/.icu-workouts/config.json with ICU_*
// environment overrides
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from path. Environment variables override
// file values (intervals.api_key -> ICU_INTERVALS_API_KEY). A missing file is
// ErrNoConfig unless credentials come from the environment.
func LoadFrom(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if v.GetString("intervals.api_key") == "" && v.GetString("intervals.client_id") == "" {
			return nil, ErrNoConfig
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// newViper registers every key with its default so env overrides are seen by Unmarshal
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("intervals.athlete_id", d.Intervals.AthleteID)
	v.SetDefault("intervals.api_key", d.Intervals.APIKey)
	v.SetDefault("intervals.client_id", d.Intervals.ClientID)
	v.SetDefault("intervals.client_secret", d.Intervals.ClientSecret)
	v.SetDefault("intervals.base_url", d.Intervals.BaseURL)
	v.SetDefault("intervals.callback_port", d.Intervals.CallbackPort)
	v.SetDefault("cache.profile_ttl_minutes", d.Cache.ProfileTTLMinutes)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	return v
}

// Save writes the configuration to ~/.icu-workouts/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the configuration as indented JSON
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return CreateExampleAt(path)
}

// CreateExampleAt writes an example config to path unless one already exists
func CreateExampleAt(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	example := DefaultConfig()
	example.Intervals.APIKey = placeholderAPIKey
	return SaveTo(path, &example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	hasKey := c.Intervals.APIKey != "" && c.Intervals.APIKey != placeholderAPIKey
	hasClient := c.Intervals.ClientID != "" && c.Intervals.ClientID != placeholderClientID

	if !hasKey && !hasClient {
		return errors.New("intervals.api_key is required - get it from https://intervals.icu/settings (Developer Settings)")
	}
	if !hasKey && (c.Intervals.ClientSecret == "" || c.Intervals.ClientSecret == placeholderClientSecret) {
		return errors.New("intervals.client_secret is required when using intervals.client_id")
	}
	if c.Intervals.AthleteID == "" {
		return errors.New("intervals.athlete_id is required (use \"0\" for the key owner)")
	}

	if c.Cache.ProfileTTLMinutes < 0 {
		return fmt.Errorf("cache.profile_ttl_minutes must not be negative, got %d", c.Cache.ProfileTTLMinutes)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be positive, got %d", c.Log.MaxSizeMB)
	}

	return nil
}

// UsesAPIKey reports whether requests authenticate with a personal API key
func (c *Config) UsesAPIKey() bool {
	return c.Intervals.APIKey != "" && c.Intervals.APIKey != placeholderAPIKey
}

// ProfileTTL is how long a fetched athlete profile is reused
func (c *Config) ProfileTTL() time.Duration {
	return time.Duration(c.Cache.ProfileTTLMinutes) * time.Minute
}

// Writer returns a size-rotated log file. Relative paths live in the config directory.
func (l LogConfig) Writer() (io.WriteCloser, error) {
	path := l.File
	if !filepath.IsAbs(path) {
		dir, err := GetConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAge:     l.MaxAgeDays,
		Compress:   true,
	}, nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".icu-workouts"), nil
}
