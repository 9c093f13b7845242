// Package config loads portsignal settings from TOML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override secrets and connection strings.
const (
	EnvAPIToken    = "PORTSIGNAL_API_TOKEN"
	EnvAPIBaseURL  = "PORTSIGNAL_API_URL"
	EnvDatabaseURL = "DATABASE_URL"
	EnvRabbitMQURL = "RABBITMQ_URL"
	EnvRedisURL    = "REDIS_URL"
	EnvLogLevel    = "PORTSIGNAL_LOG_LEVEL"
)

// Config holds all portsignal configuration.
type Config struct {
	General    GeneralConfig       `toml:"general"`
	Policy     PolicyConfig        `toml:"policy"`
	Fields     map[string][]string `toml:"fields,omitempty"`
	API        APIConfig           `toml:"api"`
	Postgres   PostgresConfig      `toml:"postgres"`
	Dispatch   DispatchConfig      `toml:"dispatch"`
	Daemon     DaemonConfig        `toml:"daemon"`
	Logging    LoggingConfig       `toml:"logging"`
	Appearance AppearanceConfig    `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Source    string   `toml:"source"` // file, api or postgres
	Snapshots []string `toml:"snapshots,omitempty"`
	UseCache  bool     `toml:"use_cache"`
}

// PolicyConfig holds the analysis constants.
type PolicyConfig struct {
	CompletionFactor   float64 `toml:"completion_factor"`
	ConfidenceLevel    float64 `toml:"confidence_level"`
	HighValueThreshold float64 `toml:"high_value_threshold"`
	ActionCap          int     `toml:"action_cap"`
	SoftCap            int     `toml:"soft_cap"`
	TrendUpper         float64 `toml:"trend_upper"`
	TrendLower         float64 `toml:"trend_lower"`
}

// APIConfig holds the procurement resource API settings.
type APIConfig struct {
	BaseURL     string   `toml:"base_url,omitempty"`
	Token       string   `toml:"token,omitempty"`
	Resources   []string `toml:"resources,omitempty"`
	TimeoutSecs int      `toml:"timeout_secs"`
}

// PostgresConfig holds the direct database source settings.
type PostgresConfig struct {
	URL   string `toml:"url,omitempty"`
	Query string `toml:"query,omitempty"`
}

// DispatchConfig selects and configures the action dispatch sink.
type DispatchConfig struct {
	Sink     string `toml:"sink"`
	AMQPURL  string `toml:"amqp_url,omitempty"`
	Exchange string `toml:"exchange,omitempty"`
	RedisURL string `toml:"redis_url,omitempty"`
	Stream   string `toml:"stream,omitempty"`
}

// DaemonConfig holds background poller settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	IntervalSecs int    `toml:"interval_secs"`
	EventsBuffer int    `toml:"events_buffer"`
}

// LoggingConfig holds logrus settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Source:   "file",
			UseCache: true,
		},
		Policy: PolicyConfig{
			CompletionFactor:   0.85,
			ConfidenceLevel:    78,
			HighValueThreshold: 200000,
			ActionCap:          5,
			SoftCap:            3,
			TrendUpper:         1.05,
			TrendLower:         0.95,
		},
		API: APIConfig{
			Resources:   []string{"statements-of-work", "purchase-orders"},
			TimeoutSecs: 15,
		},
		Dispatch: DispatchConfig{
			Sink: "log",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8797",
			IntervalSecs: 60,
			EventsBuffer: 200,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "portsignal")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "portsignal")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadEnv loads a .env file from the working directory, if present.
// Variables already set in the environment are not overwritten.
func LoadEnv() {
	_ = godotenv.Load()
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config file at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-chosen config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// APIToken returns the resource API token from env var or config, in that order.
func APIToken(cfg Config) string {
	return getEnv(EnvAPIToken, cfg.API.Token)
}

// APIBaseURL returns the resource API base URL from env var or config.
func APIBaseURL(cfg Config) string {
	return getEnv(EnvAPIBaseURL, cfg.API.BaseURL)
}

// DatabaseURL returns the Postgres connection string from env var or config.
func DatabaseURL(cfg Config) string {
	return getEnv(EnvDatabaseURL, cfg.Postgres.URL)
}

// RabbitMQURL returns the AMQP broker URL from env var or config.
func RabbitMQURL(cfg Config) string {
	return getEnv(EnvRabbitMQURL, cfg.Dispatch.AMQPURL)
}

// RedisURL returns the Redis URL from env var or config.
func RedisURL(cfg Config) string {
	return getEnv(EnvRedisURL, cfg.Dispatch.RedisURL)
}

// LogLevel returns the log level from env var or config.
func LogLevel(cfg Config) string {
	return getEnv(EnvLogLevel, cfg.Logging.Level)
}
