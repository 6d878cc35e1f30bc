package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	API      APIConfig      `mapstructure:"api"`
	Session  SessionConfig  `mapstructure:"session"`
	ListView ListViewConfig `mapstructure:"listview"`
	Redis    RedisConfig    `mapstructure:"redis"`
	OTel     OTelConfig     `mapstructure:"otel"`
	MockAPI  MockAPIConfig  `mapstructure:"mockapi"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	Version     string `mapstructure:"version"`
	LogLevel    string `mapstructure:"log_level"`
}

// APIConfig holds the remote Holidaze API endpoints
type APIConfig struct {
	BaseURL     string        `mapstructure:"base_url"` // domain resources (venues, bookings, profiles)
	AuthBaseURL string        `mapstructure:"auth_url"` // identity operations (login, register, api keys)
	APIKey      string        `mapstructure:"api_key"`  // default key, overridden by a stored key
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Session backends
const (
	SessionBackendFile   = "file"
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// SessionConfig holds auth store settings
type SessionConfig struct {
	Backend string `mapstructure:"backend"`
	File    string `mapstructure:"file"`
	Channel string `mapstructure:"channel"` // redis pub/sub channel for change events
	Prefix  string `mapstructure:"prefix"`  // redis key prefix
}

// ListViewConfig holds optimistic list settings
type ListViewConfig struct {
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	ServiceName   string  `mapstructure:"service_name"`
	CollectorAddr string  `mapstructure:"collector_addr"`
	SampleRatio   float64 `mapstructure:"sample_ratio"`
}

// MockAPIConfig holds settings for the local stand-in API server
type MockAPIConfig struct {
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	APIKey    string        `mapstructure:"api_key"`
}

// Addr returns the listen address of the mock API
func (m *MockAPIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

const defaultMockJWTSecret = "holidaze-mock-secret-change-me"

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// A missing .env is fine; environment variables still apply
	_ = v.ReadInConfig()

	return load(v)
}

// LoadWithPath loads configuration from a specific path
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	if err := bindConfig(v, cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// DefaultSessionFile returns the default location of the session file
func DefaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "holidaze", "session.json")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_NAME", "holidaze")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_DEBUG", false)
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("APP_LOG_LEVEL", "warn")

	// Remote API defaults
	v.SetDefault("API_BASE_URL", "https://v2.api.noroff.dev/holidaze")
	v.SetDefault("API_AUTH_URL", "https://v2.api.noroff.dev")
	v.SetDefault("API_KEY", "")
	v.SetDefault("API_TIMEOUT", "15s")

	// Session defaults
	v.SetDefault("SESSION_BACKEND", SessionBackendFile)
	v.SetDefault("SESSION_FILE", DefaultSessionFile())
	v.SetDefault("SESSION_CHANNEL", "holidaze:authchange")
	v.SetDefault("SESSION_PREFIX", "holidaze:")

	// List view defaults
	v.SetDefault("LISTVIEW_SETTLE_DELAY", "250ms")

	// Redis defaults
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 1)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	// OTel defaults
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "holidaze")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)

	// Mock API defaults
	v.SetDefault("MOCKAPI_HOST", "127.0.0.1")
	v.SetDefault("MOCKAPI_PORT", 8089)
	v.SetDefault("MOCKAPI_JWT_SECRET", defaultMockJWTSecret)
	v.SetDefault("MOCKAPI_TOKEN_TTL", "24h")
	v.SetDefault("MOCKAPI_API_KEY", "")
}

func bindConfig(v *viper.Viper, cfg *Config) error {
	// App
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Debug = v.GetBool("APP_DEBUG")
	cfg.App.Version = v.GetString("APP_VERSION")
	cfg.App.LogLevel = v.GetString("APP_LOG_LEVEL")

	// Remote API
	cfg.API.BaseURL = strings.TrimRight(v.GetString("API_BASE_URL"), "/")
	cfg.API.AuthBaseURL = strings.TrimRight(v.GetString("API_AUTH_URL"), "/")
	cfg.API.APIKey = v.GetString("API_KEY")
	cfg.API.Timeout = v.GetDuration("API_TIMEOUT")

	// Session
	cfg.Session.Backend = strings.ToLower(v.GetString("SESSION_BACKEND"))
	cfg.Session.File = v.GetString("SESSION_FILE")
	cfg.Session.Channel = v.GetString("SESSION_CHANNEL")
	cfg.Session.Prefix = v.GetString("SESSION_PREFIX")

	// List view
	cfg.ListView.SettleDelay = v.GetDuration("LISTVIEW_SETTLE_DELAY")

	// Redis
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.MinIdleConns = v.GetInt("REDIS_MIN_IDLE_CONNS")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")

	// OTel
	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")
	cfg.OTel.SampleRatio = v.GetFloat64("OTEL_SAMPLE_RATIO")

	// Mock API
	cfg.MockAPI.Host = v.GetString("MOCKAPI_HOST")
	cfg.MockAPI.Port = v.GetInt("MOCKAPI_PORT")
	cfg.MockAPI.JWTSecret = v.GetString("MOCKAPI_JWT_SECRET")
	cfg.MockAPI.TokenTTL = v.GetDuration("MOCKAPI_TOKEN_TTL")
	cfg.MockAPI.APIKey = v.GetString("MOCKAPI_API_KEY")

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}

	if err := validateBaseURL("API_BASE_URL", c.API.BaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("API_AUTH_URL", c.API.AuthBaseURL); err != nil {
		return err
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("API_TIMEOUT cannot be negative")
	}

	switch c.Session.Backend {
	case SessionBackendFile:
		if c.Session.File == "" {
			return fmt.Errorf("SESSION_FILE is required for the file session backend")
		}
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown session backend: %q", c.Session.Backend)
	}

	if c.ListView.SettleDelay < 0 {
		return fmt.Errorf("LISTVIEW_SETTLE_DELAY cannot be negative")
	}

	if c.MockAPI.Port <= 0 || c.MockAPI.Port > 65535 {
		return fmt.Errorf("invalid mock api port: %d", c.MockAPI.Port)
	}

	// Refuse the default signing secret in production
	if c.IsProduction() && c.MockAPI.JWTSecret == defaultMockJWTSecret {
		return fmt.Errorf("MOCKAPI_JWT_SECRET must be changed in production")
	}

	return nil
}

func validateBaseURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL: %q", key, raw)
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
