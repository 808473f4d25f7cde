package config

import "time"

// Config represents the application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" yaml:"app"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Menu     MenuConfig     `mapstructure:"menu" yaml:"menu"`
	Intent   IntentConfig   `mapstructure:"intent" yaml:"intent"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Kiosk    KioskConfig    `mapstructure:"kiosk" yaml:"kiosk"`
}

type AppConfig struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Environment string `mapstructure:"environment" yaml:"environment"`
	// IANA zone used to decide which calendar day an order belongs to
	Timezone string `mapstructure:"timezone" yaml:"timezone"`
}

type HTTPConfig struct {
	Port           int      `mapstructure:"port" yaml:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port" yaml:"port"`
	Path    string `mapstructure:"path" yaml:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // json or console
}

type MenuConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// IntentConfig selects and tunes the remote intent classifier
type IntentConfig struct {
	Provider    string        `mapstructure:"provider" yaml:"provider"` // openai, github_models, ollama, anthropic, gemini, azure_openai or none
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Breaker     BreakerConfig `mapstructure:"breaker" yaml:"breaker"`
}

type BreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled" yaml:"enabled"`
	MaxFailures uint32        `mapstructure:"max_failures" yaml:"max_failures"`
	Interval    time.Duration `mapstructure:"interval" yaml:"interval"`
	OpenTimeout time.Duration `mapstructure:"open_timeout" yaml:"open_timeout"`
}

// StoreConfig picks the order counter backend: memory, sqlite, postgres or redis
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
}

type DatabaseConfig struct {
	// For sqlite this is a file path, for postgres a connection string
	URL string `mapstructure:"url" yaml:"url"`
}

type RedisConfig struct {
	URL       string `mapstructure:"url" yaml:"url"`
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix"`
}

type AuthConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Secret   string        `mapstructure:"secret" yaml:"secret"`
	Issuer   string        `mapstructure:"issuer" yaml:"issuer"`
	TokenTTL time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

// KioskConfig holds the interaction timings and speech settings
type KioskConfig struct {
	LandingDelay  time.Duration `mapstructure:"landing_delay" yaml:"landing_delay"`
	AlertDuration time.Duration `mapstructure:"alert_duration" yaml:"alert_duration"`
	SpeechLang    string        `mapstructure:"speech_lang" yaml:"speech_lang"`
	SpeechRate    float64       `mapstructure:"speech_rate" yaml:"speech_rate"`
}

// Location resolves the configured timezone, falling back to Local
func (a AppConfig) Location() *time.Location {
	if a.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
