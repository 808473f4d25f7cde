package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from path (or the default search paths when path
// is empty), the environment and built-in defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/seniorkiosk")
	}

	v.SetEnvPrefix("KIOSK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Common env vars without the KIOSK_ prefix
	v.BindEnv("http.port", "HTTP_PORT", "KIOSK_HTTP_PORT")
	v.BindEnv("database.url", "DATABASE_URL", "KIOSK_DATABASE_URL")
	v.BindEnv("redis.url", "REDIS_URL", "KIOSK_REDIS_URL")
	v.BindEnv("auth.secret", "JWT_SECRET", "KIOSK_AUTH_SECRET")
	v.BindEnv("intent.api_key", "KIOSK_INTENT_API_KEY")
	v.BindEnv("logging.level", "LOG_LEVEL", "KIOSK_LOGGING_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "seniorkiosk")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.timezone", "Asia/Seoul")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.allowed_origins", []string{"*"})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("intent.provider", "none")
	v.SetDefault("intent.model", "")
	v.SetDefault("intent.timeout", 5*time.Second)
	v.SetDefault("intent.temperature", 0.0)
	v.SetDefault("intent.max_tokens", 256)
	v.SetDefault("intent.breaker.enabled", true)
	v.SetDefault("intent.breaker.max_failures", 3)
	v.SetDefault("intent.breaker.interval", time.Minute)
	v.SetDefault("intent.breaker.open_timeout", 30*time.Second)

	v.SetDefault("store.driver", "memory")
	v.SetDefault("database.url", "kiosk.db")
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.key_prefix", "kiosk:")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.issuer", "seniorkiosk")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("kiosk.landing_delay", 2500*time.Millisecond)
	v.SetDefault("kiosk.alert_duration", 3*time.Second)
	v.SetDefault("kiosk.speech_lang", "ko-KR")
	v.SetDefault("kiosk.speech_rate", 0.9)
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		return fmt.Errorf("auth is enabled but no secret is configured")
	}
	if c.HTTP.Port <= 0 {
		return fmt.Errorf("invalid http port: %d", c.HTTP.Port)
	}
	return nil
}
