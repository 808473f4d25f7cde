package logging

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"seniorkiosk/internal/config"
)

// MaxFieldLength bounds logged free text such as transcripts
const MaxFieldLength = 500

var sensitiveKey = regexp.MustCompile(`(?i)api[_-]?key|token|password|secret|credential|authorization`)

// New creates a zap logger from the logging configuration
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// Truncate shortens s to MaxFieldLength runes
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxFieldLength {
		return s
	}
	r := []rune(s)
	return string(r[:MaxFieldLength]) + "...[truncated]"
}

// Transcript is the field used for user speech
func Transcript(text string) zap.Field {
	return zap.String("transcript", Truncate(text))
}

// Field builds a string field, redacting values of credential-like keys
func Field(key, value string) zap.Field {
	if sensitiveKey.MatchString(key) {
		return zap.String(key, "[REDACTED]")
	}
	return zap.String(key, Truncate(value))
}
