package app

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config carries all runtime settings. Everything is env-driven with sane
// defaults; secrets (SMTP password, pepper file, signing key file) are never
// compiled in.
type Config struct {
	Issuer string `mapstructure:"AUTHIC_ISSUER"` // Issuer claim for access tokens

	DatabaseFile string `mapstructure:"AUTHIC_DATABASE_FILE"` // Path to SQLite database file
	PepperFile   string `mapstructure:"AUTHIC_PEPPER_FILE"`   // Path to password hashing pepper file
	SigningKey   string `mapstructure:"AUTHIC_SIGNING_KEY"`   // Optional: path to Ed25519 PEM; ephemeral when empty

	CodeLength   int           `mapstructure:"AUTHIC_CODE_LENGTH"`   // One-time code length (default: 6)
	CodeAlphabet string        `mapstructure:"AUTHIC_CODE_ALPHABET"` // numeric or alphanumeric (default: numeric)
	CodeTTL      time.Duration `mapstructure:"AUTHIC_CODE_TTL"`      // Code validity window (default: 10m)

	ResendCooldown time.Duration `mapstructure:"AUTHIC_RESEND_COOLDOWN"`  // Gap between issuances per pair (default: 60s)
	MaxAttempts    int           `mapstructure:"AUTHIC_MAX_ATTEMPTS"`     // Failures before cool-down (default: 3)
	AttemptBlock   time.Duration `mapstructure:"AUTHIC_ATTEMPT_COOLDOWN"` // Cool-down length (default: 15m)

	SMTPHost     string `mapstructure:"AUTHIC_SMTP_HOST"`
	SMTPPort     int    `mapstructure:"AUTHIC_SMTP_PORT"`
	SMTPUsername string `mapstructure:"AUTHIC_SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"AUTHIC_SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"AUTHIC_SMTP_FROM"`

	Env                  string        `mapstructure:"ENV"`                   // dev, staging, prod (default: dev)
	LogLevel             string        `mapstructure:"LOG_LEVEL"`             // debug, info, warn, error (default: info)
	LogFormat            string        `mapstructure:"LOG_FORMAT"`            // json, text (default: json)
	Port                 int           `mapstructure:"PORT"`                  // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration `mapstructure:"SHUTDOWN_GRACE_PERIOD"` // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration `mapstructure:"HOUSEKEEPING_INTERVAL"` // Sweep interval (default: 1h)
}

// LoadConfig reads configuration from the environment, optionally seeded by a
// .env file in the working directory.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("AUTHIC_ISSUER", "authic")
	v.SetDefault("AUTHIC_DATABASE_FILE", "authic.db")
	v.SetDefault("AUTHIC_PEPPER_FILE", "pepper")
	v.SetDefault("AUTHIC_SIGNING_KEY", "")
	v.SetDefault("AUTHIC_CODE_LENGTH", 6)
	v.SetDefault("AUTHIC_CODE_ALPHABET", "numeric")
	v.SetDefault("AUTHIC_CODE_TTL", 10*time.Minute)
	v.SetDefault("AUTHIC_RESEND_COOLDOWN", 60*time.Second)
	v.SetDefault("AUTHIC_MAX_ATTEMPTS", 3)
	v.SetDefault("AUTHIC_ATTEMPT_COOLDOWN", 15*time.Minute)
	v.SetDefault("AUTHIC_SMTP_HOST", "")
	v.SetDefault("AUTHIC_SMTP_PORT", 587)
	v.SetDefault("AUTHIC_SMTP_USERNAME", "")
	v.SetDefault("AUTHIC_SMTP_PASSWORD", "")
	v.SetDefault("AUTHIC_SMTP_FROM", "no-reply@authic.local")
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PORT", 8080)
	v.SetDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second)
	v.SetDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour)

	// A missing .env file is fine; the environment still applies.
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
