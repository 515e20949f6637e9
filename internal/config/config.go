package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

const (
	MailProviderResend = "resend"
	MailProviderSMTP   = "smtp"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN,required=true"`
	RedisURL    string `env:"REDIS_URL,required=true"`

	MailProvider string `env:"MAIL_PROVIDER,default=resend"`
	MailFrom     string `env:"MAIL_FROM,required=true"`
	SenderName   string `env:"SENDER_NAME,default=Visitor Follow-Up"`

	ResendAPIKey string `env:"RESEND_API_KEY"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT,default=587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	// Timezone is the reference location for schedule day/time matching and
	// recurrence math.
	Timezone           string `env:"APP_TIMEZONE,default=UTC"`
	TriggerIntervalSec int    `env:"TRIGGER_INTERVAL_SEC,default=30"`

	APIPort  int    `env:"API_PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.MailProvider)) {
	case MailProviderResend:
		c.MailProvider = MailProviderResend
		if strings.TrimSpace(c.ResendAPIKey) == "" {
			return fmt.Errorf("RESEND_API_KEY is required when MAIL_PROVIDER=resend")
		}
	case MailProviderSMTP:
		c.MailProvider = MailProviderSMTP
		if strings.TrimSpace(c.SMTPHost) == "" {
			return fmt.Errorf("SMTP_HOST is required when MAIL_PROVIDER=smtp")
		}
	default:
		return fmt.Errorf("invalid MAIL_PROVIDER %q, want resend or smtp", c.MailProvider)
	}

	if c.TriggerIntervalSec <= 0 {
		return fmt.Errorf("TRIGGER_INTERVAL_SEC must be positive")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}

	return nil
}

// Location resolves the configured reference timezone. Load has already
// validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TriggerInterval returns the trigger cadence as a duration.
func (c *Config) TriggerInterval() time.Duration {
	return time.Duration(c.TriggerIntervalSec) * time.Second
}
