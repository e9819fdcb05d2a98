// Package config loads bot settings from the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every setting the bot reads at startup.
type Config struct {
	Username string `env:"HANABOT_USERNAME"`
	Password string `env:"HANABOT_PASSWORD"`
	Host     string `env:"HANABOT_HOST" envDefault:"hanab.live"`
	UseTLS   bool   `env:"HANABOT_USE_TLS" envDefault:"true"`
	Policy   string `env:"HANABOT_POLICY" envDefault:"slot1"`

	LogLevel string `env:"HANABOT_LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"HANABOT_LOG_JSON" envDefault:"false"`

	RedisAddr   string `env:"HANABOT_REDIS_ADDR"`
	RedisStream string `env:"HANABOT_REDIS_STREAM" envDefault:"hanabot:actions"`
	DatabaseURL string `env:"HANABOT_DATABASE_URL"`

	SendBuffer int `env:"HANABOT_SEND_BUFFER" envDefault:"64"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && len(files) > 0 {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required fields.
func (c Config) Validate() error {
	var errs []error
	if c.Username == "" {
		errs = append(errs, errors.New("HANABOT_USERNAME is required"))
	}
	if c.Password == "" {
		errs = append(errs, errors.New("HANABOT_PASSWORD is required"))
	}
	if c.Host == "" {
		errs = append(errs, errors.New("HANABOT_HOST is empty"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, fmt.Errorf("HANABOT_SEND_BUFFER must be positive, got %d", c.SendBuffer))
	}
	return errors.Join(errs...)
}

// BaseURL is the HTTP origin of the server.
func (c Config) BaseURL() string {
	if c.UseTLS {
		return "https://" + c.Host
	}
	return "http://" + c.Host
}

// WebsocketURL is the endpoint the bot connects to after logging in.
func (c Config) WebsocketURL() string {
	if c.UseTLS {
		return "wss://" + c.Host + "/ws"
	}
	return "ws://" + c.Host + "/ws"
}

// ConfigureLogger applies the level and formatter settings to log.
func (c Config) ConfigureLogger(log *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)
	if c.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
