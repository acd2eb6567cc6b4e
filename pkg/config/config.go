// Package config loads the process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr     string        `env:"MONOTWEET_ADDR" envDefault:":8080"`
	Debug          bool          `env:"MONOTWEET_DEBUG"`
	ConsumerKey    string        `env:"TWITTER_CONSUMER_KEY" validate:"required"`
	ConsumerSecret string        `env:"TWITTER_CONSUMER_SECRET" validate:"required"`
	CallbackURL    string        `env:"TWITTER_OAUTH_CALLBACK_URI" validate:"required,url"`
	HandshakeTTL   time.Duration `env:"MONOTWEET_HANDSHAKE_TTL" envDefault:"10m"`
	CredentialTTL  time.Duration `env:"MONOTWEET_CREDENTIAL_TTL" envDefault:"1h"`
	// optional YAML file overriding the provider endpoints, see
	// twitter.LoadEndpointsFile
	ProviderConfigPath string `env:"MONOTWEET_PROVIDER_CONFIG_PATH"`
}

// Load reads .env when present, parses the environment and validates the
// result. Missing provider credentials are a startup error.
func Load() (*Config, error) {
	godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	return &cfg, nil
}
