package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	clienterrors "github.com/jrsteele09/lakehouse-client/internal/errors"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	APIConfig
	HTTPConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	API
	HTTP
}

var _ Config = (*mainConfig)(nil)

// Load reads an optional .env file, then the process environment, and
// returns the sanitized configuration.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !clienterrors.As(err, &pathErr) {
			return nil, clienterrors.Wrapf(err, "load .env file")
		}
	}
	return Parse()
}

// Parse builds the configuration from the process environment only.
func Parse() (Config, error) {
	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, clienterrors.Wrapf(err, "parse config")
	}
	c.Sanitize()
	if err := c.API.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Sanitize applies guardrails to values loaded from the environment.
func (c *mainConfig) Sanitize() {
	c.EnvVars.Sanitize()
	c.API.Sanitize()
	c.HTTP.Sanitize()
}
