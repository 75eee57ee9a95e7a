// Package config loads the shell configuration from EXO_* environment
// variables.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/morikuni/failure/v2"
)

// ErrorCode defines error types for configuration
type ErrorCode string

const (
	// ErrInvalidConfig is returned when a value cannot be parsed or fails validation
	ErrInvalidConfig ErrorCode = "InvalidConfig"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Prefix is prepended to every environment variable name
const Prefix = "EXO"

var validate = validator.New()

// Config holds the shell configuration
type Config struct {
	// Home is loaded when the shell starts without a URL argument
	Home string `envconfig:"HOME" default:"https://example.com" validate:"required,url"`

	// Render names the content transformer: plain, text or markdown
	Render string `envconfig:"RENDER" default:"plain" validate:"oneof=plain text markdown"`

	// Timeout bounds each fetch. Zero disables it.
	Timeout time.Duration `envconfig:"TIMEOUT" default:"0s" validate:"min=0s"`

	// ChannelCapacity is the update channel buffer size
	ChannelCapacity int `envconfig:"CHANNEL_CAPACITY" default:"100" validate:"min=1"`

	// Debug enables debug logging. Any non-empty EXO_DEBUG turns it on, the
	// same rule the log package applies.
	Debug bool `ignored:"true"`
}

// Load reads the configuration from the environment and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, failure.New(ErrInvalidConfig,
			failure.Message("Failed to read configuration from environment"),
			failure.Context{
				"error": err.Error(),
			},
		)
	}
	cfg.Debug = os.Getenv(Prefix+"_DEBUG") != ""
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Home:            "https://example.com",
		Render:          "plain",
		Timeout:         0,
		ChannelCapacity: 100,
	}
}

// Validate checks every field against its constraints. Flags call it again
// after overriding values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return failure.New(ErrInvalidConfig,
			failure.Message("Invalid configuration"),
			failure.Context{
				"error": err.Error(),
			},
		)
	}
	return nil
}
