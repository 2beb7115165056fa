// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment
// variables. All values are read once at startup; there is no hot reload.
type Config struct {
	Identity string `validate:"omitempty,email"`
	Secret   string

	AuthBaseURL       string `validate:"required,url"`
	CampaignBaseURL   string `validate:"required,url"`
	CampaignV3BaseURL string `validate:"required,url"`

	RequestTimeout time.Duration
	MaxRetries     int `validate:"gte=0,lte=5"`

	ListenAddr     string `validate:"required"`
	PollInterval   time.Duration
	HealthInterval time.Duration
}

// HasCredentials returns true when both identity and secret are configured.
// The service starts without them, but every upstream operation will fail
// with a configuration error until they are provided.
func (c *Config) HasCredentials() bool {
	return c.Identity != "" && c.Secret != ""
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory. INFLECTION_EMAIL and
// INFLECTION_PASSWORD are optional at startup. Optional variables with
// defaults: INFLECTION_AUTH_BASE_URL, INFLECTION_CAMPAIGN_BASE_URL,
// INFLECTION_CAMPAIGN_V3_BASE_URL, INFLECTION_API_TIMEOUT (10s),
// INFLECTION_MAX_RETRIES (2), INFLECTION_LISTEN_ADDR (127.0.0.1:8000),
// INFLECTION_POLL_INTERVAL (5m), INFLECTION_HEALTH_INTERVAL (1m).
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Identity:          os.Getenv("INFLECTION_EMAIL"),
		Secret:            os.Getenv("INFLECTION_PASSWORD"),
		AuthBaseURL:       "https://auth.inflection.io/api/v1",
		CampaignBaseURL:   "https://campaign.inflection.io/api/v2",
		CampaignV3BaseURL: "https://campaign.inflection.io/api/v3",
		RequestTimeout:    10 * time.Second,
		MaxRetries:        2,
		ListenAddr:        "127.0.0.1:8000",
		PollInterval:      5 * time.Minute,
		HealthInterval:    time.Minute,
	}

	if v, ok := os.LookupEnv("INFLECTION_AUTH_BASE_URL"); ok {
		cfg.AuthBaseURL = v
	}
	if v, ok := os.LookupEnv("INFLECTION_CAMPAIGN_BASE_URL"); ok {
		cfg.CampaignBaseURL = v
	}
	if v, ok := os.LookupEnv("INFLECTION_CAMPAIGN_V3_BASE_URL"); ok {
		cfg.CampaignV3BaseURL = v
	}
	if v, ok := os.LookupEnv("INFLECTION_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}

	var err error
	if cfg.RequestTimeout, err = durationEnv("INFLECTION_API_TIMEOUT", cfg.RequestTimeout); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = durationEnv("INFLECTION_POLL_INTERVAL", cfg.PollInterval); err != nil {
		return nil, err
	}
	if cfg.HealthInterval, err = durationEnv("INFLECTION_HEALTH_INTERVAL", cfg.HealthInterval); err != nil {
		return nil, err
	}

	if v, ok := os.LookupEnv("INFLECTION_MAX_RETRIES"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("INFLECTION_MAX_RETRIES has invalid integer %q: %w", v, err)
		}
		cfg.MaxRetries = parsed
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// durationEnv reads a duration env var, returning the fallback when unset.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	return parsed, nil
}
