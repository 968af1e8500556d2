// Package config reads and validates the console environment. Validation is
// diagnostic only: a missing backend URL is reported loudly but never aborts
// the process, so the console can still run against the development default
// or the local mock API.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// devAPIURL is the fallback backend outside production builds.
const devAPIURL = "http://localhost:5000"

// Config is the console environment.
type Config struct {
	// APIURL selects the backend. Required; outside production it falls back
	// to the local development backend, in production it stays empty when
	// unset and every request fails with a transport error.
	APIURL string `env:"MICROCROP_API_URL" yaml:"apiUrl"`

	// MapboxToken enables the map-based views of the web dashboard; the
	// console only surfaces a warning when it is absent.
	MapboxToken string `env:"MICROCROP_MAPBOX_TOKEN" yaml:"mapboxToken"`

	// UseMockAPI points the console at an in-process mock backend instead of
	// a real environment.
	UseMockAPI bool `env:"MICROCROP_USE_MOCK_API" yaml:"useMockApi"`

	// Env is the deployment environment name; "production" switches off the
	// development URL fallback.
	Env string `env:"MICROCROP_ENV,default=development" yaml:"env"`
}

// Load builds the configuration: optional .env file, then an optional YAML
// profile, then environment variables, which win.
func Load() (*Config, error) {
	return LoadWithProfile(defaultProfilePath())
}

// LoadWithProfile is Load with an explicit profile path; an empty or missing
// profile is not an error.
func LoadWithProfile(profilePath string) (*Config, error) {
	// Best effort: absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg := &Config{}
	if profilePath != "" {
		if data, err := os.ReadFile(profilePath); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse profile %s: %w", profilePath, err)
			}
		}
	}

	// envdecode would stamp the default over a profile-provided environment,
	// so remember it and put it back unless the variable is really set.
	profileEnv := cfg.Env
	if err := envdecode.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if _, ok := os.LookupEnv("MICROCROP_ENV"); !ok && profileEnv != "" {
		cfg.Env = profileEnv
	}

	if cfg.APIURL == "" && !cfg.IsProduction() {
		cfg.APIURL = devAPIURL
	}
	return cfg, nil
}

func defaultProfilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "microcrop", "config.yaml")
}

// IsProduction reports whether the console targets a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate logs configuration diagnostics. It never fails: required-key
// absence is an error-level message, optional keys and the mock toggle warn.
func (c *Config) Validate(logger zerolog.Logger) {
	if c.APIURL == "" {
		logger.Error().Str("var", "MICROCROP_API_URL").Msg("required configuration missing; API calls will fail until it is set")
	}
	if c.MapboxToken == "" {
		logger.Warn().Str("var", "MICROCROP_MAPBOX_TOKEN").Msg("optional configuration missing; map views are unavailable")
	}
	if c.UseMockAPI {
		logger.Warn().Msg("mock API enabled; all data is fixture data")
	}
}
