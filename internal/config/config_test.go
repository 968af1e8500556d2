package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the console variables for the duration of the test,
// restoring whatever the environment had afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MICROCROP_API_URL",
		"MICROCROP_MAPBOX_TOKEN",
		"MICROCROP_USE_MOCK_API",
		"MICROCROP_ENV",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_DevelopmentFallback(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadWithProfile("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.APIURL)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.UseMockAPI)
}

func TestLoad_ProductionHasNoFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("MICROCROP_ENV", "production")

	cfg, err := LoadWithProfile("")
	require.NoError(t, err)

	assert.Empty(t, cfg.APIURL, "production must not silently target localhost")
	assert.True(t, cfg.IsProduction())
}

func TestLoad_EnvironmentWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("MICROCROP_API_URL", "https://api.microcrop.io")
	t.Setenv("MICROCROP_USE_MOCK_API", "true")

	profile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(profile, []byte("apiUrl: https://staging.microcrop.io\nmapboxToken: pk.profile\n"), 0o600))

	cfg, err := LoadWithProfile(profile)
	require.NoError(t, err)

	assert.Equal(t, "https://api.microcrop.io", cfg.APIURL, "environment beats the profile")
	assert.Equal(t, "pk.profile", cfg.MapboxToken, "profile fills what the environment leaves unset")
	assert.True(t, cfg.UseMockAPI)
}

func TestLoad_ProfileEnvironmentSurvivesDefault(t *testing.T) {
	clearEnv(t)

	profile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(profile, []byte("env: production\n"), 0o600))

	cfg, err := LoadWithProfile(profile)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Empty(t, cfg.APIURL)
}

func TestLoad_MissingProfileIsFine(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadWithProfile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.APIURL)
}

func TestLoad_MalformedProfile(t *testing.T) {
	clearEnv(t)

	profile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(profile, []byte("apiUrl: [unclosed\n"), 0o600))

	_, err := LoadWithProfile(profile)
	require.Error(t, err)
}

func TestValidate_Diagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	cfg := &Config{Env: "production", UseMockAPI: true}
	cfg.Validate(logger)

	out := buf.String()
	assert.Contains(t, out, "MICROCROP_API_URL")
	assert.Contains(t, out, "MICROCROP_MAPBOX_TOKEN")
	assert.Contains(t, out, "mock API enabled")

	buf.Reset()
	cfg = &Config{APIURL: "https://api.microcrop.io", MapboxToken: "pk.live"}
	cfg.Validate(logger)
	assert.Empty(t, buf.String(), "a complete configuration logs nothing")
}
