package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Twilight.Attempts)
	require.Equal(t, 8*time.Second, cfg.Twilight.Timeout)
	require.Equal(t, 60*time.Second, cfg.Twilight.MinInterval)
	require.Equal(t, 30*time.Second, cfg.Twilight.BackoffStep)
	require.Equal(t, 300*time.Second, cfg.Twilight.MaxInterval)
	require.Equal(t, []int{30, 20, 10}, cfg.Schedule.AlertThresholds)
	require.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	require.Equal(t, 350, cfg.LLM.MaxTokens)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
location:
  latitude: 43.3
  longitude: 5.4
  timezone: Europe/Paris
twilight:
  minInterval: 2m
  maxInterval: 10m
story:
  theme: policier
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("LLM_TEMPERATURE", "0.5")

	cfg, err := Load()
	require.NoError(t, err)
	require.InDelta(t, 43.3, cfg.Location.Latitude, 1e-9)
	require.Equal(t, 2*time.Minute, cfg.Twilight.MinInterval)
	require.Equal(t, "policier", cfg.Story.Theme)
	require.Equal(t, "yt-key", cfg.YouTube.APIKey)
	require.Equal(t, "AC123", cfg.SMS.AccountSID)
	require.InDelta(t, 0.5, cfg.LLM.Temperature, 1e-6)

	zone, err := cfg.Location.Zone()
	require.NoError(t, err)
	require.Equal(t, "Europe/Paris", zone.String())
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("twilight: ["), 0o600))
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	require.ErrorContains(t, err, "parse config file")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "latitude", mutate: func(c *Config) { c.Location.Latitude = 91 }, errMsg: "latitude"},
		{name: "attempts", mutate: func(c *Config) { c.Twilight.Attempts = 0 }, errMsg: "twilight.attempts"},
		{name: "max below min", mutate: func(c *Config) { c.Twilight.MaxInterval = time.Second }, errMsg: "maxInterval"},
		{name: "cache addr", mutate: func(c *Config) { c.Twilight.CacheEnabled = true }, errMsg: "cacheAddr"},
		{name: "thresholds", mutate: func(c *Config) { c.Schedule.AlertThresholds = []int{0} }, errMsg: "alertThresholds"},
		{name: "template", mutate: func(c *Config) { c.Story.PromptTemplate = "no theme" }, errMsg: "promptTemplate"},
		{name: "timezone", mutate: func(c *Config) { c.Location.Timezone = "Mars/Olympus" }, errMsg: "timezone"},
		{name: "s3", mutate: func(c *Config) { c.Storage.Audio.S3.Enabled = true }, errMsg: "s3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			require.ErrorContains(t, cfg.Validate(), tc.errMsg)
		})
	}

	require.NoError(t, defaultConfig().Validate())
}
