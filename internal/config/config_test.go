package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedEnv = []string{
	configPathEnv, envFileEnv, databaseDSNEnv, redisURLEnv, logLevelEnv, thresholdEnv,
	digestTypeEnv, smtpUserEnv, gmailAddressEnv, smtpPasswordEnv, gmailPasswordEnv,
	recipientEnv, telegramTokenEnv, telegramChatIDEnv,
}

// isolateEnv unsets every variable Load reads and points the .env lookup at an empty dir.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, key := range managedEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	dir := t.TempDir()
	t.Setenv(envFileEnv, filepath.Join(dir, ".env"))
	return dir
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Detection.Threshold)
	assert.Equal(t, 30, cfg.Detection.Weights.FundingKeyword)
	assert.Equal(t, 90*24*time.Hour, cfg.Retention.Window())
	assert.Equal(t, 60*24*time.Hour, cfg.Pipeline.MaxArticleAge())
	assert.Equal(t, "daily", cfg.Pipeline.Digest)
	assert.Equal(t, "file", cfg.Database.Driver)
	assert.Equal(t, []string{"TechCrunch", "Sifted", "VentureBeat", "Crunchbase News"}, cfg.SourceNames())
	assert.Equal(t, 10*time.Second, cfg.Feeds.Timeout)
	assert.Equal(t, 3, cfg.Feeds.Retries)
	assert.Equal(t, "smtp.gmail.com", cfg.Notifications.Email.SMTPServer)
	assert.Equal(t, 587, cfg.Notifications.Email.SMTPPort)
	assert.False(t, cfg.Notifications.Email.Enabled)
	assert.False(t, cfg.Notifications.Telegram.Enabled())
	assert.Equal(t, time.UTC.String(), cfg.Scheduler.Location().String())
}

func TestLoadYAMLOverridesOnlyGivenFields(t *testing.T) {
	dir := isolateEnv(t)
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
logging:
  level: warn
  format: json
database:
  driver: memory
scheduler:
  interval: 6h
  timezone: Europe/London
detection:
  threshold: 60
  weights:
    locationUK: 40
  vocabulary:
    fundingKeywords: ["raises", "bags"]
feeds:
  timeout: 30s
sources:
  - name: Sifted
    url: https://sifted.eu/feed
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 6*time.Hour, cfg.Scheduler.Interval)
	assert.Equal(t, "Europe/London", cfg.Scheduler.Location().String())
	assert.Equal(t, 60, cfg.Detection.Threshold)
	assert.Equal(t, 40, cfg.Detection.Weights.LocationUK)
	assert.Equal(t, 30, cfg.Detection.Weights.FundingKeyword)
	assert.Equal(t, []string{"raises", "bags"}, cfg.Detection.Vocabulary.FundingKeywords)
	assert.NotEmpty(t, cfg.Detection.Vocabulary.UKLocations)
	assert.Equal(t, 30*time.Second, cfg.Feeds.Timeout)
	assert.Equal(t, 3, cfg.Feeds.Retries)
	assert.Equal(t, []string{"Sifted"}, cfg.SourceNames())
}

func TestLoadEnvOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv(thresholdEnv, "70")
	t.Setenv(digestTypeEnv, "WEEKLY")
	t.Setenv(databaseDSNEnv, "postgres://scanner@localhost:5432/funding")
	t.Setenv(gmailAddressEnv, "alerts@example.com")
	t.Setenv(gmailPasswordEnv, "app-password")
	t.Setenv(recipientEnv, "a@example.com, b@example.com")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 70, cfg.Detection.Threshold)
	assert.Equal(t, "weekly", cfg.Pipeline.Digest)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://scanner@localhost:5432/funding", cfg.Database.DSN)
	assert.True(t, cfg.Notifications.Email.Enabled)
	assert.Equal(t, "alerts@example.com", cfg.Notifications.Email.From)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Notifications.Email.To)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := isolateEnv(t)
	envPath := filepath.Join(dir, ".env")
	writeFile(t, envPath, "TELEGRAM_BOT_TOKEN=123:abc\nTELEGRAM_CHAT_ID=-100200\n")
	t.Setenv(envFileEnv, envPath)
	t.Cleanup(func() {
		os.Unsetenv(telegramTokenEnv)
		os.Unsetenv(telegramChatIDEnv)
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Notifications.Telegram.Enabled())
	assert.Equal(t, "-100200", cfg.Notifications.Telegram.ChatID)
}

func TestLoadFailures(t *testing.T) {
	dir := isolateEnv(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "detection: [")
	_, err = Load(bad)
	require.Error(t, err)

	t.Setenv(thresholdEnv, "high")
	_, err = Load("")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"threshold above range", func(c *Config) { c.Detection.Threshold = 101 }, "detection"},
		{"negative weight", func(c *Config) { c.Detection.Weights.FundingStage = -1 }, "detection"},
		{"europe outweighs uk", func(c *Config) { c.Detection.Weights.LocationEuropeMiddleEast = 40 }, "detection"},
		{"empty vocabulary", func(c *Config) { c.Detection.Vocabulary.SeedStage = nil }, "detection.vocabulary"},
		{"zero retention", func(c *Config) { c.Retention.Days = 0 }, "retention.days"},
		{"zero article age", func(c *Config) { c.Pipeline.MaxArticleAgeDays = 0 }, "pipeline.maxArticleAgeDays"},
		{"unknown digest", func(c *Config) { c.Pipeline.Digest = "monthly" }, "pipeline.digest"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }, "database.driver"},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }, "database.dsn"},
		{"file without path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"no sources", func(c *Config) { c.Sources = nil }, "sources"},
		{"source without url", func(c *Config) { c.Sources[1].URL = " " }, "sources[1].url"},
		{"zero feed timeout", func(c *Config) { c.Feeds.Timeout = 0 }, "feeds.timeout"},
		{"zero interval", func(c *Config) { c.Scheduler.Interval = 0 }, "scheduler.interval"},
		{"bad timezone", func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" }, "scheduler.timezone"},
		{"email without credentials", func(c *Config) {
			c.Notifications.Email.Enabled = true
			c.Notifications.Email.To = []string{"a@example.com"}
		}, "notifications.email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidateFillsSourceNames(t *testing.T) {
	cfg := Default()
	cfg.Sources = []SourceConfig{{URL: "https://example.com/feed"}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://example.com/feed", cfg.Sources[0].Name)
}
