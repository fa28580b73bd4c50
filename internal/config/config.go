package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"FundingScanner/internal/detection"
	"FundingScanner/internal/patterns"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "FUNDING_SCANNER_CONFIG"
	envFileEnv      = "FUNDING_SCANNER_ENV_FILE"
	defaultEnvFile  = ".env"

	databaseDSNEnv    = "DATABASE_DSN"
	redisURLEnv       = "REDIS_URL"
	logLevelEnv       = "LOG_LEVEL"
	thresholdEnv      = "RELEVANCE_THRESHOLD"
	digestTypeEnv     = "DIGEST_TYPE"
	smtpUserEnv       = "SMTP_USER"
	gmailAddressEnv   = "GMAIL_ADDRESS"
	smtpPasswordEnv   = "SMTP_PASSWORD"
	gmailPasswordEnv  = "GMAIL_APP_PASSWORD"
	recipientEnv      = "RECIPIENT_EMAIL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// ErrInvalidConfig marks configuration errors. They are fatal at startup.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidConfig }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Cache         CacheConfig        `yaml:"cache"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Detection     DetectionConfig    `yaml:"detection"`
	Retention     RetentionConfig    `yaml:"retention"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Feeds         FeedConfig         `yaml:"feeds"`
	Sources       []SourceConfig     `yaml:"sources"`
	Notifications NotificationConfig `yaml:"notifications"`
	Metrics       MetricsConfig      `yaml:"metrics"`
}

// LoggingConfig selects level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig selects the dedup store engine.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Path   string `yaml:"path"`
}

// CacheConfig enables the Redis seen-article cache when RedisURL is set.
type CacheConfig struct {
	RedisURL string `yaml:"redisUrl"`
}

// SchedulerConfig defines how often the daemon runs.
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// DetectionConfig carries the threshold, weights and pattern vocabulary.
type DetectionConfig struct {
	Threshold  int                 `yaml:"threshold"`
	Weights    detection.Weights   `yaml:"weights"`
	Vocabulary patterns.Vocabulary `yaml:"vocabulary"`
}

// RetentionConfig bounds how long seen-article rows are kept.
type RetentionConfig struct {
	Days int `yaml:"days"`
}

// Window returns the retention as a duration.
func (r RetentionConfig) Window() time.Duration {
	return time.Duration(r.Days) * 24 * time.Hour
}

// PipelineConfig tunes a single run.
type PipelineConfig struct {
	MaxArticleAgeDays int    `yaml:"maxArticleAgeDays"`
	Digest            string `yaml:"digest"`
}

// MaxArticleAge returns the freshness window.
func (p PipelineConfig) MaxArticleAge() time.Duration {
	return time.Duration(p.MaxArticleAgeDays) * 24 * time.Hour
}

// FeedConfig controls HTTP behaviour of feed fetching.
type FeedConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	Retries   int           `yaml:"retries"`
	Backoff   time.Duration `yaml:"backoff"`
	Delay     time.Duration `yaml:"delay"`
	UserAgent string        `yaml:"userAgent"`
}

// SourceConfig describes a single feed with its scanner strategy.
type SourceConfig struct {
	Name    string            `yaml:"name"`
	URL     string            `yaml:"url"`
	Scanner string            `yaml:"scanner"`
	Options map[string]string `yaml:"options"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	SendEmpty bool           `yaml:"sendEmpty"`
	Email     EmailConfig    `yaml:"email"`
	Telegram  TelegramConfig `yaml:"telegram"`
}

// EmailConfig describes the SMTP account used for digests.
type EmailConfig struct {
	Enabled    bool     `yaml:"enabled"`
	SMTPServer string   `yaml:"smtpServer"`
	SMTPPort   int      `yaml:"smtpPort"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	From       string   `yaml:"from"`
	To         []string `yaml:"to"`
	BackupDir  string   `yaml:"backupDir"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIBase  string `yaml:"apiBase"`
}

// Enabled reports whether both token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// MetricsConfig sets the daemon's /metrics listen address; empty disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads the .env file, the YAML configuration (if any) and environment overrides,
// then validates the result. An empty path falls back to FUNDING_SCANNER_CONFIG.
func Load(path string) (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnvFile() error {
	file := os.Getenv(envFileEnv)
	if file == "" {
		file = defaultEnvFile
	}
	err := godotenv.Load(file)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", file, err)
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
		c.Database.Driver = "postgres"
	}
	if v := os.Getenv(redisURLEnv); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(thresholdEnv); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return invalid(thresholdEnv, "not an integer: %q", v)
		}
		c.Detection.Threshold = n
	}
	if v := os.Getenv(digestTypeEnv); v != "" {
		c.Pipeline.Digest = strings.ToLower(strings.TrimSpace(v))
	}

	if v := firstEnv(smtpUserEnv, gmailAddressEnv); v != "" {
		c.Notifications.Email.Username = v
		if c.Notifications.Email.From == "" {
			c.Notifications.Email.From = v
		}
	}
	if v := firstEnv(smtpPasswordEnv, gmailPasswordEnv); v != "" {
		c.Notifications.Email.Password = v
	}
	if v := os.Getenv(recipientEnv); v != "" {
		c.Notifications.Email.To = splitList(v)
		email := c.Notifications.Email
		if email.Username != "" && email.Password != "" {
			c.Notifications.Email.Enabled = true
		}
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks every setting that would otherwise fail mid-run.
func (c *Config) Validate() error {
	det := detection.Config{Threshold: c.Detection.Threshold, Weights: c.Detection.Weights}
	if err := det.Validate(); err != nil {
		return invalid("detection", "%v", err)
	}
	if err := c.Detection.Vocabulary.Validate(); err != nil {
		return invalid("detection.vocabulary", "%v", err)
	}

	if c.Retention.Days <= 0 {
		return invalid("retention.days", "must be positive, got %d", c.Retention.Days)
	}
	if c.Pipeline.MaxArticleAgeDays <= 0 {
		return invalid("pipeline.maxArticleAgeDays", "must be positive, got %d", c.Pipeline.MaxArticleAgeDays)
	}
	switch c.Pipeline.Digest {
	case "daily", "weekly":
	default:
		return invalid("pipeline.digest", "must be daily or weekly, got %q", c.Pipeline.Digest)
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			return invalid("database.dsn", "required for the postgres driver")
		}
	case "file":
		if c.Database.Path == "" {
			return invalid("database.path", "required for the file driver")
		}
	case "memory":
	default:
		return invalid("database.driver", "unknown driver %q", c.Database.Driver)
	}

	if len(c.Sources) == 0 {
		return invalid("sources", "at least one feed is required")
	}
	for i, src := range c.Sources {
		if strings.TrimSpace(src.URL) == "" {
			return invalid(fmt.Sprintf("sources[%d].url", i), "must not be empty")
		}
		if src.Name == "" {
			c.Sources[i].Name = src.URL
		}
	}

	if c.Feeds.Timeout <= 0 {
		return invalid("feeds.timeout", "must be positive")
	}
	if c.Feeds.Retries < 0 {
		return invalid("feeds.retries", "must not be negative")
	}
	if c.Scheduler.Interval <= 0 {
		return invalid("scheduler.interval", "must be positive")
	}

	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return invalid("scheduler.timezone", "unknown timezone %q", tz)
	}
	c.Scheduler.location = loc

	if email := c.Notifications.Email; email.Enabled {
		if email.SMTPServer == "" || email.SMTPPort <= 0 {
			return invalid("notifications.email", "smtp server and port are required")
		}
		if email.Username == "" || email.Password == "" {
			return invalid("notifications.email", "smtp credentials are required")
		}
		if len(email.To) == 0 {
			return invalid("notifications.email.to", "at least one recipient is required")
		}
	}
	return nil
}

// SourceNames lists configured feed names in order.
func (c Config) SourceNames() []string {
	names := make([]string, len(c.Sources))
	for i, s := range c.Sources {
		names[i] = s.Name
	}
	return names
}

// Default returns the built-in configuration.
func Default() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Database:  DatabaseConfig{Driver: "file", Path: "data/funding.json"},
		Scheduler: SchedulerConfig{Interval: 24 * time.Hour, Timezone: defaultTimezone, location: tz},
		Detection: DetectionConfig{
			Threshold:  detection.DefaultThreshold,
			Weights:    detection.DefaultWeights(),
			Vocabulary: patterns.DefaultVocabulary(),
		},
		Retention: RetentionConfig{Days: 90},
		Pipeline:  PipelineConfig{MaxArticleAgeDays: 60, Digest: "daily"},
		Feeds: FeedConfig{
			Timeout:   10 * time.Second,
			Retries:   3,
			Backoff:   time.Second,
			Delay:     2 * time.Second,
			UserAgent: "FundingScanner/1.0 (+https://github.com/fundingscanner)",
		},
		Sources: []SourceConfig{
			{Name: "TechCrunch", URL: "https://techcrunch.com/feed/", Scanner: "rss"},
			{Name: "Sifted", URL: "https://sifted.eu/feed", Scanner: "rss"},
			{Name: "VentureBeat", URL: "https://venturebeat.com/feed/", Scanner: "rss"},
			{Name: "Crunchbase News", URL: "https://news.crunchbase.com/feed/", Scanner: "rss"},
		},
		Notifications: NotificationConfig{
			Email: EmailConfig{
				SMTPServer: "smtp.gmail.com",
				SMTPPort:   587,
				BackupDir:  "data/digests",
			},
			Telegram: TelegramConfig{APIBase: "https://api.telegram.org"},
		},
	}
}
