// Package config loads and validates drawfeed configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Source    SourceConfig    `mapstructure:"source"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Retention RetentionConfig `mapstructure:"retention"`
	DB        DBConfig        `mapstructure:"db"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls the read API server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// SourceConfig selects the origin(s) to scrape. URL, when set, collapses
// the candidate list to that single origin; otherwise Mirrors (or the
// built-in mirror list) is tried in priority order.
type SourceConfig struct {
	URL       string   `mapstructure:"url"`
	Mirrors   []string `mapstructure:"mirrors"`
	UserAgent string   `mapstructure:"user_agent"`
}

// HTTPConfig configures per-fetch timeout and retry behavior.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	MaxRetries     int `mapstructure:"max_retries"`
	BackoffBaseMs  int `mapstructure:"backoff_base_ms"`
}

// ScheduleConfig describes the publisher's draw timetable, used to
// synthesize per-draw times the source omits.
type ScheduleConfig struct {
	FirstDraw       string `mapstructure:"first_draw"`
	IntervalMinutes int    `mapstructure:"interval_minutes"`
}

// IngestConfig governs which extracted records get persisted.
type IngestConfig struct {
	BackfillDays int  `mapstructure:"backfill_days"`
	SendAll      bool `mapstructure:"send_all"`
}

// RetentionConfig bounds how long rows are kept.
type RetentionConfig struct {
	Days int `mapstructure:"days"`
}

// DBConfig controls access to the results database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// TelegramConfig identifies the notification chat.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// SnapshotConfig controls raw HTML archiving.
type SnapshotConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DRAWFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("source.user_agent", "drawfeed-bot/1.0 (+https://github.com/drawfeed/drawfeed)")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_base_ms", 1000)
	v.SetDefault("schedule.first_draw", "10:20")
	v.SetDefault("schedule.interval_minutes", 90)
	v.SetDefault("ingest.backfill_days", 7)
	v.SetDefault("ingest.send_all", false)
	v.SetDefault("retention.days", 60)
	v.SetDefault("db.table", "results")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("snapshot.dir", "/data")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries <= 0 {
		return fmt.Errorf("http.max_retries must be > 0")
	}
	if c.Schedule.IntervalMinutes <= 0 {
		return fmt.Errorf("schedule.interval_minutes must be > 0")
	}
	if c.Ingest.BackfillDays < 0 {
		return fmt.Errorf("ingest.backfill_days must be >= 0")
	}
	if c.Retention.Days < 0 {
		return fmt.Errorf("retention.days must be >= 0")
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set when telegram is enabled")
	}
	if c.Snapshot.Enabled && c.Snapshot.Dir == "" {
		return fmt.Errorf("snapshot.dir must be set when snapshots are enabled")
	}
	return nil
}

// FetchTimeout returns the per-attempt timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// BackoffBase returns the base backoff unit as a duration.
func (c Config) BackoffBase() time.Duration {
	return time.Duration(c.HTTP.BackoffBaseMs) * time.Millisecond
}
