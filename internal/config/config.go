// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// ScraperConfig governs discovery and extraction behavior.
type ScraperConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	IndexPath    string `mapstructure:"index_path"`
	PageParam    string `mapstructure:"page_param"`
	MaxPages     int    `mapstructure:"max_pages"`
	DelaySeconds int    `mapstructure:"delay_seconds"`
	Origin       string `mapstructure:"origin"`
	UserAgent    string `mapstructure:"user_agent"`
	// Strategy selects the paragraph extraction algorithm:
	// "registry" or "sibling".
	Strategy string `mapstructure:"strategy"`
}

// HTTPConfig bounds the per-fetch request.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// StorageConfig selects and parameterizes the blob storage provider.
type StorageConfig struct {
	Provider  string `mapstructure:"provider"` // gcs | local | noop
	GCSBucket string `mapstructure:"gcs_bucket"`
	LocalDir  string `mapstructure:"local_dir"`
	Prefix    string `mapstructure:"prefix"`
}

// DatabaseConfig selects the run-history store.
type DatabaseConfig struct {
	Provider string `mapstructure:"provider"` // postgres | noop
	DSN      string `mapstructure:"dsn"`
}

// PublisherConfig selects the stored-record notification channel.
type PublisherConfig struct {
	Provider  string `mapstructure:"provider"` // pubsub | noop
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk and environment. Environment variables use
// the SCRAPER prefix with dots replaced by underscores, e.g.
// SCRAPER_HTTP_TIMEOUT_SECONDS=30.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindSecretKeys(v)

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
	v.SetDefault("scraper.base_url", "https://www.optimnow.io")
	v.SetDefault("scraper.index_path", "/hub/inefficiencies")
	v.SetDefault("scraper.page_param", "page")
	v.SetDefault("scraper.max_pages", 50)
	v.SetDefault("scraper.delay_seconds", 1)
	v.SetDefault("scraper.origin", "optimnow-hub")
	v.SetDefault("scraper.user_agent", "optimnow-hub-scraper/1.0 (+https://github.com/OptimNow/my-scraper)")
	v.SetDefault("scraper.strategy", "registry")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("storage.provider", "noop")
	v.SetDefault("storage.prefix", "records")
	v.SetDefault("database.provider", "noop")
	v.SetDefault("publisher.provider", "noop")
	v.SetDefault("logging.development", true)
}

// bindSecretKeys registers the keys that have no default. Viper only
// unmarshals keys it already knows about, so without an explicit binding
// their SCRAPER_* environment values would be dropped.
func bindSecretKeys(v *viper.Viper) {
	keys := []string{
		"storage.gcs_bucket",
		"storage.local_dir",
		"database.dsn",
		"publisher.project_id",
		"publisher.topic_id",
	}
	for _, key := range keys {
		// BindEnv only errors when called with no arguments.
		_ = v.BindEnv(key)
	}
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	u, err := url.Parse(c.Scraper.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("scraper.base_url must be an absolute URL")
	}
	if !strings.HasPrefix(c.Scraper.IndexPath, "/") {
		return fmt.Errorf("scraper.index_path must start with /")
	}
	if c.Scraper.MaxPages <= 0 {
		return fmt.Errorf("scraper.max_pages must be > 0")
	}
	if c.Scraper.DelaySeconds < 0 {
		return fmt.Errorf("scraper.delay_seconds must be >= 0")
	}
	switch c.Scraper.Strategy {
	case "registry", "sibling":
	default:
		return fmt.Errorf("scraper.strategy must be registry or sibling")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	switch c.Storage.Provider {
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set when storage.provider is gcs")
		}
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir must be set when storage.provider is local")
		}
	case "noop":
	default:
		return fmt.Errorf("unknown storage provider: %s", c.Storage.Provider)
	}
	switch c.Database.Provider {
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn must be set when database.provider is postgres")
		}
	case "noop":
	default:
		return fmt.Errorf("unknown database provider: %s", c.Database.Provider)
	}
	switch c.Publisher.Provider {
	case "pubsub":
		if c.Publisher.ProjectID == "" || c.Publisher.TopicID == "" {
			return fmt.Errorf("publisher.project_id and publisher.topic_id must be set when publisher.provider is pubsub")
		}
	case "noop":
	default:
		return fmt.Errorf("unknown publisher provider: %s", c.Publisher.Provider)
	}
	return nil
}

// BaseURL returns the parsed site root. Validate has already checked it.
func (c Config) BaseURL() (*url.URL, error) {
	u, err := url.Parse(c.Scraper.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return u, nil
}

// FetchTimeout converts the HTTP timeout setting into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// Delay converts the politeness delay setting into a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.Scraper.DelaySeconds) * time.Second
}
