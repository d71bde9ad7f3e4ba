// Package config loads runtime settings from flags, environment and an
// optional cardscout.yaml file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "CARDSCOUT"

// Config holds all runtime settings.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Scrapers ScrapersConfig `mapstructure:"scrapers"`
	Preview  PreviewConfig  `mapstructure:"preview"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
}

// APIConfig points at the aggregator.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ScrapersConfig controls the scraper directory cache. A zero TTL refetches
// the directory for every stock search.
type ScrapersConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// PreviewConfig sizes the artwork pipeline and its terminal rendering.
type PreviewConfig struct {
	Width   int `mapstructure:"width"`
	Height  int `mapstructure:"height"`
	Columns int `mapstructure:"columns"`
}

// LogConfig selects the log destination.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// UIConfig toggles terminal features.
type UIConfig struct {
	AltScreen bool `mapstructure:"alt_screen"`
	Mouse     bool `mapstructure:"mouse"`
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"base-url":    "api.base_url",
	"timeout":     "api.timeout",
	"scraper-ttl": "scrapers.cache_ttl",
	"columns":     "preview.columns",
	"log-file":    "log.file",
	"log-level":   "log.level",
	"alt-screen":  "ui.alt_screen",
	"mouse":       "ui.mouse",
}

// RegisterFlags declares the flags Load knows how to bind.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "path to a cardscout.yaml config file")
	flags.String("base-url", "", "aggregator base URL (default https://magicmargins.ca)")
	flags.Duration("timeout", 0, "per-request timeout, 0 keeps the HTTP client default")
	flags.Duration("scraper-ttl", 0, "cache the scraper directory for this long, 0 refetches every search")
	flags.Int("columns", 0, "artwork preview width in terminal cells")
	flags.String("log-file", "", "log file path, '-' disables logging")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("alt-screen", true, "use the alternate screen buffer")
	flags.Bool("mouse", true, "enable mouse hover and click")
}

// Load resolves the configuration. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigName("cardscout")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "cardscout"))
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	explicit := ""
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			explicit = strings.TrimSpace(f.Value.String())
		}
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	if explicit != "" {
		v.SetConfigFile(explicit)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://magicmargins.ca")
	v.SetDefault("api.timeout", "0s")
	v.SetDefault("scrapers.cache_ttl", "0s")
	v.SetDefault("preview.width", 976)
	v.SetDefault("preview.height", 1360)
	v.SetDefault("preview.columns", 28)
	v.SetDefault("log.file", "cardscout.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.alt_screen", true)
	v.SetDefault("ui.mouse", true)
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	parsed, err := url.Parse(strings.TrimSpace(c.API.BaseURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.Scrapers.CacheTTL < 0 {
		return fmt.Errorf("scrapers.cache_ttl must not be negative")
	}
	if c.Preview.Width <= 0 || c.Preview.Height <= 0 {
		return fmt.Errorf("preview size must be positive, got %dx%d", c.Preview.Width, c.Preview.Height)
	}
	if c.Preview.Columns < 8 {
		return fmt.Errorf("preview.columns must be at least 8, got %d", c.Preview.Columns)
	}
	return nil
}
