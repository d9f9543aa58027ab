package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override settings.
const EnvPrefix = "TREEPURGE"

// DefaultCloudflareBaseURL is the Cloudflare v4 API endpoint.
const DefaultCloudflareBaseURL = "https://api.cloudflare.com/client/v4"

// Config is the full treepurge configuration.
type Config struct {
	Cloudflare    CloudflareConfig    `mapstructure:"cloudflare" json:"cloudflare"`
	Site          SiteConfig          `mapstructure:"site" json:"site"`
	ContentServer ContentServerConfig `mapstructure:"contentserver" json:"contentserver"`
	Purge         PurgeConfig         `mapstructure:"purge" json:"purge"`
	Planner       PlannerConfig       `mapstructure:"planner" json:"planner"`
	Log           LogConfig           `mapstructure:"log" json:"log"`
}

// CloudflareConfig holds the zone and API credentials.
type CloudflareConfig struct {
	ZoneID   string `mapstructure:"zone_id" json:"zone_id"`
	APIToken string `mapstructure:"api_token" json:"api_token"`
	APIEmail string `mapstructure:"api_email" json:"api_email"`
	APIKey   string `mapstructure:"api_key" json:"api_key"`
	BaseURL  string `mapstructure:"base_url" json:"base_url"`
}

// SiteConfig describes the public site whose pages are cached.
type SiteConfig struct {
	// BaseURL is prefixed to canonical page URLs when purging
	BaseURL string `mapstructure:"base_url" json:"base_url"`
}

// ContentServerConfig locates the content tree source.
type ContentServerConfig struct {
	URL        string   `mapstructure:"url" json:"url"`
	MimeTypes  []string `mapstructure:"mime_types" json:"mime_types"`
	Dimensions []string `mapstructure:"dimensions" json:"dimensions"`
}

// PurgeConfig tunes the purge client.
type PurgeConfig struct {
	BatchSize   int           `mapstructure:"batch_size" json:"batch_size"`
	Concurrency int           `mapstructure:"concurrency" json:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
}

// PlannerConfig selects planner options by name.
type PlannerConfig struct {
	RootDetection   string `mapstructure:"root_detection" json:"root_detection"`
	DescendantScope string `mapstructure:"descendant_scope" json:"descendant_scope"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// NewViper returns a viper instance with treepurge defaults and environment
// binding. When configFile is empty the file at paths.Config is used if it
// exists.
func NewViper(paths *Paths, configFile string) *viper.Viper {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigFile(paths.Config)
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// every key needs a default so AutomaticEnv applies during Unmarshal
	v.SetDefault("cloudflare.zone_id", "")
	v.SetDefault("cloudflare.api_token", "")
	v.SetDefault("cloudflare.api_email", "")
	v.SetDefault("cloudflare.api_key", "")
	v.SetDefault("cloudflare.base_url", DefaultCloudflareBaseURL)
	v.SetDefault("site.base_url", "")
	v.SetDefault("contentserver.url", "")
	v.SetDefault("contentserver.mime_types", []string{})
	v.SetDefault("contentserver.dimensions", []string{})
	v.SetDefault("purge.batch_size", 30)
	v.SetDefault("purge.concurrency", 4)
	v.SetDefault("purge.timeout", 30*time.Second)
	v.SetDefault("planner.root_detection", "slug")
	v.SetDefault("planner.descendant_scope", "node")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	return v
}

// Load reads the configuration. A missing default config file is not an
// error; a missing explicit configFile is.
func Load(paths *Paths, configFile string) (*Config, error) {
	return Decode(NewViper(paths, configFile), configFile != "")
}

// Decode reads the config file into v (if any) and unmarshals the result.
func Decode(v *viper.Viper, requireFile bool) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if requireFile || !missing {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Purge.BatchSize < 1 {
		return fmt.Errorf("purge.batch_size must be at least 1, got %d", c.Purge.BatchSize)
	}
	if c.Purge.Concurrency < 1 {
		return fmt.Errorf("purge.concurrency must be at least 1, got %d", c.Purge.Concurrency)
	}
	if c.Site.BaseURL != "" {
		if _, err := url.Parse(c.Site.BaseURL); err != nil {
			return fmt.Errorf("invalid site.base_url: %w", err)
		}
	}
	return nil
}

// Credentials is the capability object consulted before any purge.
type Credentials struct {
	available bool
	reason    string
}

// Available returns true if a purge may be submitted.
func (c Credentials) Available() bool {
	return c.available
}

// Reason explains why credentials are unavailable (empty when available).
func (c Credentials) Reason() string {
	return c.reason
}

// Credentials evaluates whether the configuration permits purging: a zone ID
// and either an API token or an email and key pair must be set, and the site
// must not be served from localhost.
func (c *Config) Credentials() Credentials {
	cf := c.Cloudflare
	switch {
	case cf.ZoneID == "":
		return Credentials{reason: "cloudflare.zone_id is not set"}
	case cf.APIToken == "" && (cf.APIEmail == "" || cf.APIKey == ""):
		return Credentials{reason: "no cloudflare.api_token or cloudflare.api_email/api_key pair is set"}
	case isLocalhost(c.Site.BaseURL):
		return Credentials{reason: "site.base_url points at localhost"}
	}
	return Credentials{available: true}
}

func isLocalhost(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
