package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default resource list: the NASA FITS sample archive files the
// downstream test suite reads from the cache directory.
var defaultSampleURLs = []string{
	"https://fits.gsfc.nasa.gov/samples/WFPC2u5780205r_c0fx.fits",
	"https://fits.gsfc.nasa.gov/samples/FGSf64y0106m_a1f.fits",
	"https://fits.gsfc.nasa.gov/samples/FOCx38i0101t_c0f.fits",
	"https://fits.gsfc.nasa.gov/samples/EUVEngc4151imgx.fits",
}

// Config represents the entire application configuration
type Config struct {
	Cache   CacheConfig   `mapstructure:"cache"`
	Sources SourcesConfig `mapstructure:"sources"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Journal JournalConfig `mapstructure:"journal"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CacheConfig contains cache directory settings
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// SourcesConfig contains the ordered resource list
type SourcesConfig struct {
	URLs []string `mapstructure:"urls"`
}

// HTTPConfig contains HTTP client settings
type HTTPConfig struct {
	Timeout   string `mapstructure:"timeout"`
	UserAgent string `mapstructure:"user_agent"`
}

// JournalConfig contains run history settings
type JournalConfig struct {
	Path string `mapstructure:"path"` // empty disables the journal
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from the specified file path. An empty path
// loads defaults only.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("cache.dir", "samp")
	v.SetDefault("sources.urls", defaultSampleURLs)
	v.SetDefault("http.timeout", "0")
	v.SetDefault("http.user_agent", "fitsfetch")
	v.SetDefault("journal.path", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required")
	}

	if _, err := time.ParseDuration(c.HTTP.Timeout); err != nil {
		return fmt.Errorf("invalid http.timeout: %w", err)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

// GetTimeout returns the HTTP timeout as time.Duration. Zero means the
// transfer blocks until the transport completes or fails.
func (c *HTTPConfig) GetTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}
