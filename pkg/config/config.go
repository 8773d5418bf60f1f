package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultBaseURL is the public replay server
	DefaultBaseURL = "https://replay.pokemonshowdown.com/"

	// DefaultFormat is the format fetched when none is given
	DefaultFormat = "gen9vgc2025regibo3"

	// DefaultOutputDir is where replays land when no directory is given
	DefaultOutputDir = "replays"

	// DefaultPageSize is the listing length below which a page is the last one
	DefaultPageSize = 51

	// MaxConcurrency caps the download worker pool
	MaxConcurrency = 16
)

// Config holds all configuration options for the replay fetcher
type Config struct {
	Showdown ShowdownConfig `yaml:"showdown" json:"showdown"`
	Listing  ListingConfig  `yaml:"listing" json:"listing"`
	Download DownloadConfig `yaml:"download" json:"download"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// ShowdownConfig describes the remote replay server
type ShowdownConfig struct {
	BaseURL   string `yaml:"base_url" json:"base_url"`
	Format    string `yaml:"format" json:"format"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// ListingConfig holds search listing settings
type ListingConfig struct {
	PageSize int `yaml:"page_size" json:"page_size"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	OutputDir   string        `yaml:"output_dir" json:"output_dir"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	DelayMin    time.Duration `yaml:"delay_min" json:"delay_min"`
	DelayMax    time.Duration `yaml:"delay_max" json:"delay_max"`
	Concurrency int           `yaml:"concurrency" json:"concurrency"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Listen string `yaml:"listen" json:"listen"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	File       string `yaml:"file" json:"file"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Showdown: ShowdownConfig{
			BaseURL:   DefaultBaseURL,
			Format:    DefaultFormat,
			UserAgent: "replayfetch/1.0",
		},
		Listing: ListingConfig{
			PageSize: DefaultPageSize,
		},
		Download: DownloadConfig{
			OutputDir:   DefaultOutputDir,
			Timeout:     10 * time.Second,
			DelayMin:    0,
			DelayMax:    3 * time.Second,
			Concurrency: 1,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}
	setDuration := func(key string, dst *time.Duration) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}

	setString("REPLAYFETCH_BASE_URL", &c.Showdown.BaseURL)
	setString("REPLAYFETCH_FORMAT", &c.Showdown.Format)
	setString("REPLAYFETCH_USER_AGENT", &c.Showdown.UserAgent)
	setString("REPLAYFETCH_OUTPUT_DIR", &c.Download.OutputDir)
	setDuration("REPLAYFETCH_TIMEOUT", &c.Download.Timeout)
	setDuration("REPLAYFETCH_DELAY_MIN", &c.Download.DelayMin)
	setDuration("REPLAYFETCH_DELAY_MAX", &c.Download.DelayMax)
	setInt("REPLAYFETCH_CONCURRENCY", &c.Download.Concurrency)
	setInt("REPLAYFETCH_PAGE_SIZE", &c.Listing.PageSize)
	setString("REPLAYFETCH_METRICS_LISTEN", &c.Metrics.Listen)
	setString("REPLAYFETCH_LOG_LEVEL", &c.Logging.Level)
	setString("REPLAYFETCH_LOG_FILE", &c.Logging.File)

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	if p := os.Getenv("REPLAYFETCH_CONFIG"); p != "" {
		return p
	}

	home := os.Getenv("HOME")
	locations := []string{
		".replayfetch.yaml",
		".replayfetch.yml",
		filepath.Join(home, ".config", "replayfetch", "config.yaml"),
		filepath.Join(home, ".replayfetch.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. A base URL without a
// trailing slash is fixed up in place.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Showdown.BaseURL)
	switch {
	case c.Showdown.BaseURL == "":
		errs = append(errs, errors.New("base URL is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("invalid base URL: %w", err))
	case u.Scheme != "http" && u.Scheme != "https", u.Host == "":
		errs = append(errs, fmt.Errorf("base URL must be an absolute http(s) URL: %q", c.Showdown.BaseURL))
	default:
		if !strings.HasSuffix(c.Showdown.BaseURL, "/") {
			c.Showdown.BaseURL += "/"
		}
	}

	if strings.TrimSpace(c.Showdown.Format) == "" {
		errs = append(errs, errors.New("format is required"))
	}

	if c.Listing.PageSize < 1 {
		errs = append(errs, errors.New("page size must be positive"))
	}

	if c.Download.OutputDir == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.DelayMin < 0 {
		errs = append(errs, errors.New("minimum delay cannot be negative"))
	}
	if c.Download.DelayMax < c.Download.DelayMin {
		errs = append(errs, errors.New("maximum delay must not be below minimum delay"))
	}
	if c.Download.Concurrency < 1 {
		errs = append(errs, errors.New("concurrency must be positive"))
	}
	if c.Download.Concurrency > MaxConcurrency {
		errs = append(errs, fmt.Errorf("concurrency should not exceed %d", MaxConcurrency))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only flags the user set should be passed; an explicit empty value is kept
// so Validate can reject it.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if format, ok := flags["format"].(string); ok {
		c.Showdown.Format = format
	}
	if output, ok := flags["output"].(string); ok {
		c.Download.OutputDir = output
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".replayfetch.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
