package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/adrg/xdg"
	"github.com/matheuskafuri/techpulse/internal/bucket"
	"github.com/matheuskafuri/techpulse/internal/vocab"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type Source struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type HNConfig struct {
	BaseURL  string `yaml:"base_url"`
	SiteURL  string `yaml:"site_url"`
	TopLimit int    `yaml:"top_limit"`
	Timeout  string `yaml:"timeout"`
}

type CorrelationConfig struct {
	Timezone   string `yaml:"timezone"`
	TargetHour *int   `yaml:"target_hour,omitempty"`
}

type RankingConfig struct {
	Gravity float64 `yaml:"gravity"`
}

type Config struct {
	Vocabulary      []string          `yaml:"vocabulary"`
	Bucket          string            `yaml:"bucket"`
	WorkerCount     int               `yaml:"workers"`
	Strict          bool              `yaml:"strict"`
	Corpus          string            `yaml:"corpus"`
	LogLevel        string            `yaml:"log_level"`
	LogFormat       string            `yaml:"log_format"`
	Retention       string            `yaml:"retention"`
	RefreshInterval string            `yaml:"refresh_interval"`
	HN              HNConfig          `yaml:"hn"`
	Feeds           []Source          `yaml:"feeds"`
	Correlation     CorrelationConfig `yaml:"correlation"`
	Ranking         RankingConfig     `yaml:"ranking"`
}

// Vocab builds the configured vocabulary.
func (c *Config) Vocab() (vocab.Vocabulary, error) {
	if len(c.Vocabulary) == 0 {
		return vocab.New(vocab.Default())
	}
	return vocab.New(c.Vocabulary)
}

// Scheme returns the bucket scheme, defaulting to month.
func (c *Config) Scheme() bucket.Scheme {
	s, err := bucket.ParseScheme(c.Bucket)
	if err != nil {
		return bucket.Month
	}
	return s
}

// Workers returns the encoder parallelism, defaulting to the CPU count.
func (c *Config) Workers() int {
	if c.WorkerCount <= 0 {
		return runtime.NumCPU()
	}
	return c.WorkerCount
}

func (c *Config) HNTimeout() time.Duration {
	d, err := time.ParseDuration(c.HN.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// TopLimit returns how many stories a fetch pulls, defaulting to 40.
func (c *Config) TopLimit() int {
	if c.HN.TopLimit <= 0 {
		return 40
	}
	return c.HN.TopLimit
}

// RefreshDuration is how old the store may get before a run fetches new
// stories. "off" or "0" disables the automatic refresh.
func (c *Config) RefreshDuration() time.Duration {
	switch c.RefreshInterval {
	case "off", "never":
		return 0
	}
	d, err := ParseDays(c.RefreshInterval)
	if err != nil {
		return 6 * time.Hour
	}
	if d < 0 {
		return 0
	}
	return d
}

func (c *Config) RetentionDuration() time.Duration {
	if c.Retention == "" {
		return 365 * 24 * time.Hour
	}
	d, err := ParseDays(c.Retention)
	if err != nil {
		return 365 * 24 * time.Hour
	}
	return d
}

// Location returns the correlation report's timezone, defaulting to
// America/New_York and falling back to UTC when tzdata is unavailable.
func (c *Config) Location() *time.Location {
	name := c.Correlation.Timezone
	if name == "" {
		name = "America/New_York"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TargetHour returns the hour-of-day the correlation report measures against.
func (c *Config) TargetHour() int {
	if c.Correlation.TargetHour == nil {
		return 20
	}
	return *c.Correlation.TargetHour
}

// Gravity returns the ranking gravity exponent, defaulting to 1.8.
func (c *Config) Gravity() float64 {
	if c.Ranking.Gravity <= 0 {
		return 1.8
	}
	return c.Ranking.Gravity
}

func (c *Config) EnabledFeeds() []Source {
	var out []Source
	for _, s := range c.Feeds {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// ParseDays parses a duration that may use an "Nd" day suffix.
func ParseDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "techpulse", "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, "techpulse", "techpulse.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path (or the default location), layering it over
// the embedded defaults. On first run the defaults are written to disk.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults still apply.
			_ = writeDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Keys present in the file replace the defaults; lists are replaced whole.
	cfg.Vocabulary = nil
	cfg.Feeds = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if len(cfg.Vocabulary) == 0 {
		cfg.Vocabulary = vocab.Default()
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if _, err := cfg.Vocab(); err != nil {
		return err
	}
	if _, err := bucket.ParseScheme(cfg.Bucket); err != nil {
		return err
	}
	if cfg.Correlation.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Correlation.Timezone); err != nil {
			return fmt.Errorf("correlation: invalid timezone %q: %w", cfg.Correlation.Timezone, err)
		}
	}
	if h := cfg.TargetHour(); h < 0 || h > 23 {
		return fmt.Errorf("correlation: target_hour must be 0-23, got %d", h)
	}
	if cfg.Retention != "" {
		if _, err := ParseDays(cfg.Retention); err != nil {
			return fmt.Errorf("invalid retention %q: %w", cfg.Retention, err)
		}
	}
	if cfg.HN.BaseURL != "" {
		if err := checkURL(cfg.HN.BaseURL); err != nil {
			return fmt.Errorf("hn base_url: %w", err)
		}
	}

	validTypes := map[string]bool{"rss": true, "atom": true}
	for i, s := range cfg.Feeds {
		if s.Name == "" {
			return fmt.Errorf("feed %d: name is required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("feed %q: url is required", s.Name)
		}
		if err := checkURL(s.URL); err != nil {
			return fmt.Errorf("feed %q: %w", s.Name, err)
		}
		if !validTypes[s.Type] {
			return fmt.Errorf("feed %q: unknown type %q (valid: rss, atom)", s.Name, s.Type)
		}
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}
