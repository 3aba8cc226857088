package harvest

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Validation sentinel errors.
var (
	ErrNoSources      = errors.New("harvest: at least one source is required")
	ErrInvalidSleep   = errors.New("harvest: rate_limit.sleep_seconds must be non-negative")
	ErrInvalidPerPage = errors.New("harvest: openalex.per_page must be between 1 and 200")
	ErrInvalidMaxRecs = errors.New("harvest: gdelt.max_records must be between 1 and 250")
	ErrWindowInverted = errors.New("harvest: window since must not be after until")
)

// Config configures the harvest service. It mirrors the YAML layout:
//
//	sources:
//	  rss: [...]
//	  ngo_rss: [...]
//	  openalex: {query, per_page, mailto}
//	  gdelt: {gkg_search, max_records}
//	rate_limit:
//	  sleep_seconds: 1.0
type Config struct {
	Sources   SourcesConfig   `yaml:"sources"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// SourcesConfig enumerates the configured sources. Any of them may be
// absent; an absent source is simply not harvested.
type SourcesConfig struct {
	RSS      []string       `yaml:"rss"`
	NGORSS   []string       `yaml:"ngo_rss"`
	OpenAlex OpenAlexConfig `yaml:"openalex"`
	GDELT    GDELTConfig    `yaml:"gdelt"`
}

// OpenAlexConfig configures the academic-works source.
type OpenAlexConfig struct {
	Query   string `yaml:"query"`
	PerPage int    `yaml:"per_page"`
	Mailto  string `yaml:"mailto"`
}

// GDELTConfig configures the news-indexing source.
type GDELTConfig struct {
	GKGSearch  string `yaml:"gkg_search"`
	MaxRecords int    `yaml:"max_records"`
}

// RateLimitConfig paces requests to upstream APIs.
type RateLimitConfig struct {
	SleepSeconds float64 `yaml:"sleep_seconds"`
}

func (c *Config) defaults() {
	if c.RateLimit.SleepSeconds == 0 {
		c.RateLimit.SleepSeconds = 1.0
	}
	if c.Sources.OpenAlex.PerPage == 0 {
		c.Sources.OpenAlex.PerPage = 200
	}
	if c.Sources.GDELT.MaxRecords == 0 {
		c.Sources.GDELT.MaxRecords = 250
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if len(c.Sources.RSS) == 0 && len(c.Sources.NGORSS) == 0 &&
		c.Sources.OpenAlex.Query == "" && c.Sources.GDELT.GKGSearch == "" {
		return ErrNoSources
	}
	if c.RateLimit.SleepSeconds < 0 {
		return ErrInvalidSleep
	}
	if c.Sources.OpenAlex.PerPage < 1 || c.Sources.OpenAlex.PerPage > 200 {
		return ErrInvalidPerPage
	}
	if c.Sources.GDELT.MaxRecords < 1 || c.Sources.GDELT.MaxRecords > 250 {
		return ErrInvalidMaxRecs
	}
	return nil
}

// Sleep returns the inter-request pacing as a duration.
func (c *Config) Sleep() time.Duration {
	return time.Duration(c.RateLimit.SleepSeconds * float64(time.Second))
}

// LoadConfig reads and validates a YAML config file; defaults are applied
// before validation.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("harvest: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("harvest: parse config %s: %w", path, err)
	}
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
