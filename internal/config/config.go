// Package config loads gamefeed settings from the environment once at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Configuration validation errors.
var (
	ErrInvalidPort        = errors.New("PORT must be a number between 1 and 65535")
	ErrInvalidHTTPTimeout = errors.New("HTTP_TIMEOUT must be a positive duration")
	ErrInvalidRPS         = errors.New("UPSTREAM_RPS must be a non-negative number")
	ErrInvalidCacheTTL    = errors.New("CACHE_TTL must be a non-negative duration")
	ErrInvalidLogLevel    = errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
)

const (
	DefaultNewsAPIBaseURL  = "https://newsapi.org/v2"
	DefaultUnsplashBaseURL = "https://api.unsplash.com"
	DefaultIGNNewsURL      = "https://www.ign.com/news"
)

// Config is the process-wide configuration. It is built once by Load and
// passed to the client constructors; nothing reads the environment later.
type Config struct {
	NewsAPIKey      string
	UnsplashKey     string
	NewsAPIBaseURL  string
	UnsplashBaseURL string
	IGNNewsURL      string

	Port      string
	LogLevel  string
	LogFormat string

	HTTPTimeout time.Duration
	UpstreamRPS float64

	DB    DBConfig
	Redis RedisConfig

	newsEnabled  bool
	imageEnabled bool
}

// DBConfig holds the optional postgres connection used by the headline archive.
type DBConfig struct {
	Host string
	Port string
	Name string
	User string
	Pass string
}

// Enabled reports whether a database was configured.
func (d DBConfig) Enabled() bool {
	return d.Host != ""
}

// URL returns the lib/pq connection string.
func (d DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", d.User, d.Pass, d.Host, d.Port, d.Name)
}

// RedisConfig holds the optional memoization layer settings. A zero CacheTTL
// keeps the layer off even when an address is set.
type RedisConfig struct {
	Addr        string
	CacheTTL    time.Duration
	CacheImages bool
}

// Enabled reports whether the memoization layer should be built.
func (r RedisConfig) Enabled() bool {
	return r.Addr != "" && r.CacheTTL > 0
}

// NewsEnabled reports whether a news-API credential was present at load time.
func (c *Config) NewsEnabled() bool {
	return c.newsEnabled
}

// ImagesEnabled reports whether an image-API credential was present at load time.
func (c *Config) ImagesEnabled() bool {
	return c.imageEnabled
}

func envOrDefault(key, d string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return d
	}
	return v
}

// Load reads .env files when present, then the process environment.
func Load() (*Config, error) {
	for _, f := range []string{".env", ".env.local"} {
		if _, err := os.Stat(f); err == nil {
			// Overload: later files win, like the frontend's .env.local.
			if err := godotenv.Overload(f); err != nil {
				return nil, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment and validates it.
func FromEnv() (*Config, error) {
	cfg := &Config{
		NewsAPIKey:      envOrDefault("NEWS_API_KEY", ""),
		UnsplashKey:     envOrDefault("UNSPLASH_ACCESS_KEY", ""),
		NewsAPIBaseURL:  strings.TrimRight(envOrDefault("NEWS_API_BASE_URL", DefaultNewsAPIBaseURL), "/"),
		UnsplashBaseURL: strings.TrimRight(envOrDefault("UNSPLASH_BASE_URL", DefaultUnsplashBaseURL), "/"),
		IGNNewsURL:      envOrDefault("IGN_NEWS_URL", DefaultIGNNewsURL),
		Port:            envOrDefault("PORT", "8080"),
		LogLevel:        strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(envOrDefault("LOG_FORMAT", "json")),
		DB: DBConfig{
			Host: envOrDefault("DB_HOST", ""),
			Port: envOrDefault("DB_PORT", "5432"),
			Name: envOrDefault("DB_NAME", "gamefeed"),
			User: envOrDefault("DB_USER", "gamefeed"),
			Pass: envOrDefault("DB_PASS", ""),
		},
	}
	cfg.Redis.Addr = envOrDefault("REDIS_ADDR", "")

	var err error
	if cfg.HTTPTimeout, err = time.ParseDuration(envOrDefault("HTTP_TIMEOUT", "15s")); err != nil || cfg.HTTPTimeout <= 0 {
		return nil, ErrInvalidHTTPTimeout
	}
	if cfg.Redis.CacheTTL, err = time.ParseDuration(envOrDefault("CACHE_TTL", "0s")); err != nil {
		return nil, ErrInvalidCacheTTL
	}
	if cfg.UpstreamRPS, err = strconv.ParseFloat(envOrDefault("UPSTREAM_RPS", "0"), 64); err != nil {
		return nil, ErrInvalidRPS
	}
	if cfg.Redis.CacheImages, err = strconv.ParseBool(envOrDefault("CACHE_IMAGES", "false")); err != nil {
		return nil, fmt.Errorf("CACHE_IMAGES: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg.newsEnabled = cfg.NewsAPIKey != ""
	cfg.imageEnabled = cfg.UnsplashKey != ""
	return cfg, nil
}

// Validate checks value ranges. Missing credentials are not an error: the
// clients degrade to empty results instead.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(c.Port)
	if err != nil || p < 1 || p > 65535 {
		return ErrInvalidPort
	}
	if c.HTTPTimeout <= 0 {
		return ErrInvalidHTTPTimeout
	}
	if c.UpstreamRPS < 0 {
		return ErrInvalidRPS
	}
	if c.Redis.CacheTTL < 0 {
		return ErrInvalidCacheTTL
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}
