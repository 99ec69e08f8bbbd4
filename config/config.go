// Package config loads sitelai settings from the environment and builds
// the provider, cache, output writer and logger they describe.
//
// Variables are read after an optional .env file has been loaded:
//
//	SITELAI_PROVIDER=openai
//	SITELAI_OPENAI_API_KEY=sk-...
//	SITELAI_REDIS_URL=redis://localhost:6379/0
//	SITELAI_LOG_LEVEL=debug
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every variable name.
const Prefix = "SITELAI_"

// Provider names accepted by SITELAI_PROVIDER.
const (
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderEcho   = "echo"
)

// Config holds every environment setting.
type Config struct {
	Provider   string   `env:"PROVIDER" envDefault:"google"`
	SourceLang string   `env:"SOURCE_LANG" envDefault:"en"`
	Style      string   `env:"STYLE" envDefault:"neutral"`
	Context    string   `env:"CONTEXT"`
	Exclude    []string `env:"EXCLUDE" envSeparator:","`

	Google GoogleConfig `envPrefix:"GOOGLE_"`
	OpenAI OpenAIConfig `envPrefix:"OPENAI_"`
	Gemini GeminiConfig `envPrefix:"GEMINI_"`

	Retry     RetryConfig     `envPrefix:"RETRY_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Cache     CacheConfig
	S3        S3Config  `envPrefix:"S3_"`
	Log       LogConfig `envPrefix:"LOG_"`
}

// GoogleConfig configures Google Translate.
type GoogleConfig struct {
	APIKey  string        `env:"API_KEY"`
	BaseURL string        `env:"BASE_URL"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  `env:"API_KEY"`
	Model       string  `env:"MODEL" envDefault:"gpt-4o-mini"`
	Temperature float32 `env:"TEMPERATURE" envDefault:"0.3"`
	BaseURL     string  `env:"BASE_URL"`
}

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey      string  `env:"API_KEY"`
	Project     string  `env:"PROJECT"`
	Location    string  `env:"LOCATION"`
	Model       string  `env:"MODEL" envDefault:"gemini-2.0-flash"`
	Temperature float32 `env:"TEMPERATURE" envDefault:"0.3"`
	BaseURL     string  `env:"BASE_URL"`
}

// RetryConfig configures retries of retryable provider errors.
// MaxRetries of zero disables retrying.
type RetryConfig struct {
	MaxRetries int           `env:"MAX" envDefault:"3"`
	BaseDelay  time.Duration `env:"BASE_DELAY" envDefault:"1s"`
	MaxDelay   time.Duration `env:"MAX_DELAY" envDefault:"30s"`
}

// RateLimitConfig throttles provider requests. Zero disables throttling.
type RateLimitConfig struct {
	RequestsPerMinute int `env:"RPM" envDefault:"0"`
	Burst             int `env:"BURST"`
}

// CacheConfig selects the translation cache. With RedisURL set the cache
// is shared through Redis; otherwise it lives in memory.
type CacheConfig struct {
	Disabled    bool          `env:"CACHE_DISABLED"`
	TTL         time.Duration `env:"CACHE_TTL" envDefault:"24h"`
	RedisURL    string        `env:"REDIS_URL"`
	RedisPrefix string        `env:"REDIS_PREFIX" envDefault:"sitelai:"`
}

// S3Config sends translated pages to a bucket instead of the site directory.
type S3Config struct {
	Bucket         string        `env:"BUCKET"`
	Region         string        `env:"REGION" envDefault:"us-east-1"`
	Prefix         string        `env:"PREFIX"`
	AccessKeyID    string        `env:"ACCESS_KEY_ID"`
	SecretKey      string        `env:"SECRET_ACCESS_KEY"`
	Endpoint       string        `env:"ENDPOINT"`
	ForcePathStyle bool          `env:"FORCE_PATH_STYLE"`
	CacheControl   string        `env:"CACHE_CONTROL"`
	UploadTimeout  time.Duration `env:"UPLOAD_TIMEOUT"`
}

// Enabled reports whether an output bucket is configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// Load reads the .env files (missing files are ignored) and then the
// process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	return Parse(env.Options{})
}

// Parse reads the configuration with the given env options. Tests set
// opts.Environment instead of touching the process environment.
func Parse(opts env.Options) (*Config, error) {
	opts.Prefix = Prefix
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that cannot be expressed as struct tags.
func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case ProviderGoogle, ProviderEcho:
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("%sOPENAI_API_KEY is required for the openai provider", Prefix)
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" && c.Gemini.Project == "" {
			return fmt.Errorf("%sGEMINI_API_KEY or %sGEMINI_PROJECT is required for the gemini provider", Prefix, Prefix)
		}
	default:
		return fmt.Errorf("unknown provider %q (valid: google, openai, gemini, echo)", c.Provider)
	}

	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("%sRETRY_MAX must not be negative", Prefix)
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("%sRATE_LIMIT_RPM must not be negative", Prefix)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (valid: text, json)", c.Log.Format)
	}
	return nil
}
