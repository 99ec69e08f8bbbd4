package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ZaguanLabs/sitelai"
	"github.com/ZaguanLabs/sitelai/cache"
	"github.com/ZaguanLabs/sitelai/provider"
	"github.com/ZaguanLabs/sitelai/sink"
)

// Warnings lists settings that work but are likely to degrade output.
func (c *Config) Warnings() []string {
	var out []string
	if (c.Provider == ProviderGoogle || c.Provider == "") && c.Google.APIKey == "" {
		out = append(out, "google provider without SITELAI_GOOGLE_API_KEY uses the gtx endpoint, which has no markup mode; "+
			"elements with inline markup may lose it and fall back to the source text")
	}
	return out
}

// NewProvider builds the configured provider, wrapped in the rate limit
// and retry decorators when they are enabled. The echo provider is never
// wrapped.
func (c *Config) NewProvider(ctx context.Context) (sitelai.Provider, error) {
	var p sitelai.Provider
	switch c.Provider {
	case ProviderEcho:
		return provider.NewEchoProvider(), nil
	case ProviderOpenAI:
		p = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:      c.OpenAI.APIKey,
			Model:       c.OpenAI.Model,
			Temperature: c.OpenAI.Temperature,
			BaseURL:     c.OpenAI.BaseURL,
		})
	case ProviderGemini:
		gp, err := provider.NewGeminiProvider(ctx, provider.GeminiConfig{
			APIKey:      c.Gemini.APIKey,
			Project:     c.Gemini.Project,
			Location:    c.Gemini.Location,
			Model:       c.Gemini.Model,
			Temperature: c.Gemini.Temperature,
			BaseURL:     c.Gemini.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		p = gp
	case ProviderGoogle, "":
		p = provider.NewGoogleProvider(provider.GoogleConfig{
			APIKey:  c.Google.APIKey,
			BaseURL: c.Google.BaseURL,
			Timeout: c.Google.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", c.Provider)
	}

	if c.RateLimit.RequestsPerMinute > 0 {
		p = sitelai.NewRateLimitedProvider(p, sitelai.RateLimitConfig{
			RequestsPerMinute: c.RateLimit.RequestsPerMinute,
			BurstSize:         c.RateLimit.Burst,
		})
	}
	if c.Retry.MaxRetries > 0 {
		p = sitelai.NewRetryableProvider(p, sitelai.RetryConfig{
			MaxRetries: c.Retry.MaxRetries,
			BaseDelay:  c.Retry.BaseDelay,
			MaxDelay:   c.Retry.MaxDelay,
		})
	}
	return p, nil
}

// NewCache builds the translation cache. It returns a nil cache when
// caching is disabled. The returned close function is never nil.
func (c *Config) NewCache(ctx context.Context, logger *slog.Logger) (sitelai.TranslationCache, func() error, error) {
	noop := func() error { return nil }
	if c.Cache.Disabled {
		return nil, noop, nil
	}

	if c.Cache.RedisURL == "" {
		return cache.NewInMemoryCache(c.Cache.TTL), noop, nil
	}

	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		URL:       c.Cache.RedisURL,
		TTL:       c.Cache.TTL,
		KeyPrefix: c.Cache.RedisPrefix,
		Logger:    logger,
	})
	if err != nil {
		return nil, noop, err
	}
	return rc, rc.Close, nil
}

// NewWriter returns an S3 writer when a bucket is configured and a
// directory writer rooted at dir otherwise.
func (c *Config) NewWriter(ctx context.Context, dir string) (sink.Writer, error) {
	if !c.S3.Enabled() {
		return sink.NewDirWriter(dir), nil
	}

	s3cfg := sink.S3Config{
		Bucket:         c.S3.Bucket,
		Region:         c.S3.Region,
		Prefix:         c.S3.Prefix,
		AccessKeyID:    c.S3.AccessKeyID,
		SecretKey:      c.S3.SecretKey,
		Endpoint:       c.S3.Endpoint,
		ForcePathStyle: c.S3.ForcePathStyle,
		CacheControl:   c.S3.CacheControl,
		UploadTimeout:  c.S3.UploadTimeout,
	}
	client, err := sink.NewS3Client(ctx, s3cfg, nil)
	if err != nil {
		return nil, err
	}
	return sink.NewS3Writer(client, s3cfg)
}

// TranslatorOptions returns the translator options shared by every
// target language.
func (c *Config) TranslatorOptions() []sitelai.TranslatorOption {
	opts := []sitelai.TranslatorOption{
		sitelai.WithSourceLang(c.SourceLang),
		sitelai.WithStyle(sitelai.TranslationStyle(strings.ToLower(c.Style))),
	}
	if c.Context != "" {
		opts = append(opts, sitelai.WithContext(c.Context))
	}
	if len(c.Exclude) > 0 {
		terms := make([]string, 0, len(c.Exclude))
		for _, t := range c.Exclude {
			if t = strings.TrimSpace(t); t != "" {
				terms = append(terms, t)
			}
		}
		opts = append(opts, sitelai.WithExcludedTerms(terms))
	}
	return opts
}

// NewLogger returns a text or JSON logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", s)
	}
	return level, nil
}
