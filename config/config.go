// Package config holds the proxy's typed runtime configuration: upstream
// connection details, the downstream model name, and answer-buffer tuning
// values. The core's coalescing buffer uses its own fixed thresholds (100
// characters, 50ms) and does not read MaxBufferChars or FlushInterval.
package config

import (
	"net/http"
	"os"
	"time"
)

const (
	defaultUpstreamBaseURL = "https://api.z.ai/api/paas/v4/chat/completions"
	defaultModelName       = "glm-4.6"
	defaultMaxBufferChars  = 100
	defaultFlushInterval   = 50 * time.Millisecond
)

// Config is the proxy's static runtime configuration.
type Config struct {
	UpstreamBaseURL string
	UpstreamAPIKey  string
	ModelName       string
	MaxBufferChars  int
	FlushInterval   time.Duration
	HTTPClient      *http.Client
}

// Option overrides a field of Config after FromEnv has populated defaults.
type Option func(*Config)

// WithBaseURL overrides the upstream base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.UpstreamBaseURL = url }
}

// WithAPIKey overrides the upstream API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.UpstreamAPIKey = key }
}

// WithModelName overrides the downstream model name echoed in emitted frames.
func WithModelName(name string) Option {
	return func(c *Config) { c.ModelName = name }
}

// WithFlushInterval overrides Config.FlushInterval. No component reads this
// field; the core's answer buffer flushes on its own fixed interval.
func WithFlushInterval(d time.Duration) Option {
	return func(c *Config) { c.FlushInterval = d }
}

// WithMaxBufferChars overrides Config.MaxBufferChars. No component reads this
// field; the core's answer buffer flushes at its own fixed size.
func WithMaxBufferChars(n int) Option {
	return func(c *Config) { c.MaxBufferChars = n }
}

// WithHTTPClient overrides the HTTP client used to reach upstream.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) { c.HTTPClient = client }
}

// FromEnv builds a Config from SSEPROXY_* environment variables, falling
// back to built-in defaults, then applying opts.
func FromEnv(opts ...Option) Config {
	cfg := Config{
		UpstreamBaseURL: envOr("SSEPROXY_UPSTREAM_BASE_URL", defaultUpstreamBaseURL),
		UpstreamAPIKey:  os.Getenv("SSEPROXY_UPSTREAM_API_KEY"),
		ModelName:       envOr("SSEPROXY_MODEL_NAME", defaultModelName),
		MaxBufferChars:  defaultMaxBufferChars,
		FlushInterval:   defaultFlushInterval,
		HTTPClient:      &http.Client{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
