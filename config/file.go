package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML-facing shape of an on-disk static config, kept
// separate from Config so FlushInterval can be authored as a duration
// string ("50ms") rather than a raw integer.
type fileConfig struct {
	UpstreamBaseURL string `yaml:"upstream_base_url"`
	UpstreamAPIKey  string `yaml:"upstream_api_key"`
	ModelName       string `yaml:"model_name"`
	MaxBufferChars  int    `yaml:"max_buffer_chars"`
	FlushInterval   string `yaml:"flush_interval"`
}

// FromFile loads a YAML config file and layers environment overrides and
// opts on top of it, in that order: file < environment < opts. A field left
// zero in the file falls back to FromEnv's default for that field.
func FromFile(path string, opts ...Option) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed fileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := FromEnv()
	if parsed.UpstreamBaseURL != "" && os.Getenv("SSEPROXY_UPSTREAM_BASE_URL") == "" {
		cfg.UpstreamBaseURL = parsed.UpstreamBaseURL
	}
	if parsed.UpstreamAPIKey != "" && os.Getenv("SSEPROXY_UPSTREAM_API_KEY") == "" {
		cfg.UpstreamAPIKey = parsed.UpstreamAPIKey
	}
	if parsed.ModelName != "" && os.Getenv("SSEPROXY_MODEL_NAME") == "" {
		cfg.ModelName = parsed.ModelName
	}
	if parsed.MaxBufferChars != 0 {
		cfg.MaxBufferChars = parsed.MaxBufferChars
	}
	if parsed.FlushInterval != "" {
		d, err := time.ParseDuration(parsed.FlushInterval)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse flush_interval %q: %w", parsed.FlushInterval, err)
		}
		cfg.FlushInterval = d
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg, nil
}
