package ratelimit

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Source names used as keys under rate_limits.
const (
	SourceHDX      = "hdx"
	SourceMixpanel = "mixpanel"
)

// SourceConfigs maps an upstream source name to its limiter config.
type SourceConfigs struct {
	RateLimits map[string]Config `yaml:"rate_limits" json:"rate_limits"`
}

// LoadSourceConfigs decodes the rate_limits block of a YAML document.
func LoadSourceConfigs(data []byte) (SourceConfigs, error) {
	var cfgs SourceConfigs
	if err := yaml.Unmarshal(data, &cfgs); err != nil {
		return SourceConfigs{}, fmt.Errorf("decode rate limits: %w", err)
	}
	for name, cfg := range cfgs.RateLimits {
		cfgs.RateLimits[name] = applyDefaults(cfg)
	}
	return cfgs, nil
}

// Get returns the config for source. A missing entry yields the defaults
// and ok=false so callers can log that they are running unconfigured.
func (s SourceConfigs) Get(source string) (cfg Config, ok bool) {
	cfg, ok = s.RateLimits[source]
	if !ok {
		return DefaultConfig(), false
	}
	return applyDefaults(cfg), true
}

// Limiter builds the limiter for source.
func (s SourceConfigs) Limiter(source string) Limiter {
	cfg, _ := s.Get(source)
	return New(cfg)
}
