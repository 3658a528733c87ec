package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UserAgentEntry is one lookup in the user agent file.
type UserAgentEntry struct {
	UserAgent string `yaml:"user_agent"`
	Preprefix string `yaml:"preprefix"`
}

// String renders the User-Agent header value.
func (e UserAgentEntry) String() string {
	if e.Preprefix == "" {
		return e.UserAgent
	}
	return e.Preprefix + ":" + e.UserAgent
}

// LoadUserAgent reads the user agent for lookup from path. The file may hold
// entries keyed by lookup or a single top-level entry.
func LoadUserAgent(path, lookup string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read user agent config: %w", err)
	}

	var keyed map[string]UserAgentEntry
	if err := yaml.Unmarshal(data, &keyed); err == nil {
		if entry, ok := keyed[lookup]; ok && entry.UserAgent != "" {
			return entry.String(), nil
		}
	}

	var single UserAgentEntry
	if err := yaml.Unmarshal(data, &single); err != nil {
		return "", fmt.Errorf("parse user agent config %s: %w", path, err)
	}
	if single.UserAgent == "" {
		return "", fmt.Errorf("user agent config %s: no user_agent for %s", path, lookup)
	}
	return single.String(), nil
}

// Mixpanel holds the analytics credentials.
type Mixpanel struct {
	APISecret string `yaml:"api_secret"`
	URL       string `yaml:"url,omitempty"`
}

// LoadMixpanel reads the Mixpanel credentials file.
func LoadMixpanel(path string) (Mixpanel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mixpanel{}, fmt.Errorf("read mixpanel config: %w", err)
	}

	var mp Mixpanel
	if err := yaml.Unmarshal(data, &mp); err != nil {
		return Mixpanel{}, fmt.Errorf("parse mixpanel config %s: %w", path, err)
	}
	if mp.APISecret == "" {
		return Mixpanel{}, fmt.Errorf("mixpanel config %s: api_secret is required", path)
	}
	return mp, nil
}
