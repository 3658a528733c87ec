package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mkoziy/hdxinfo/internal/ratelimit"
)

const (
	// UserAgentLookup selects this tool's entry in the user agent file.
	UserAgentLookup = "hdx-analysis-scripts"

	// DefaultOutputDir is used when --output_dir is not given.
	DefaultOutputDir = "output"

	envPrefix = "HDXINFO"
)

// Config is everything a run needs. It is built once in main and passed
// down explicitly.
type Config struct {
	OutputDir string

	HDXSiteURL string
	UserAgent  string
	PageSize   int

	MixpanelURL       string
	MixpanelAPISecret string
	LookbackYears     int

	RateLimits ratelimit.SourceConfigs

	LedgerDSN      string
	LedgerDebug    bool
	PushgatewayURL string
	LogLevel       string
}

// Paths are the fixed configuration file locations.
type Paths struct {
	UserAgentFile string
	MixpanelFile  string
	ProjectFile   string
}

// DefaultPaths resolves the configuration files against the user's home.
func DefaultPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve home directory: %w", err)
	}
	return Paths{
		UserAgentFile: filepath.Join(home, ".useragents.yml"),
		MixpanelFile:  filepath.Join(home, ".mixpanel.yml"),
		ProjectFile:   filepath.Join("config", "project_configuration.yml"),
	}, nil
}

// Window returns the download lookback window ending at now.
func (c Config) Window(now time.Time) (from, to time.Time) {
	return now.AddDate(-c.LookbackYears, 0, 0), now
}

// Load reads all configuration files. outputDir comes from the command line.
func Load(paths Paths, outputDir string) (Config, error) {
	cfg := Config{OutputDir: outputDir}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if err := loadProject(paths.ProjectFile, &cfg); err != nil {
		return Config{}, err
	}

	ua, err := LoadUserAgent(paths.UserAgentFile, UserAgentLookup)
	if err != nil {
		return Config{}, err
	}
	cfg.UserAgent = ua

	mp, err := LoadMixpanel(paths.MixpanelFile)
	if err != nil {
		return Config{}, err
	}
	cfg.MixpanelAPISecret = mp.APISecret
	if mp.URL != "" {
		cfg.MixpanelURL = mp.URL
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("hdx_site", "prod")
	v.SetDefault("hdx_sites", map[string]string{
		"prod": "https://data.humdata.org",
	})
	v.SetDefault("page_size", 1000)
	v.SetDefault("mixpanel_url", "https://mixpanel.com")
	v.SetDefault("lookback_years", 5)
	v.SetDefault("log_level", "info")
	v.SetDefault("ledger_dsn", "")
	v.SetDefault("ledger_debug", false)
	v.SetDefault("pushgateway_url", "")
}

func loadProject(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read project config: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse project config %s: %w", path, err)
	}

	site := v.GetString("hdx_site")
	sites := v.GetStringMapString("hdx_sites")
	siteURL, ok := sites[site]
	if !ok {
		return fmt.Errorf("project config %s: unknown hdx_site %q", path, site)
	}

	cfg.HDXSiteURL = strings.TrimRight(siteURL, "/")
	cfg.PageSize = v.GetInt("page_size")
	cfg.MixpanelURL = v.GetString("mixpanel_url")
	cfg.LookbackYears = v.GetInt("lookback_years")
	cfg.LogLevel = v.GetString("log_level")
	cfg.LedgerDSN = v.GetString("ledger_dsn")
	cfg.LedgerDebug = v.GetBool("ledger_debug")
	cfg.PushgatewayURL = v.GetString("pushgateway_url")

	if cfg.LookbackYears <= 0 {
		return fmt.Errorf("project config %s: lookback_years must be positive", path)
	}

	limits, err := ratelimit.LoadSourceConfigs(data)
	if err != nil {
		return fmt.Errorf("project config %s: %w", path, err)
	}
	cfg.RateLimits = limits

	return nil
}
