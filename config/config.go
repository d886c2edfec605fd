package config

import (
	"time"

	"github.com/penwyp/UsagePivot/cache"
	"github.com/penwyp/UsagePivot/fileio"
	"github.com/penwyp/UsagePivot/provision"
)

// Config represents the complete application configuration
type Config struct {
	// Application
	App AppConfig `yaml:"app" json:"app"`

	// Input workbook layout
	Input fileio.Schema `yaml:"input" json:"input"`

	// Report generation
	Report ReportConfig `yaml:"report" json:"report"`

	// Provisioning sheet
	Provision provision.Config `yaml:"provision" json:"provision"`

	// Parsed-sheet cache
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// User Interface
	UI UIConfig `yaml:"ui" json:"ui"`

	// Debug
	Debug DebugConfig `yaml:"debug" json:"debug"`
}

// AppConfig contains general application settings
type AppConfig struct {
	Name     string `yaml:"name" json:"name"`
	Version  string `yaml:"version" json:"version"`
	LogLevel string `yaml:"log_level" json:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file"`
	Timezone string `yaml:"timezone" json:"timezone"`
	Verbose  bool   `yaml:"verbose" json:"verbose"`
}

// ReportConfig controls the report command
type ReportConfig struct {
	OutputDir    string        `yaml:"output_dir" json:"output_dir"`
	Print        string        `yaml:"print" json:"print"`
	View         string        `yaml:"view" json:"view"`
	IncludeUsers bool          `yaml:"include_users" json:"include_users"`
	Watch        bool          `yaml:"watch" json:"watch"`
	Debounce     time.Duration `yaml:"debounce" json:"debounce"`
}

// CacheConfig contains the parsed-sheet cache settings
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled" json:"enabled"`
	Dir      string        `yaml:"dir" json:"dir"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
	Compress bool          `yaml:"compress" json:"compress"`
}

// StoreConfig converts the settings for cache.Open
func (c CacheConfig) StoreConfig() cache.StoreConfig {
	return cache.StoreConfig{
		Dir:      c.Dir,
		TTL:      c.TTL,
		Compress: c.Compress,
	}
}

// UIConfig contains user interface settings
type UIConfig struct {
	Theme       string `yaml:"theme" json:"theme"`
	TableHeight int    `yaml:"table_height" json:"table_height"`
	NoColor     bool   `yaml:"no_color" json:"no_color"`
}

// DebugConfig contains debugging settings
type DebugConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// ConfigPaths returns the default configuration file paths in order of precedence
func ConfigPaths() []string {
	return []string{
		"./usagepivot.yaml",
		"$HOME/.config/usagepivot/config.yaml",
		"/etc/usagepivot/config.yaml",
	}
}

// Version will be set at build time
var Version = "dev"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:     "UsagePivot",
			Version:  Version,
			LogLevel: "info",
			Timezone: "UTC",
		},
		Input: fileio.DefaultSchema(),
		Report: ReportConfig{
			Print:        "none",
			View:         "performer",
			IncludeUsers: true,
			Debounce:     fileio.DefaultWatcherConfig.DebounceTime,
		},
		Provision: provision.DefaultConfig(),
		Cache: CacheConfig{
			Enabled: false,
			TTL:     7 * 24 * time.Hour,
		},
		UI: UIConfig{
			Theme:       "dark",
			TableHeight: 20,
		},
		Debug: DebugConfig{
			Enabled: false,
		},
	}
}

// DevelopmentConfig returns a configuration optimized for development
func DevelopmentConfig() *Config {
	cfg := DefaultConfig()
	cfg.App.LogLevel = "debug"
	cfg.Debug.Enabled = true
	cfg.Report.Print = "table"
	return cfg
}
