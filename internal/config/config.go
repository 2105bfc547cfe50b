// Package config loads and validates the application configuration from a
// YAML file.
package config

import (
	"time"
)

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
}

// CatalogConfig describes the remote content catalog. When ReplaceHost is
// set, catalog URLs pointing at APIHost are rewritten to MirrorHost before
// download, which supports a private or staging mirror of the catalog.
type CatalogConfig struct {
	APIHost     string `yaml:"api_host" validate:"omitempty,url"`
	MirrorHost  string `yaml:"mirror_host" validate:"omitempty,url"`
	ReplaceHost bool   `yaml:"replace_host"`
	LicenseKey  string `yaml:"license_key"`
	// Timeout is the download timeout in seconds.
	Timeout int `yaml:"timeout" validate:"omitempty,min=1"`
}

// FetchTimeout returns the download timeout as a duration.
func (c CatalogConfig) FetchTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// ImporterConfig names the external content importer command. The resolved
// content file path is appended as the final argument.
type ImporterConfig struct {
	Command []string `yaml:"command" validate:"required,min=1"`
}

// FeatureConfig mirrors which site subsystems are installed. Stages targeting
// a disabled subsystem skip rather than fail.
type FeatureConfig struct {
	Shop    bool `yaml:"shop"`
	Forms   bool `yaml:"forms"`
	Courses bool `yaml:"courses"`
}

// Config is the full application configuration.
type Config struct {
	Listen     string `yaml:"listen" validate:"required,listen_addr"`
	AdminToken string `yaml:"admin_token" validate:"required,min=16"`
	SiteURL    string `yaml:"site_url" validate:"omitempty,url"`
	UploadsDir string `yaml:"uploads_dir" validate:"required"`
	Database   string `yaml:"database" validate:"required"`

	// BuilderCacheDir is the page builder's generated-assets directory.
	// Empty means no page builder is installed.
	BuilderCacheDir string `yaml:"builder_cache_dir"`

	Logging  LoggingConfig  `yaml:"logging"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Importer ImporterConfig `yaml:"importer"`
	Features FeatureConfig  `yaml:"features"`
}

// applyDefaults fills optional fields the file left unset.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Catalog.LicenseKey == "" {
		cfg.Catalog.LicenseKey = "free"
	}
	if cfg.Catalog.Timeout == 0 {
		cfg.Catalog.Timeout = 300
	}
}
