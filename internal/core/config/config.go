// Package config handles configuration loading and validation for lightbox.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/internal/core/styles"
	"gopkg.in/yaml.v3"
)

// Storage backends for the reference server.
const (
	StorageMemory = "memory"
	StorageS3     = "s3"
)

// Config holds the application configuration.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Gallery    GalleryConfig    `yaml:"gallery"`
	Navigation NavigationConfig `yaml:"navigation"`
	TUI        TUIConfig        `yaml:"tui"`
	DevServer  DevServerConfig  `yaml:"devserver"`
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// GalleryConfig holds browsing defaults.
type GalleryConfig struct {
	PageSize    uint   `yaml:"page_size"`
	DefaultMode string `yaml:"default_mode"`
}

// NavigationConfig holds modal viewer settings.
type NavigationConfig struct {
	// SwipeThreshold is the horizontal distance in pixels a swipe must
	// exceed to navigate.
	SwipeThreshold float64 `yaml:"swipe_threshold"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// DevServerConfig holds settings for `lightbox serve`.
type DevServerConfig struct {
	Addr           string   `yaml:"addr"`
	PublicURL      string   `yaml:"public_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	ThumbnailWidth uint     `yaml:"thumbnail_width"`
	Storage        string   `yaml:"storage"` // memory or s3
	S3             S3Config `yaml:"s3"`
}

// S3Config holds S3 compatible bucket settings.
type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080/api/v1",
			Timeout: 30 * time.Second,
		},
		Gallery: GalleryConfig{
			PageSize:    20,
			DefaultMode: string(image.ModePersonal),
		},
		Navigation: NavigationConfig{
			SwipeThreshold: 200,
		},
		TUI: TUIConfig{
			Theme: styles.DefaultTheme,
		},
		DevServer: DevServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			ThumbnailWidth: 300,
			Storage:        StorageMemory,
			S3: S3Config{
				Region: "auto",
			},
		},
	}
}

// Load reads configuration from the given path.
// If configPath is empty or doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.Gallery.PageSize == 0 {
		c.Gallery.PageSize = defaults.Gallery.PageSize
	}
	if c.Gallery.DefaultMode == "" {
		c.Gallery.DefaultMode = defaults.Gallery.DefaultMode
	}
	if c.Navigation.SwipeThreshold == 0 {
		c.Navigation.SwipeThreshold = defaults.Navigation.SwipeThreshold
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.DevServer.Addr == "" {
		c.DevServer.Addr = defaults.DevServer.Addr
	}
	if len(c.DevServer.AllowedOrigins) == 0 {
		c.DevServer.AllowedOrigins = defaults.DevServer.AllowedOrigins
	}
	if c.DevServer.ThumbnailWidth == 0 {
		c.DevServer.ThumbnailWidth = defaults.DevServer.ThumbnailWidth
	}
	if c.DevServer.Storage == "" {
		c.DevServer.Storage = defaults.DevServer.Storage
	}
	if c.DevServer.S3.Region == "" {
		c.DevServer.S3.Region = defaults.DevServer.S3.Region
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}

	if c.Gallery.PageSize < 1 {
		return fmt.Errorf("gallery.page_size must be at least 1")
	}

	if _, err := image.ParseMode(c.Gallery.DefaultMode); err != nil {
		return fmt.Errorf("gallery.default_mode: %w", err)
	}

	if c.Navigation.SwipeThreshold < 0 {
		return fmt.Errorf("navigation.swipe_threshold must not be negative")
	}

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		return fmt.Errorf("tui.theme %q is not a built-in theme (want one of %v)", c.TUI.Theme, styles.ThemeNames())
	}

	switch c.DevServer.Storage {
	case StorageMemory, StorageS3:
	default:
		return fmt.Errorf("devserver.storage must be %q or %q, got %q", StorageMemory, StorageS3, c.DevServer.Storage)
	}

	return nil
}

// Mode returns the parsed default gallery mode.
func (c *Config) Mode() image.Mode {
	m, _ := image.ParseMode(c.Gallery.DefaultMode)
	return m
}
