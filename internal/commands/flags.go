package commands

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/lightbox/internal/core/config"
	"github.com/rs/zerolog"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// Connection overrides. Empty values fall back to the config file.
	APIURL   string
	Token    string
	User     string
	Password string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Log is the root logger built in the Before hook
	Log zerolog.Logger
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "lightbox", "config.yaml")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/lightbox/lightbox.log
// On Linux: $XDG_STATE_HOME/lightbox/lightbox.log (defaults to ~/.local/state/lightbox/lightbox.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "lightbox", "lightbox.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "lightbox", "lightbox.log")
	}

	return filepath.Join(home, ".local", "state", "lightbox", "lightbox.log")
}

// config returns the loaded config, or defaults when none was loaded.
func (f *Flags) config() *config.Config {
	if f.Config == nil {
		cfg := config.DefaultConfig()
		f.Config = &cfg
	}
	return f.Config
}

// baseURL returns the backend address, preferring the --api-url flag.
func (f *Flags) baseURL() string {
	if f.APIURL != "" {
		return f.APIURL
	}
	return f.config().API.BaseURL
}
