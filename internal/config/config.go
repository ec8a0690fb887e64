// Package config loads the daemon's TOML configuration.
package config

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the daemon configuration.
type Config struct {
	// PluginDir is the directory scanned for Lua plugins.
	PluginDir string `toml:"plugin_dir"`

	// QueueSize bounds the script executor's task queue.
	QueueSize int `toml:"queue_size"`

	// LogLevel is a zap level string (debug, info, warn, error).
	LogLevel string `toml:"log_level"`

	// ScenarioFile is an optional JSON file of host events to replay.
	ScenarioFile string `toml:"scenario_file"`

	// WatchPlugins enables hot reload of the plugin directory.
	WatchPlugins bool `toml:"watch_plugins"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		PluginDir:    "plugins",
		QueueSize:    256,
		LogLevel:     "info",
		WatchPlugins: true,
	}
}

// Load reads a TOML config file over the defaults. A missing file is not
// an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
