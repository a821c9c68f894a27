package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ClientConfig is the top-level configuration for the sync client.
type ClientConfig struct {
	// APIBaseURL is the root path or URL of the REST collaborator.
	APIBaseURL string `mapstructure:"api_base_url" yaml:"api_base_url"`

	// BrokerURL is the WebSocket endpoint of the STOMP broker.
	BrokerURL string `mapstructure:"broker_url" yaml:"broker_url"`

	// ReconnectDelaySec is how long to wait before re-dialing the
	// broker after an unexpected drop.
	ReconnectDelaySec int `mapstructure:"reconnect_delay_sec" yaml:"reconnect_delay_sec"`

	// ActivityDBPath is the SQLite file backing the activity log.
	// Empty disables durable feed persistence.
	ActivityDBPath string `mapstructure:"activity_db_path" yaml:"activity_db_path"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskboard/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskboard", "config.yaml")
}

// defaultClientConfig returns a sensible default configuration.
func defaultClientConfig() *ClientConfig {
	home, _ := os.UserHomeDir()
	return &ClientConfig{
		APIBaseURL:        "http://localhost:8080/api",
		BrokerURL:         "ws://localhost:8080/stomp/websocket",
		ReconnectDelaySec: 5,
		ActivityDBPath:    filepath.Join(home, ".config", "taskboard", "activity.db"),
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*ClientConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	defaults := defaultClientConfig()
	v.SetDefault("api_base_url", defaults.APIBaseURL)
	v.SetDefault("broker_url", defaults.BrokerURL)
	v.SetDefault("reconnect_delay_sec", defaults.ReconnectDelaySec)
	v.SetDefault("activity_db_path", defaults.ActivityDBPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultClientConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.ReconnectDelaySec <= 0 {
		cfg.ReconnectDelaySec = defaults.ReconnectDelaySec
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *ClientConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api_base_url", cfg.APIBaseURL)
	v.Set("broker_url", cfg.BrokerURL)
	v.Set("reconnect_delay_sec", cfg.ReconnectDelaySec)
	v.Set("activity_db_path", cfg.ActivityDBPath)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
