package core

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// GlobalConfig stores the hub connection settings.
type GlobalConfig struct {
	Version     int      `json:"version"`
	ServerURL   string   `json:"server_url"`
	Channels    []string `json:"channels,omitempty"`
	LastChannel string   `json:"last_channel,omitempty"`
}

// DefaultServerURL is used until the user configures a hub.
const DefaultServerURL = "http://localhost:8390"

// DefaultChannels seeds the channel list until the user edits it.
var DefaultChannels = []string{"general", "random", "help"}

// ConfigDir returns the agora config directory, creating nothing.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "agora"), nil
}

func globalConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func ensureConfigDir() (string, error) {
	path, err := globalConfigPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// ReadGlobalConfig reads the global config file if present. A missing
// file returns defaults, not an error.
func ReadGlobalConfig() (*GlobalConfig, error) {
	path, err := globalConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{
				Version:   1,
				ServerURL: DefaultServerURL,
				Channels:  append([]string(nil), DefaultChannels...),
			}, nil
		}
		return nil, err
	}
	var config GlobalConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if config.ServerURL == "" {
		config.ServerURL = DefaultServerURL
	}
	if len(config.Channels) == 0 {
		config.Channels = append([]string(nil), DefaultChannels...)
	}
	return &config, nil
}

// WriteGlobalConfig writes the global config file, creating the config
// directory if needed.
func WriteGlobalConfig(config *GlobalConfig) error {
	path, err := ensureConfigDir()
	if err != nil {
		return err
	}
	if config.Version == 0 {
		config.Version = 1
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
