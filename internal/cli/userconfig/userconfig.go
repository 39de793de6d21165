package userconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const configFileName = "config.json"

// UserConfig represents the user's local configuration stored in
// <config dir>/config.json (~/.config/pixelshop by default)
type UserConfig struct {
	SelectedServerURL string `json:"selected_server_url"`
}

// GetConfigPath returns the path to the user config file inside dir
func GetConfigPath(dir string) string {
	return filepath.Join(dir, configFileName)
}

// Load reads the user configuration file
func Load(dir string) (*UserConfig, error) {
	data, err := os.ReadFile(GetConfigPath(dir))
	// If config doesn't exist, return empty config
	if errors.Is(err, os.ErrNotExist) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(dir string, cfg *UserConfig) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(GetConfigPath(dir), data, 0600); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// SetSelectedServer updates the selected server URL and saves the config
func SetSelectedServer(dir, serverURL string) error {
	cfg, err := Load(dir)
	if err != nil {
		return err
	}

	cfg.SelectedServerURL = serverURL
	return Save(dir, cfg)
}

// GetSelectedServer returns the selected server URL, or empty string if not set
func GetSelectedServer(dir string) (string, error) {
	cfg, err := Load(dir)
	if err != nil {
		return "", err
	}

	return cfg.SelectedServerURL, nil
}
