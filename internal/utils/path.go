package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetConfigDir returns the path to the searchchat configuration directory,
// <UserConfigDir>/.searchchat, unless overridden by SEARCHCHAT_CONFIG_DIR.
func GetConfigDir() (string, error) {
	if dir := os.Getenv("SEARCHCHAT_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(cfg, ".searchchat"), nil
}
