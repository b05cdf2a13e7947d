package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnvVar overrides the launcher home directory.
const HomeEnvVar = "LAUNCHER_HOME"

// GetLauncherHome returns the directory holding data.json, settings.yaml,
// the history database and logs.
// Priority order:
//  1. explicit (the --home flag), if non-empty
//  2. LAUNCHER_HOME environment variable
//  3. current working directory
//
// The directory is created if it doesn't exist.
func GetLauncherHome(explicit string) (string, error) {
	home := explicit
	if home == "" {
		home = os.Getenv(HomeEnvVar)
	}
	if home == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		home = cwd
	}

	abs, err := filepath.Abs(home)
	if err != nil {
		return "", fmt.Errorf("resolve launcher home %q: %w", home, err)
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return "", fmt.Errorf("create launcher home directory: %w", err)
	}
	return abs, nil
}
