package config

import (
	"errors"
	"os"
	"path/filepath"
)

// EnsureUserConfig makes sure dataDir/config.yml exists and returns its
// path. The first run seeds it from defaultPath, or from Default() when the
// shipped file is not next to the binary.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	if _, err := os.Stat(userPath); err == nil {
		return userPath, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}

	seed, err := os.ReadFile(defaultPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return userPath, SaveAtomic(userPath, Default())
	case err != nil:
		return "", err
	}
	return userPath, os.WriteFile(userPath, seed, 0o644)
}
