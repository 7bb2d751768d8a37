// config/overlay.go
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv reads .env from dir into the process environment. A missing
// file is not an error; variables already set win over the file.
func LoadDotEnv(dir string) error {
	path := ".env"
	if dir != "" {
		path = dir + string(os.PathSeparator) + ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

// applyEnvOverrides lets the environment beat the YAML for the settings an
// operator changes most.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FRANCHISE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = n
		}
	}
	if v := os.Getenv("FRANCHISE_HOST"); v != "" {
		cfg.App.Host = v
	}
	if v := os.Getenv("FRANCHISE_DATA_DIR"); v != "" {
		cfg.App.DataDir = v
	}
	if v := os.Getenv("FRANCHISE_CATALOG"); v != "" {
		cfg.Catalog.Source = v
	}
	if v := os.Getenv("FRANCHISE_WORKER"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.Worker.Enabled = b
		}
	}
	if v := os.Getenv("FRANCHISE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
