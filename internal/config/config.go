// engine/internal/config/config.go
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Host      string `yaml:"host" json:"host"`
		Port      int    `yaml:"port" json:"port"`
		DataDir   string `yaml:"data_dir" json:"data_dir"`
		PublicDir string `yaml:"public_dir" json:"public_dir"`
	} `yaml:"app" json:"app"`

	Catalog struct {
		// Source is a file path or an http(s) URL of the catalog document.
		Source         string `yaml:"source" json:"source"`
		TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
		// 0 disables scheduled reloads.
		RefreshSeconds int `yaml:"refresh_seconds" json:"refresh_seconds"`
	} `yaml:"catalog" json:"catalog"`

	Pages struct {
		HomeBatch       int `yaml:"home_batch" json:"home_batch"`
		SearchPageSize  int `yaml:"search_page_size" json:"search_page_size"`
		MaxVisiblePages int `yaml:"max_visible_pages" json:"max_visible_pages"`
		Recommendations int `yaml:"recommendations" json:"recommendations"`
	} `yaml:"pages" json:"pages"`

	Worker struct {
		Enabled        bool `yaml:"enabled" json:"enabled"`
		QueueSize      int  `yaml:"queue_size" json:"queue_size"`
		TimeoutSeconds int  `yaml:"timeout_seconds" json:"timeout_seconds"`
	} `yaml:"worker" json:"worker"`

	Logos struct {
		Cache       bool     `yaml:"cache" json:"cache"`
		AllowHosts  []string `yaml:"allow_hosts" json:"allow_hosts"`
		ReqPerSec   float64  `yaml:"req_per_sec" json:"req_per_sec"`
		Burst       int      `yaml:"burst" json:"burst"`
		MaxBytes    int64    `yaml:"max_bytes" json:"max_bytes"`
		Concurrency int      `yaml:"concurrency" json:"concurrency"`
	} `yaml:"logos" json:"logos"`

	Logging struct {
		Level string `yaml:"level" json:"level"`
	} `yaml:"logging" json:"logging"`
}

// Default is the configuration used for anything the YAML leaves out.
func Default() Config {
	var cfg Config
	cfg.App.Host = "127.0.0.1"
	cfg.App.Port = 38472
	cfg.App.DataDir = "."
	cfg.App.PublicDir = "public"

	cfg.Catalog.Source = "franchises.json"
	cfg.Catalog.TimeoutSeconds = 10

	cfg.Pages.HomeBatch = 12
	cfg.Pages.SearchPageSize = 8
	cfg.Pages.MaxVisiblePages = 5
	cfg.Pages.Recommendations = 4

	cfg.Worker.Enabled = true
	cfg.Worker.QueueSize = 16
	cfg.Worker.TimeoutSeconds = 5

	cfg.Logos.Cache = false
	cfg.Logos.ReqPerSec = 1
	cfg.Logos.Burst = 2
	cfg.Logos.MaxBytes = 512 * 1024
	cfg.Logos.Concurrency = 4

	cfg.Logging.Level = "info"
	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func (c Config) CatalogTimeout() time.Duration {
	return time.Duration(c.Catalog.TimeoutSeconds) * time.Second
}

func (c Config) CatalogRefresh() time.Duration {
	return time.Duration(c.Catalog.RefreshSeconds) * time.Second
}

func (c Config) WorkerTimeout() time.Duration {
	return time.Duration(c.Worker.TimeoutSeconds) * time.Second
}
