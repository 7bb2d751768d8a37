package config

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.ToLower(strings.TrimSpace(x))
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Catalog.Source = strings.TrimSpace(out.Catalog.Source)
	out.Logos.AllowHosts = trimList(out.Logos.AllowHosts)
	out.Logging.Level = strings.ToLower(strings.TrimSpace(out.Logging.Level))

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if strings.TrimSpace(out.App.DataDir) == "" {
		res.addErr("app.data_dir is required")
	}

	if out.Catalog.Source == "" {
		res.addErr("catalog.source is required")
	}
	if out.Catalog.TimeoutSeconds <= 0 {
		res.addErr("catalog.timeout_seconds must be > 0")
	}
	if out.Catalog.RefreshSeconds < 0 {
		res.addErr("catalog.refresh_seconds must be >= 0")
	} else if out.Catalog.RefreshSeconds > 0 && out.Catalog.RefreshSeconds < 30 {
		res.addWarn("catalog.refresh_seconds is very low (%d); every refresh refetches the whole catalog.", out.Catalog.RefreshSeconds)
	}

	if out.Pages.HomeBatch <= 0 {
		res.addErr("pages.home_batch must be > 0")
	}
	if out.Pages.SearchPageSize <= 0 {
		res.addErr("pages.search_page_size must be > 0")
	}
	if out.Pages.MaxVisiblePages <= 0 {
		res.addErr("pages.max_visible_pages must be > 0")
	} else if out.Pages.MaxVisiblePages%2 == 0 {
		res.addWarn("pages.max_visible_pages is even (%d); the current page cannot sit in the middle.", out.Pages.MaxVisiblePages)
	}
	if out.Pages.Recommendations < 0 {
		res.addErr("pages.recommendations must be >= 0")
	}

	if out.Worker.Enabled {
		if out.Worker.QueueSize < 0 {
			res.addErr("worker.queue_size must be >= 0")
		}
		if out.Worker.TimeoutSeconds <= 0 {
			res.addErr("worker.timeout_seconds must be > 0 when worker.enabled=true")
		}
	}

	if out.Logos.Cache {
		if len(out.Logos.AllowHosts) == 0 {
			res.addWarn("logos.cache is on but logos.allow_hosts is empty; nothing will be cached.")
		}
		if out.Logos.ReqPerSec <= 0 {
			res.addErr("logos.req_per_sec must be > 0 when logos.cache=true")
		}
		if out.Logos.MaxBytes <= 0 {
			res.addErr("logos.max_bytes must be > 0 when logos.cache=true")
		}
	}

	if out.Logging.Level != "" {
		if _, err := zapcore.ParseLevel(out.Logging.Level); err != nil {
			res.addErr("logging.level %q is not a level", out.Logging.Level)
		}
	}

	return out, res
}
