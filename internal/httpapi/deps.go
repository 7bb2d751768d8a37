package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"go.uber.org/zap"

	"franchise-engine/internal/config"
	"franchise-engine/internal/domain"
	"franchise-engine/internal/events"
	"franchise-engine/internal/page"
	"franchise-engine/internal/store"
)

// CatalogSource hands out the current catalog; *catalog.Loader is one.
type CatalogSource interface {
	Load(ctx context.Context) ([]domain.Listing, error)
}

type Deps struct {
	Log *zap.Logger
	DB  *sql.DB
	Hub *events.Hub

	Catalog CatalogSource
	// NewPage builds a controller for one request. Nil means inline
	// filtering with default sizes.
	NewPage func(kind page.Kind) *page.Controller
	Logos   *store.LogoCache

	CfgVal *atomic.Value // stores config.Config

	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// AdminToken guards PUT /config; empty disables the endpoint.
	AdminToken string
}

func (d Deps) Logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

func (d Deps) Page(kind page.Kind) *page.Controller {
	if d.NewPage != nil {
		return d.NewPage(kind)
	}
	return page.New(kind, page.Options{Log: d.Log})
}

func (d Deps) Config() config.Config {
	if d.CfgVal != nil {
		if cfg, ok := d.CfgVal.Load().(config.Config); ok {
			return cfg
		}
	}
	return config.Default()
}
