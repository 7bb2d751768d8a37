package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"franchise-engine/internal/catalog"
	"franchise-engine/internal/config"
	"franchise-engine/internal/domain"
	"franchise-engine/internal/events"
	"franchise-engine/internal/httpapi"
	"franchise-engine/internal/page"
	"franchise-engine/internal/scheduler"
	"franchise-engine/internal/secrets"
	"franchise-engine/internal/store"
	"franchise-engine/internal/util"
	"franchise-engine/internal/web"
	"franchise-engine/internal/worker"
)

var defaultCfgPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the directory pages and JSON API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&defaultCfgPath, "default-config", filepath.Join("config", "config.yml"),
		"Config copied into the data dir on first run")
}

func runServe(cmd *cobra.Command, args []string) error {
	dir := resolveDataDir()
	if err := config.LoadDotEnv(dir); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	dir = resolveDataDir() // .env may set FRANCHISE_DATA_DIR
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	lock := flock.New(filepath.Join(dir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return fmt.Errorf("another engine is already serving %s", dir)
	}
	defer func() { _ = lock.Unlock() }()

	cfgPath := defaultCfgPath
	if cfgPath == "" {
		cfgPath = filepath.Join("config", "config.yml")
	}
	userCfgPath, err := config.EnsureUserConfig(dir, cfgPath)
	if err != nil {
		return fmt.Errorf("config bootstrap failed: %w", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		logger.Warn("config", zap.String("warning", w))
	}
	if !vr.OK() {
		return config.Validate(cfg)
	}
	cfgVal.Store(cfg)
	if !verbose {
		if lvl, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil {
			logLevel.SetLevel(lvl)
		}
	}
	log := logger.With(zap.String("data_dir", dir))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPath := filepath.Join(dir, "franchise.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	hub := events.NewHub()
	loader := catalog.NewLoader(cfg.Catalog.Source, cfg.CatalogTimeout())

	var logos *store.LogoCache
	if cfg.Logos.Cache {
		logos = &store.LogoCache{
			DB:         db.Pool,
			Client:     &http.Client{Timeout: 15 * time.Second},
			Limiter:    util.NewHostLimiter(cfg.Logos.ReqPerSec, cfg.Logos.Burst),
			AllowHosts: cfg.Logos.AllowHosts,
			MaxBytes:   cfg.Logos.MaxBytes,
			Log:        log,
		}
	}

	refresh := func(ctx context.Context) error {
		listings, err := loader.Refresh(ctx)
		if err != nil {
			hub.Emit("", events.CatalogLoadFailed, map[string]any{"source": cfg.Catalog.Source, "error": err.Error()})
			return err
		}
		hub.Emit("", events.CatalogLoaded, map[string]any{"listings": len(listings)})
		log.Info("catalog loaded", zap.String("source", cfg.Catalog.Source), zap.Int("listings", len(listings)))
		if logos != nil {
			go prefetchLogos(ctx, logos, listings, cfgVal.Load().(config.Config).Logos.Concurrency, log)
		}
		return nil
	}

	// A missing catalog is not fatal: pages show the load error until a
	// refresh succeeds.
	if err := refresh(ctx); err != nil {
		log.Error("catalog load failed", zap.Error(err))
	}

	token, src, err := secrets.AdminToken(secrets.KeyringAccount(dir))
	if err != nil {
		return fmt.Errorf("admin token: %w", err)
	}
	if src == secrets.Generated {
		p, err := writeTokenFile(dir, token)
		if err != nil {
			return err
		}
		log.Info("admin token generated", zap.String("file", p))
	} else {
		log.Info("admin token loaded", zap.String("source", string(src)))
	}

	d := httpapi.Deps{
		Log:     log,
		DB:      db.Pool,
		Hub:     hub,
		Catalog: loader,
		NewPage: func(kind page.Kind) *page.Controller {
			cur := cfgVal.Load().(config.Config)
			size := cur.Pages.SearchPageSize
			if kind == page.Home {
				size = cur.Pages.HomeBatch
			}
			opts := page.Options{PageSize: size, MaxVisible: cur.Pages.MaxVisiblePages, Log: log}
			if cur.Worker.Enabled {
				// one worker per page load, stopped by Controller.Close
				queue := cur.Worker.QueueSize
				opts.NewWorker = func() *worker.Client { return worker.NewClient(queue) }
				opts.WorkerTimeout = cur.WorkerTimeout()
			}
			return page.New(kind, opts)
		},
		Logos:       logos,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		AdminToken:  token,
	}

	mux := httpapi.NewMux(d)
	wh, err := web.New(d)
	if err != nil {
		return err
	}
	wh.Mount(mux, cfg.App.PublicDir)

	addr := net.JoinHostPort(cfg.App.Host, strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	mux.HandleFunc("/shutdown", shutdownHandler(token, stop, log))
	srv.Handler = httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.Recover(log),
		httpapi.AccessLog(log),
		httpapi.ClientID,
		httpapi.Cors,
	)

	log.Info("engine listening", zap.String("addr", "http://"+addr), zap.String("db", dbPath))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if cfg.Catalog.RefreshSeconds > 0 {
		g.Go(func() error {
			t := time.NewTimer(cfg.CatalogRefresh())
			defer t.Stop()
			select {
			case <-gctx.Done():
				return nil
			case <-t.C:
			}
			scheduler.Every(gctx, cfg.CatalogRefresh(), "catalog-refresh", log, refresh)
			return nil
		})
	}
	g.Go(func() error {
		scheduler.Every(gctx, 24*time.Hour, "search-cleanup", log, func(ctx context.Context) error {
			n, err := store.CleanupOldSearches(ctx, db.Pool)
			if err == nil && n > 0 {
				log.Info("expired saved searches", zap.Int64("deleted", n))
			}
			return err
		})
		return nil
	})

	err = g.Wait()
	log.Info("engine stopped")
	return err
}

func prefetchLogos(ctx context.Context, c *store.LogoCache, listings []domain.Listing, concurrency int, log *zap.Logger) {
	urls := make([]string, 0, len(listings))
	for _, l := range listings {
		urls = append(urls, l.Logo)
	}
	n, err := c.Prefetch(ctx, urls, concurrency)
	if err != nil && ctx.Err() == nil {
		log.Warn("logo prefetch", zap.Error(err))
		return
	}
	log.Debug("logos cached", zap.Int("count", n))
}
