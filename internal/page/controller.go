// Package page holds the page controllers: one Controller per page load,
// wiring the listing store, a filter backend and the pager together.
package page

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"franchise-engine/internal/catalog"
	"franchise-engine/internal/domain"
	"franchise-engine/internal/paginate"
	"franchise-engine/internal/worker"
)

type Kind string

const (
	Home   Kind = "home"
	Search Kind = "search"
)

// ErrNotLoaded is returned by operations that need a catalog before Load.
var ErrNotLoaded = errors.New("page not loaded")

type Options struct {
	PageSize   int
	MaxVisible int
	// NewWorker starts the worker this controller owns; nil runs the filter
	// engine inline. Each controller needs its own worker because the
	// worker's catalog is whatever the last setFullData sent.
	NewWorker func() *worker.Client
	// WorkerTimeout bounds each wait for a worker reply.
	WorkerTimeout time.Duration
	Log           *zap.Logger
}

// State is everything a controller knows about its page.
type State struct {
	Query   domain.Query
	Results []domain.Listing
	// Total is how many listings the backend holds; Home uses it to know
	// when there is nothing left to load.
	Total int
}

type Controller struct {
	kind    Kind
	opts    Options
	log     *zap.Logger
	store   *catalog.Store
	backend backend
	wc      *worker.Client
	pager   *paginate.Pager
	state   State

	// full is the whole catalog handed to Load, kept for the inline fallback.
	full []domain.Listing
}

func New(kind Kind, opts Options) *Controller {
	if opts.PageSize <= 0 {
		if kind == Home {
			opts.PageSize = worker.InitialBatch
		} else {
			opts.PageSize = 8
		}
	}
	if opts.MaxVisible <= 0 {
		opts.MaxVisible = 5
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	c := &Controller{
		kind:  kind,
		opts:  opts,
		log:   log.With(zap.String("page", string(kind))),
		pager: paginate.NewPager(opts.PageSize),
	}
	if opts.NewWorker != nil {
		c.wc = opts.NewWorker()
		c.backend = workerBackend{c: c.wc, timeout: opts.WorkerTimeout}
	} else {
		c.backend = &syncBackend{kind: kind}
	}
	return c
}

func (c *Controller) Kind() Kind { return c.kind }

// Close stops the controller's worker. Later calls run inline.
func (c *Controller) Close() {
	if c.wc != nil {
		c.wc.Terminate()
	}
}

// State returns a copy of the controller state.
func (c *Controller) State() State {
	s := c.state
	s.Results = append([]domain.Listing(nil), s.Results...)
	return s
}

// Load hands the catalog to the backend and fills the store. Home keeps only
// the initial batch; Search keeps everything, unfiltered, on page 1.
func (c *Controller) Load(ctx context.Context, listings []domain.Listing) error {
	c.full = append([]domain.Listing(nil), listings...)
	if err := c.call(func(b backend) error { return b.setFull(ctx, listings) }); err != nil {
		return fmt.Errorf("load %s: %w", c.kind, err)
	}

	switch c.kind {
	case Home:
		var initial []domain.Listing
		err := c.call(func(b backend) (err error) {
			initial, err = b.initial(ctx, listings)
			return err
		})
		if err != nil {
			return fmt.Errorf("load %s: %w", c.kind, err)
		}
		c.store = catalog.NewStore(initial)
	default:
		c.store = catalog.NewStore(listings)
	}

	c.state = State{Results: c.store.All(), Total: len(listings)}
	c.pager.Reset()
	return nil
}

// Apply recomputes the result set for q and goes back to page 1.
func (c *Controller) Apply(ctx context.Context, q domain.Query) error {
	if c.store == nil {
		return ErrNotLoaded
	}
	var results []domain.Listing
	err := c.call(func(b backend) (err error) {
		results, err = b.filter(ctx, q, c.store)
		return err
	})
	if err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	c.state.Query = q
	c.state.Results = results
	c.pager.Reset()
	return nil
}

// ChangePage moves to page n; out-of-range pages are refused.
func (c *Controller) ChangePage(n int) bool {
	return c.pager.Go(n, len(c.state.Results))
}

// Clear drops all filters and restores the load order on page 1.
func (c *Controller) Clear() {
	if c.store == nil {
		return
	}
	c.state.Query = domain.Query{}
	c.state.Results = c.store.OriginalOrder()
	c.pager.Reset()
}

// LoadMore fetches catalog positions [start,end) from the backend, appends
// them to the store and returns the batch.
func (c *Controller) LoadMore(ctx context.Context, start, end int) ([]domain.Listing, error) {
	if c.store == nil {
		return nil, ErrNotLoaded
	}
	var batch []domain.Listing
	err := c.call(func(b backend) (err error) {
		batch, err = b.more(ctx, start, end)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load more: %w", err)
	}
	if len(batch) == 0 && start < c.state.Total {
		// The backend holds fewer listings than Load was given.
		c.log.Warn("load more came back empty", zap.Int("start", start), zap.Int("expected", c.state.Total))
		c.state.Total = max(start, c.store.Len())
	}
	c.store.AppendBatch(batch)
	if c.state.Query.Empty() {
		c.state.Results = c.store.All()
	}
	return batch, nil
}

// Store exposes the listing store of this page load.
func (c *Controller) Store() *catalog.Store { return c.store }

// call runs fn on the current backend. A torn-down worker is replaced by the
// inline engine and fn is retried once.
func (c *Controller) call(fn func(backend) error) error {
	err := fn(c.backend)
	if !errors.Is(err, worker.ErrTerminated) {
		return err
	}
	c.log.Warn("worker unavailable, filtering inline")
	sb := &syncBackend{kind: c.kind}
	_ = sb.setFull(context.Background(), c.full)
	c.backend = sb
	return fn(sb)
}
