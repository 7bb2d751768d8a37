package page

import (
	"context"
	"slices"
	"time"

	"franchise-engine/internal/catalog"
	"franchise-engine/internal/domain"
	"franchise-engine/internal/filter"
	"franchise-engine/internal/worker"
)

// backend computes result sets for a controller, either on the worker
// goroutine or inline.
type backend interface {
	setFull(ctx context.Context, listings []domain.Listing) error
	initial(ctx context.Context, listings []domain.Listing) ([]domain.Listing, error)
	more(ctx context.Context, start, end int) ([]domain.Listing, error)
	filter(ctx context.Context, q domain.Query, st *catalog.Store) ([]domain.Listing, error)
}

type workerBackend struct {
	c       *worker.Client
	timeout time.Duration // 0: only the caller's context bounds a reply
}

func (b workerBackend) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.timeout)
}

func (b workerBackend) setFull(ctx context.Context, listings []domain.Listing) error {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return b.c.SetFullData(ctx, listings)
}

func (b workerBackend) initial(ctx context.Context, listings []domain.Listing) ([]domain.Listing, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return b.c.LoadInitialData(ctx, listings)
}

func (b workerBackend) more(ctx context.Context, start, end int) ([]domain.Listing, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return b.c.LoadMoreData(ctx, start, end)
}

func (b workerBackend) filter(ctx context.Context, q domain.Query, _ *catalog.Store) ([]domain.Listing, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return b.c.FilterData(ctx, q)
}

// syncBackend runs the filter engine on the caller's goroutine. Search gets
// the full pipeline with original-order restore; Home only filters.
type syncBackend struct {
	kind Kind
	full []domain.Listing
}

func (b *syncBackend) setFull(_ context.Context, listings []domain.Listing) error {
	b.full = slices.Clone(listings)
	return nil
}

func (b *syncBackend) initial(_ context.Context, listings []domain.Listing) ([]domain.Listing, error) {
	return slices.Clone(listings[:min(worker.InitialBatch, len(listings))]), nil
}

func (b *syncBackend) more(_ context.Context, start, end int) ([]domain.Listing, error) {
	start = max(start, 0)
	end = min(end, len(b.full))
	if start >= end {
		return []domain.Listing{}, nil
	}
	return slices.Clone(b.full[start:end]), nil
}

func (b *syncBackend) filter(_ context.Context, q domain.Query, st *catalog.Store) ([]domain.Listing, error) {
	if b.kind == Search {
		return filter.ApplyOrdered(st.All(), q, st.OriginalOrder()), nil
	}
	return filter.ApplyUnsorted(st.All(), q), nil
}
