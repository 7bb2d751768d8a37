package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"franchise-engine/internal/domain"
)

// maxDocumentBytes bounds what one fetch will read.
const maxDocumentBytes = 32 << 20

// UnavailableHint is shown to whoever is looking at a page whose catalog
// could not be loaded.
const UnavailableHint = "Unable to load franchise data. If you opened the pages straight from disk, " +
	"serve them over a local HTTP endpoint instead (engine serve) and check catalog.source in config.yml."

// LoadError is the terminal "could not load the catalog" failure. There is
// no retry; the page shows the operator hint instead.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load catalog %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader fetches the catalog document from a file path or an http(s) URL and
// keeps the last good copy.
type Loader struct {
	Source string
	Client *http.Client

	mu       sync.RWMutex
	cached   []domain.Listing
	loadedAt time.Time
}

func NewLoader(source string, timeout time.Duration) *Loader {
	return &Loader{
		Source: source,
		Client: &http.Client{Timeout: timeout},
	}
}

// Load returns the cached catalog, fetching it once if nothing is cached yet.
// Callers get their own copy of the slice.
func (l *Loader) Load(ctx context.Context) ([]domain.Listing, error) {
	l.mu.RLock()
	c := l.cached
	l.mu.RUnlock()
	if c != nil {
		return clone(c), nil
	}
	return l.Refresh(ctx)
}

// Refresh performs one fetch and, on success, replaces the cached catalog.
// A failed refresh leaves the previous catalog in place.
func (l *Loader) Refresh(ctx context.Context) ([]domain.Listing, error) {
	raw, err := l.fetch(ctx)
	if err != nil {
		return nil, &LoadError{Source: l.Source, Err: err}
	}
	listings, err := Decode(raw)
	if err != nil {
		return nil, &LoadError{Source: l.Source, Err: err}
	}

	l.mu.Lock()
	l.cached = listings
	l.loadedAt = time.Now()
	l.mu.Unlock()
	return clone(listings), nil
}

// LoadedAt is the time of the last successful fetch, zero if none.
func (l *Loader) LoadedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loadedAt
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	src := strings.TrimSpace(l.Source)
	if src == "" {
		return nil, ErrEmptySource
	}
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.ReadFile(src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upstream status: %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
}

func clone(in []domain.Listing) []domain.Listing {
	out := make([]domain.Listing, len(in))
	copy(out, in)
	return out
}
