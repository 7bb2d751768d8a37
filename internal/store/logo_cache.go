package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"franchise-engine/internal/util"
)

var errNotImage = errors.New("not an image")

func LogoKeyFromURL(u string) string {
	h := sha256.Sum256([]byte(util.CanonicalURL(u)))
	return hex.EncodeToString(h[:])
}

// LogoCache copies listing logos from allow-listed hosts into sqlite.
type LogoCache struct {
	DB         *sql.DB
	Client     *http.Client
	Limiter    *util.HostLimiter
	AllowHosts []string
	MaxBytes   int64
	Log        *zap.Logger
}

// Cacheable reports whether raw would be fetched at all.
func (c *LogoCache) Cacheable(raw string) bool {
	if !util.IsRemote(raw) {
		return false
	}
	pu, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return util.HostAllowed(pu.Hostname(), c.AllowHosts)
}

// Cache stores the logo at raw and returns its key. Logos that are not
// cacheable, or whose fetch fails, return an empty key and no error; the
// page then links the original URL.
func (c *LogoCache) Cache(ctx context.Context, raw string) (key string, err error) {
	raw = util.CanonicalURL(raw)
	if !c.Cacheable(raw) {
		return "", nil
	}
	key = LogoKeyFromURL(raw)

	// If already cached, skip fetch
	var exists int
	e := c.DB.QueryRowContext(ctx, `SELECT 1 FROM logos WHERE key = ? LIMIT 1;`, key).Scan(&exists)
	if e == nil {
		return key, nil
	}
	if !errors.Is(e, sql.ErrNoRows) {
		return "", e
	}

	if err := c.Limiter.WaitURL(ctx, raw); err != nil {
		return "", err
	}

	ct, b, err := c.fetch(ctx, raw)
	if err != nil {
		c.logger().Debug("logo fetch skipped", zap.String("url", raw), zap.Error(err))
		return "", nil
	}

	_, err = c.DB.ExecContext(ctx, `
INSERT OR REPLACE INTO logos(key, url, content_type, bytes, fetched_at)
VALUES(?,?,?,?,?);`,
		key, raw, ct, b, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return key, nil
}

// Prefetch caches every distinct logo with at most concurrency fetches in
// flight and reports how many are now cached.
func (c *LogoCache) Prefetch(ctx context.Context, urls []string, concurrency int) (int, error) {
	seen := map[string]bool{}
	var todo []string
	for _, u := range urls {
		if !c.Cacheable(u) {
			continue
		}
		k := LogoKeyFromURL(u)
		if seen[k] {
			continue
		}
		seen[k] = true
		todo = append(todo, u)
	}

	keys := make([]string, len(todo))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, u := range todo {
		g.Go(func() error {
			k, err := c.Cache(gctx, u)
			if err != nil {
				return fmt.Errorf("cache logo %s: %w", u, err)
			}
			keys[i] = k
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	n := 0
	for _, k := range keys {
		if k != "" {
			n++
		}
	}
	return n, nil
}

func (c *LogoCache) fetch(ctx context.Context, raw string) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil, fmt.Errorf("upstream status: %s", resp.Status)
	}

	// Limit size (protect DB)
	maxBytes := c.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 512 * 1024
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return "", nil, err
	}
	if len(b) == 0 || int64(len(b)) > maxBytes {
		return "", nil, fmt.Errorf("logo size %d out of bounds", len(b))
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(ct, "image/") {
		// sniff as fallback
		sn := http.DetectContentType(b)
		if !strings.HasPrefix(sn, "image/") {
			return "", nil, errNotImage
		}
		ct = sn
	}
	return ct, b, nil
}

func (c *LogoCache) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

// Logo is one cached image.
type Logo struct {
	Key         string
	URL         string
	ContentType string
	Bytes       []byte
}

// GetLogo returns the cached logo for key; ok is false when it is not cached.
func GetLogo(ctx context.Context, db *sql.DB, key string) (l Logo, ok bool, err error) {
	err = db.QueryRowContext(ctx,
		`SELECT key, url, content_type, bytes FROM logos WHERE key = ? LIMIT 1;`, key,
	).Scan(&l.Key, &l.URL, &l.ContentType, &l.Bytes)
	if errors.Is(err, sql.ErrNoRows) {
		return Logo{}, false, nil
	}
	if err != nil {
		return Logo{}, false, err
	}
	return l, true, nil
}
