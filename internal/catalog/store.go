// Package catalog loads the franchise catalog document and holds it for the
// lifetime of one page controller.
package catalog

import (
	"math/rand/v2"
	"strings"
	"sync"

	"franchise-engine/internal/domain"
)

// Store is the Listing Store of one page load. The original-order snapshot
// is taken once at construction and never changes; AppendBatch only grows
// the working list.
type Store struct {
	mu       sync.RWMutex
	all      []domain.Listing
	original []domain.Listing
}

func NewStore(listings []domain.Listing) *Store {
	return &Store{
		all:      clone(listings),
		original: clone(listings),
	}
}

// All returns a copy of the working list.
func (s *Store) All() []domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.all)
}

// OriginalOrder returns a copy of the frozen load-order snapshot.
func (s *Store) OriginalOrder() []domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.original)
}

// AppendBatch concatenates items onto the working list without deduplicating
// or resorting, and returns the new length.
func (s *Store) AppendBatch(items []domain.Listing) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = append(s.all, items...)
	return len(s.all)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.all)
}

// Find returns the listing with the given id, or the first listing when no
// id matches. ok is false only for an empty store.
func (s *Store) Find(id string) (domain.Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.all) == 0 {
		return domain.Listing{}, false
	}
	id = strings.TrimSpace(id)
	for _, l := range s.all {
		if string(l.ID) == id {
			return l, true
		}
	}
	return s.all[0], true
}

// Recommend picks up to n random listings other than the one with id.
func (s *Store) Recommend(id string, n int, rng *rand.Rand) []domain.Listing {
	s.mu.RLock()
	pool := make([]domain.Listing, 0, len(s.all))
	for _, l := range s.all {
		if string(l.ID) != id {
			pool = append(pool, l)
		}
	}
	s.mu.RUnlock()

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if n < len(pool) {
		pool = pool[:max(n, 0)]
	}
	return pool
}

// Categories lists distinct non-empty categories in first-seen order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, l := range s.all {
		c := strings.TrimSpace(l.Category)
		if c == "" || seen[strings.ToLower(c)] {
			continue
		}
		seen[strings.ToLower(c)] = true
		out = append(out, c)
	}
	return out
}
