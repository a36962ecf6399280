// Package memory provides an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/JakeFAU/page-analyzer/internal/analyzer"
	"github.com/JakeFAU/page-analyzer/internal/clock/system"
)

// Repository implements analyzer.Repository with maps guarded by a mutex.
// It mirrors the Postgres store's ordering and tie-break rules.
type Repository struct {
	mu      sync.RWMutex
	clock   analyzer.Clock
	urls    map[int64]analyzer.URL
	byName  map[string]int64
	checks  map[int64][]analyzer.Check
	nextURL int64
	nextChk int64
}

var _ analyzer.Repository = (*Repository)(nil)

// NewRepository constructs a Repository. A nil clock uses the system clock.
func NewRepository(clock analyzer.Clock) *Repository {
	if clock == nil {
		clock = system.New()
	}
	return &Repository{
		clock:  clock,
		urls:   make(map[int64]analyzer.URL),
		byName: make(map[string]int64),
		checks: make(map[int64][]analyzer.Check),
	}
}

// FindURLIDByName returns the id registered under name.
func (r *Repository) FindURLIDByName(_ context.Context, name string) (int64, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok, nil
}

// InsertURL stores name and returns its id. Like the Postgres store it does not deduplicate;
// lookups by name keep returning the first id.
func (r *Repository) InsertURL(_ context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(name), nil
}

// RegisterURL returns the existing id for name or inserts it atomically.
func (r *Repository) RegisterURL(_ context.Context, name string) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byName[name]; ok {
		return id, true, nil
	}
	return r.insertLocked(name), false, nil
}

func (r *Repository) insertLocked(name string) int64 {
	r.nextURL++
	id := r.nextURL
	r.urls[id] = analyzer.URL{ID: id, Name: name, CreatedAt: analyzer.DateOf(r.clock.Now())}
	if _, exists := r.byName[name]; !exists {
		r.byName[name] = id
	}
	return id
}

// FindURLByID fetches a URL by id.
func (r *Repository) FindURLByID(_ context.Context, id int64) (analyzer.URL, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.urls[id]
	return u, ok, nil
}

// InsertCheck appends a check dated today.
func (r *Repository) InsertCheck(_ context.Context, check analyzer.Check) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextChk++
	check.ID = r.nextChk
	check.CreatedAt = analyzer.DateOf(r.clock.Now())
	r.checks[check.URLID] = append(r.checks[check.URLID], check)
	return nil
}

// ListChecksForURL returns a copy of the checks for urlID in insertion order.
func (r *Repository) ListChecksForURL(_ context.Context, urlID int64) ([]analyzer.Check, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	checks := r.checks[urlID]
	out := make([]analyzer.Check, len(checks))
	copy(out, checks)
	return out, nil
}

// ListURLsWithLastCheck returns every URL newest first with its latest check.
// Same-day checks resolve to the highest id.
func (r *Repository) ListURLsWithLastCheck(_ context.Context) ([]analyzer.URLSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]analyzer.URLSummary, 0, len(r.urls))
	for id, u := range r.urls {
		summary := analyzer.URLSummary{URL: u}
		var latest *analyzer.Check
		for i := range r.checks[id] {
			c := &r.checks[id][i]
			if latest == nil || c.CreatedAt.After(latest.CreatedAt) ||
				(c.CreatedAt.Equal(latest.CreatedAt) && c.ID > latest.ID) {
				latest = c
			}
		}
		if latest != nil {
			summary.LastCheck = &analyzer.CheckSummary{CreatedAt: latest.CreatedAt, StatusCode: latest.StatusCode}
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL.ID > out[j].URL.ID })
	return out, nil
}

// Ping always succeeds.
func (r *Repository) Ping(context.Context) error { return nil }
