// Package catalog keeps an in-memory mirror of the book and member collections, derives the
// aggregate counts, and answers searches without going back to the database.
package catalog

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"library_catalog/internal/model"
)

// Snapshot is one immutable delivery of the full catalog. Readers must not modify it.
type Snapshot struct {
	Books       []model.Book
	Users       []model.UserEntry
	Stats       model.CatalogStats
	Version     uint64
	RefreshedAt time.Time
}

// Book looks a book up by ID
func (s *Snapshot) Book(id int64) (model.Book, bool) {
	for _, b := range s.Books {
		if b.ID == id {
			return b, true
		}
	}
	return model.Book{}, false
}

// EligibleUsers returns the members holding fewer than maxActive books, in store order
func (s *Snapshot) EligibleUsers(maxActive int) []model.UserEntry {
	eligible := make([]model.UserEntry, 0, len(s.Users))
	for _, u := range s.Users {
		if u.ActiveBooks < maxActive {
			eligible = append(eligible, u)
		}
	}
	return eligible
}

// Mirror holds the latest snapshot. Replace swaps in a whole new snapshot; readers always see
// either the old one or the new one.
type Mirror struct {
	mu      sync.Mutex // serializes writers
	current atomic.Pointer[Snapshot]
}

// NewMirror returns an empty mirror at version 0
func NewMirror() *Mirror {
	m := &Mirror{}
	m.current.Store(&Snapshot{Books: []model.Book{}, Users: []model.UserEntry{}})
	return m
}

// Snapshot returns the current snapshot
func (m *Mirror) Snapshot() *Snapshot {
	return m.current.Load()
}

// Replace rebuilds the mirror from full collection reads
func (m *Mirror) Replace(books []model.Book, users []model.User) *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := build(books, users)
	next.Version = m.current.Load().Version + 1
	next.RefreshedAt = time.Now()
	m.current.Store(next)
	return next
}

func build(books []model.Book, users []model.User) *Snapshot {
	sorted := make([]model.Book, len(books))
	copy(sorted, books)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	active := make(map[int64]int)
	available := 0
	for _, b := range sorted {
		if b.Status == model.StatusAvailable {
			available++
			continue
		}
		if b.IssuedTo != nil {
			active[b.IssuedTo.ID]++
		}
	}

	entries := make([]model.UserEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, model.UserEntry{User: u, ActiveBooks: active[u.ID]})
	}

	return &Snapshot{
		Books: sorted,
		Users: entries,
		Stats: model.CatalogStats{
			Total:     len(sorted),
			Available: available,
			Issued:    len(sorted) - available,
			Users:     len(entries),
		},
	}
}
