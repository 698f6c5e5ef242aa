package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"library_catalog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu    sync.Mutex
	books []model.Book
	users []model.User
	err   error
}

func (f *fakeStore) set(books []model.Book) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books = books
}

type bookSide struct{ *fakeStore }

func (s bookSide) FindAll(context.Context) ([]model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Book(nil), s.books...), s.err
}

type userSide struct{ *fakeStore }

func (s userSide) FindAll(context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.User(nil), s.users...), nil
}

type chanSource struct {
	changes chan struct{}
	closed  chan struct{}
}

func (c *chanSource) WaitForChange(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case _, ok := <-c.changes:
		if !ok {
			return errors.New("connection lost")
		}
		return nil
	}
}

func (c *chanSource) Close() { close(c.closed) }

func TestWatcher_Refresh(t *testing.T) {
	store := &fakeStore{
		books: []model.Book{availableBook(1, "Dune", 0)},
		users: []model.User{{ID: 1, Name: "Asha"}},
	}
	mirror := NewMirror()
	hub := NewHub()
	sub, cancel := hub.Subscribe()
	defer cancel()

	w := NewWatcher(bookSide{store}, userSide{store}, mirror, hub, nil, time.Millisecond)
	require.NoError(t, w.Refresh(context.Background()))

	snap := <-sub
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, 1, snap.Stats.Total)
	assert.Equal(t, 1, snap.Stats.Users)
	assert.Same(t, snap, mirror.Snapshot())
}

func TestWatcher_RefreshErrorKeepsMirror(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	mirror := NewMirror()
	w := NewWatcher(bookSide{store}, userSide{store}, mirror, NewHub(), nil, time.Millisecond)

	err := w.Refresh(context.Background())

	assert.Error(t, err)
	assert.Equal(t, uint64(0), mirror.Snapshot().Version)
}

func TestWatcher_RunRefreshesOnEveryChange(t *testing.T) {
	store := &fakeStore{books: []model.Book{availableBook(1, "Dune", 0)}}
	mirror := NewMirror()
	hub := NewHub()
	sub, cancel := hub.Subscribe()
	defer cancel()

	src := &chanSource{changes: make(chan struct{}), closed: make(chan struct{})}
	connect := func(context.Context) (ChangeSource, error) { return src, nil }
	w := NewWatcher(bookSide{store}, userSide{store}, mirror, hub, connect, time.Millisecond)

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	initial := <-sub
	assert.Equal(t, 1, initial.Stats.Total)

	store.set([]model.Book{availableBook(1, "Dune", 0), availableBook(2, "Emma", 0)})
	src.changes <- struct{}{}

	updated := <-sub
	assert.Equal(t, 2, updated.Stats.Total)
	assert.Greater(t, updated.Version, initial.Version)

	stop()
	assert.ErrorIs(t, <-done, context.Canceled)
	<-src.closed
}

func TestWatcher_RunReconnects(t *testing.T) {
	store := &fakeStore{}
	mirror := NewMirror()
	hub := NewHub()

	var mu sync.Mutex
	attempts := 0
	connect := func(context.Context) (ChangeSource, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return nil, errors.New("refused")
		}
		src := &chanSource{changes: make(chan struct{}), closed: make(chan struct{})}
		return src, nil
	}
	w := NewWatcher(bookSide{store}, userSide{store}, mirror, hub, connect, time.Millisecond)

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return mirror.Snapshot().Version >= 1 }, time.Second, 5*time.Millisecond)
	stop()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, attempts, 2)
}
