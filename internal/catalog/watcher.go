package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"library_catalog/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookLister reads the whole books collection
type BookLister interface {
	FindAll(ctx context.Context) ([]model.Book, error)
}

// UserLister reads the whole users collection
type UserLister interface {
	FindAll(ctx context.Context) ([]model.User, error)
}

// ChangeSource blocks until the store reports a change
type ChangeSource interface {
	WaitForChange(ctx context.Context) error
	Close()
}

// Connector opens a ChangeSource that is already listening
type Connector func(ctx context.Context) (ChangeSource, error)

// Watcher keeps a Mirror in sync with the store and publishes every new snapshot
type Watcher struct {
	books   BookLister
	users   UserLister
	mirror  *Mirror
	hub     *Hub
	connect Connector
	retry   time.Duration
}

func NewWatcher(books BookLister, users UserLister, mirror *Mirror, hub *Hub, connect Connector, retry time.Duration) *Watcher {
	return &Watcher{books: books, users: users, mirror: mirror, hub: hub, connect: connect, retry: retry}
}

// Refresh reads both collections and replaces the mirror wholesale
func (w *Watcher) Refresh(ctx context.Context) error {
	books, err := w.books.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load books: %w", err)
	}
	users, err := w.users.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	snap := w.mirror.Replace(books, users)
	w.hub.Publish(snap)
	slog.Debug("catalog refreshed", "version", snap.Version, "books", snap.Stats.Total, "users", snap.Stats.Users)
	return nil
}

// Run listens for changes until ctx is cancelled, reconnecting after failures
func (w *Watcher) Run(ctx context.Context) error {
	for {
		err := w.watch(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("catalog watch interrupted, reconnecting", "error", err, "retry_in", w.retry)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.retry):
		}
	}
}

func (w *Watcher) watch(ctx context.Context) error {
	src, err := w.connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to changes: %w", err)
	}
	defer src.Close()

	// Changes made between the last snapshot and LISTEN would otherwise be missed
	if err := w.Refresh(ctx); err != nil {
		return err
	}
	for {
		if err := src.WaitForChange(ctx); err != nil {
			return err
		}
		if err := w.Refresh(ctx); err != nil {
			return err
		}
	}
}

type pgListener struct {
	conn *pgxpool.Conn
}

// PgConnector listens on a Postgres NOTIFY channel using a dedicated pool connection
func PgConnector(pool *pgxpool.Pool, channel string) Connector {
	return func(ctx context.Context) (ChangeSource, error) {
		conn, err := pool.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
			conn.Release()
			return nil, err
		}
		return &pgListener{conn: conn}, nil
	}
}

func (l *pgListener) WaitForChange(ctx context.Context) error {
	_, err := l.conn.Conn().WaitForNotification(ctx)
	return err
}

func (l *pgListener) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := l.conn.Exec(ctx, "UNLISTEN *"); err != nil {
		// Don't hand a connection in an unknown state back to the pool
		l.conn.Conn().Close(ctx)
	}
	l.conn.Release()
}
