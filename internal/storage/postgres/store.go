// Package postgres provides the Postgres-backed URL and check repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/page-analyzer/internal/analyzer"
	"github.com/JakeFAU/page-analyzer/internal/clock/system"
)

// Defaults mirror the MINCONN/MAXCONN environment defaults.
const (
	DefaultMinConns int32 = 2
	DefaultMaxConns int32 = 3
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MinConns        int32
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// DBTX is satisfied by pgx.Tx and by the pool itself.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Store implements analyzer.Repository. Every operation runs in its own transaction on a
// pooled connection; use WithTx to compose several operations in one transaction.
// A Store is constructed once at startup and closed once at shutdown.
type Store struct {
	pool  txPool
	clock analyzer.Clock
}

var _ analyzer.Repository = (*Store)(nil)

// NewStore creates a Postgres-backed Store using the provided config.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	poolCfg.MinConns, poolCfg.MaxConns = poolBounds(cfg.MinConns, cfg.MaxConns)
	if poolCfg.MinConns > poolCfg.MaxConns {
		return nil, fmt.Errorf("min conns %d exceeds max conns %d", poolCfg.MinConns, poolCfg.MaxConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool, clock: system.New()}, nil
}

func poolBounds(minConns, maxConns int32) (int32, int32) {
	if maxConns <= 0 {
		maxConns = DefaultMaxConns
	}
	if minConns <= 0 {
		minConns = min(DefaultMinConns, maxConns)
	}
	return minConns, maxConns
}

// NewStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewStoreWithPool(pool txPool, clock analyzer.Clock) (*Store, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	if clock == nil {
		clock = system.New()
	}
	return &Store{pool: pool, clock: clock}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Ping verifies a connection can be acquired and used.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return &analyzer.StorageError{Op: "ping", Err: err}
	}
	return nil
}

// WithTx runs fn inside a transaction on a pooled connection. The transaction commits when fn
// returns nil and rolls back otherwise, including on panic. The connection goes back to the
// pool on every path. Errors returned by fn are passed through unchanged.
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &analyzer.StorageError{Op: "begin", Err: err}
	}
	finished := false
	defer func() {
		if !finished {
			_ = tx.Rollback(ctx)
		}
	}()

	if fnErr := fn(&Queries{db: tx, clock: s.clock}); fnErr != nil {
		finished = true
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(fnErr, &analyzer.StorageError{Op: "rollback", Err: rbErr})
		}
		return fnErr
	}
	finished = true
	if err := tx.Commit(ctx); err != nil {
		return &analyzer.StorageError{Op: "commit", Err: err}
	}
	return nil
}

// FindURLIDByName returns the id of the URL registered under name, if any.
func (s *Store) FindURLIDByName(ctx context.Context, name string) (id int64, found bool, err error) {
	err = s.WithTx(ctx, func(q *Queries) error {
		id, found, err = q.FindURLIDByName(ctx, name)
		return err
	})
	return id, found, err
}

// InsertURL inserts name without checking for duplicates and returns the new id.
func (s *Store) InsertURL(ctx context.Context, name string) (id int64, err error) {
	err = s.WithTx(ctx, func(q *Queries) error {
		id, err = q.InsertURL(ctx, name)
		return err
	})
	return id, err
}

// RegisterURL returns the id for name, inserting it when absent. existed reports whether the
// URL was already registered, including when a concurrent registration won the insert.
func (s *Store) RegisterURL(ctx context.Context, name string) (id int64, existed bool, err error) {
	err = s.WithTx(ctx, func(q *Queries) error {
		id, existed, err = q.RegisterURL(ctx, name)
		return err
	})
	return id, existed, err
}

// FindURLByID fetches a single URL by primary key.
func (s *Store) FindURLByID(ctx context.Context, id int64) (u analyzer.URL, found bool, err error) {
	err = s.WithTx(ctx, func(q *Queries) error {
		u, found, err = q.FindURLByID(ctx, id)
		return err
	})
	return u, found, err
}

// InsertCheck records a check for check.URLID dated today.
func (s *Store) InsertCheck(ctx context.Context, check analyzer.Check) error {
	return s.WithTx(ctx, func(q *Queries) error {
		return q.InsertCheck(ctx, check)
	})
}

// ListChecksForURL returns every check of a URL in insertion order.
func (s *Store) ListChecksForURL(ctx context.Context, urlID int64) (checks []analyzer.Check, err error) {
	err = s.WithTx(ctx, func(q *Queries) error {
		checks, err = q.ListChecksForURL(ctx, urlID)
		return err
	})
	return checks, err
}

// ListURLsWithLastCheck returns one row per URL, newest URL first.
func (s *Store) ListURLsWithLastCheck(ctx context.Context) (rows []analyzer.URLSummary, err error) {
	err = s.WithTx(ctx, func(q *Queries) error {
		rows, err = q.ListURLsWithLastCheck(ctx)
		return err
	})
	return rows, err
}
