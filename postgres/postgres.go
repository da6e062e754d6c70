// Package postgres persists BioStream projects in PostgreSQL through a pgx
// connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	biostream "github.com/bigyambat/BioStream"
)

// PGStore is a biostream.Store on a pgx pool. The pool is owned by the
// caller.
type PGStore struct {
	db *pgxpool.Pool
}

var _ biostream.Store = (*PGStore)(nil)

// New returns a store on db.
func New(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// Connect opens a pool for dsn and checks it answers.
func Connect(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("biostream: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("biostream: ping postgres: %w", err)
	}
	return New(pool), nil
}

// Pool returns the underlying pool.
func (s *PGStore) Pool() *pgxpool.Pool { return s.db }

// Close closes the pool.
func (s *PGStore) Close() { s.db.Close() }

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
