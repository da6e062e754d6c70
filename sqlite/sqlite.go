// Package sqlite implements biostream.Store on SQLite using sqlx and
// mattn/go-sqlite3. It is the single-user backend: one file per workspace,
// or ":memory:" for tests.
package sqlite

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is fixed width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements biostream.Store on a SQLite database.
type Store struct {
	db *sqlx.DB
}

// New wraps an open database. Foreign keys must be enabled on every
// connection of db for cascading deletes to work; Open takes care of that.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open opens the database at dsn. Foreign keys are enabled on every
// connection; file databases also get WAL journaling, a busy timeout and
// normal synchronous mode. The schema is not created; call CreateSchema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	memory := strings.Contains(dsn, ":memory:")
	db, err := sqlx.Open("sqlite3", connectionDSN(dsn, memory))
	if err != nil {
		return nil, fmt.Errorf("biostream: open sqlite: %w", err)
	}
	if memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("biostream: ping sqlite: %w", err)
	}
	return New(db), nil
}

// connOption is a per-connection driver setting and the DSN keys that
// already set it.
type connOption struct {
	keys  []string
	value string
}

// connectionDSN adds the per-connection settings to dsn, keeping any the
// caller already chose. Pragmas run through a pooled handle would reach a
// single connection only.
func connectionDSN(dsn string, memory bool) string {
	opts := []connOption{{keys: []string{"_foreign_keys", "_fk"}, value: "on"}}
	if !memory {
		opts = append(opts,
			connOption{keys: []string{"_journal_mode", "_journal"}, value: "WAL"},
			connOption{keys: []string{"_busy_timeout", "_timeout"}, value: "30000"},
			connOption{keys: []string{"_synchronous", "_sync"}, value: "NORMAL"},
		)
	}
	for _, o := range opts {
		if hasOption(dsn, o.keys) {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + o.keys[0] + "=" + o.value
	}
	return dsn
}

func hasOption(dsn string, keys []string) bool {
	_, query, ok := strings.Cut(dsn, "?")
	if !ok {
		return false
	}
	for _, kv := range strings.Split(query, "&") {
		name, _, _ := strings.Cut(kv, "=")
		if slices.Contains(keys, name) {
			return true
		}
	}
	return false
}

// DB returns the underlying handle.
func (s *Store) DB() *sqlx.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("biostream: parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
