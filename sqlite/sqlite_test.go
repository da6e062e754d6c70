package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	biostream "github.com/bigyambat/BioStream"
	"github.com/bigyambat/BioStream/storetest"
)

func newStore(t *testing.T) biostream.Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.CreateSchema(context.Background()))
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, newStore)
}

func TestFileDatabasePersists(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "biostream.db")

	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s.CreateSchema(ctx))
	p := storetest.Project("p1", time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, s.SaveProject(ctx, p))
	require.NoError(t, s.Close())

	s, err = Open(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Nodes, 3)

	// Cascades need foreign keys on every pooled connection.
	require.NoError(t, s.DeleteProject(ctx, "p1"))
	edges, err := s.ListEdges(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestConnectionDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_foreign_keys=on", connectionDSN(":memory:", true))
	assert.Equal(t, "a.db?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=30000&_synchronous=NORMAL",
		connectionDSN("a.db", false))
	assert.Equal(t, "a.db?mode=ro&_fk=1&_journal_mode=WAL&_timeout=5&_synchronous=NORMAL",
		connectionDSN("a.db?mode=ro&_fk=1&_timeout=5", false), "caller settings win")
}

func TestPragmasOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "pool.db"))
	require.NoError(t, err)
	defer s.Close()

	// Holding the connections open forces the pool to dial new ones.
	var conns []*sqlx.Conn
	for range 3 {
		c, err := s.DB().Connx(ctx)
		require.NoError(t, err)
		conns = append(conns, c)
	}
	for _, c := range conns {
		var timeout, fk, sync int
		var mode string
		require.NoError(t, c.GetContext(ctx, &timeout, "PRAGMA busy_timeout"))
		require.NoError(t, c.GetContext(ctx, &fk, "PRAGMA foreign_keys"))
		require.NoError(t, c.GetContext(ctx, &sync, "PRAGMA synchronous"))
		require.NoError(t, c.GetContext(ctx, &mode, "PRAGMA journal_mode"))
		assert.Equal(t, 30000, timeout)
		assert.Equal(t, 1, fk)
		assert.Equal(t, 1, sync, "NORMAL")
		assert.Equal(t, "wal", mode)
		require.NoError(t, c.Close())
	}
}
