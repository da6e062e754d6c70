package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	biostream "github.com/bigyambat/BioStream"
	"github.com/bigyambat/BioStream/storetest"
)

// The suite needs a disposable database; its tables are dropped between
// subtests.
func TestStore(t *testing.T) {
	dsn := os.Getenv("BIOSTREAM_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("BIOSTREAM_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	storetest.Run(t, func(t *testing.T) biostream.Store {
		s := New(pool)
		require.NoError(t, s.DropSchema(ctx))
		require.NoError(t, s.CreateSchema(ctx))
		return s
	})
}
