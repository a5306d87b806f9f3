package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/webbrayns-backend/internal/database"
	"github.com/deppfellow/webbrayns-backend/internal/lib/connectome"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool connects to the database named by WEBBRAYNS_TEST_DATABASE_URL and
// migrates it. The test is skipped when the variable is not set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("WEBBRAYNS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("WEBBRAYNS_TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, "schema_version")
	require.NoError(t, err)
	require.NoError(t, m.LoadMigrations(database.Migrations()))
	require.NoError(t, m.Migrate(ctx))

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestConnectomeRepository(t *testing.T) {
	pool := testPool(t)
	repo := NewConnectomeRepository(pool)
	ctx := context.Background()

	circuit := "/gpfs/bbp.cscs.ch/project/test/" + t.Name()
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM connectome_edges WHERE circuit_path = $1`, circuit)
		_, _ = pool.Exec(ctx, `DELETE FROM connectome_imports WHERE circuit_path = $1`, circuit)
	})

	_, err := repo.GetImport(ctx, circuit)
	require.ErrorIs(t, err, pgx.ErrNoRows)

	edges := connectome.NewEdgeReader(strings.NewReader("source,target\n1,3\n2,3\n2,3\n3,1\n4,3\n"))
	count, err := repo.ReplaceEdges(ctx, circuit, "edges.csv", edges)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	afferent, err := repo.AfferentGIDs(ctx, circuit, []uint32{3, 1, 99})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 4, 3}, afferent)

	efferent, err := repo.EfferentGIDs(ctx, circuit, []uint32{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 1}, efferent)

	empty, err := repo.AfferentGIDs(ctx, circuit, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	imp, err := repo.GetImport(ctx, circuit)
	require.NoError(t, err)
	assert.Equal(t, "edges.csv", imp.SourceFile)
	assert.Equal(t, int64(4), imp.EdgeCount)

	// A second import replaces the first one.
	count, err = repo.ReplaceEdges(ctx, circuit, "other.csv", connectome.NewEdgeReader(strings.NewReader("5,6\n")))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	afferent, err = repo.AfferentGIDs(ctx, circuit, []uint32{3, 6})
	require.NoError(t, err)
	assert.Equal(t, []uint32{5}, afferent)
}
