package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectomeRepository stores the synapse edges of imported circuits.
type ConnectomeRepository struct {
	pool *pgxpool.Pool
}

func NewConnectomeRepository(pool *pgxpool.Pool) *ConnectomeRepository {
	return &ConnectomeRepository{pool: pool}
}

// ConnectomeImport describes the last import of a circuit.
type ConnectomeImport struct {
	CircuitPath string    `json:"circuitPath"`
	SourceFile  string    `json:"sourceFile"`
	EdgeCount   int64     `json:"edgeCount"`
	ImportedAt  time.Time `json:"importedAt"`
}

// The ordinality keeps the per GID order of the request: results are grouped
// by requested GID, each group sorted ascending.
const afferentQuery = `
SELECT e.source_gid
FROM unnest($2::int[]) WITH ORDINALITY AS g(gid, ord)
JOIN connectome_edges e ON e.circuit_path = $1 AND e.target_gid = g.gid
ORDER BY g.ord, e.source_gid`

const efferentQuery = `
SELECT e.target_gid
FROM unnest($2::int[]) WITH ORDINALITY AS g(gid, ord)
JOIN connectome_edges e ON e.circuit_path = $1 AND e.source_gid = g.gid
ORDER BY g.ord, e.target_gid`

// AfferentGIDs returns, for each GID in order, the GIDs of the cells that
// project onto it, concatenated.
func (r *ConnectomeRepository) AfferentGIDs(ctx context.Context, circuitPath string, gids []uint32) ([]uint32, error) {
	return r.neighbours(ctx, afferentQuery, circuitPath, gids)
}

// EfferentGIDs returns, for each GID in order, the GIDs of the cells it
// projects onto, concatenated.
func (r *ConnectomeRepository) EfferentGIDs(ctx context.Context, circuitPath string, gids []uint32) ([]uint32, error) {
	return r.neighbours(ctx, efferentQuery, circuitPath, gids)
}

func (r *ConnectomeRepository) neighbours(ctx context.Context, query, circuitPath string, gids []uint32) ([]uint32, error) {
	if len(gids) == 0 {
		return []uint32{}, nil
	}

	ids := make([]int32, len(gids))
	for i, gid := range gids {
		ids[i] = int32(gid)
	}

	rows, err := r.pool.Query(ctx, query, circuitPath, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query connectome of %s: %w", circuitPath, err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return nil, fmt.Errorf("failed to collect connectome of %s: %w", circuitPath, err)
	}

	result := make([]uint32, len(found))
	for i, gid := range found {
		result[i] = uint32(gid)
	}
	return result, nil
}

// GetImport returns the import record of a circuit. It fails with
// pgx.ErrNoRows when the circuit was never imported.
func (r *ConnectomeRepository) GetImport(ctx context.Context, circuitPath string) (*ConnectomeImport, error) {
	rows, err := r.pool.Query(ctx, `
SELECT circuit_path, source_file, edge_count, imported_at
FROM connectome_imports
WHERE circuit_path = @circuit_path`, pgx.NamedArgs{"circuit_path": circuitPath})
	if err != nil {
		return nil, fmt.Errorf("failed to query connectome import of %s: %w", circuitPath, err)
	}

	imp, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByPos[ConnectomeImport])
	if err != nil {
		return nil, fmt.Errorf("table:connectome_imports: circuit %s: %w", circuitPath, err)
	}
	return imp, nil
}

// ReplaceEdges swaps the edges of a circuit for the ones read from edges,
// in one transaction. Duplicated pairs are stored once. It returns the
// number of distinct edges stored.
func (r *ConnectomeRepository) ReplaceEdges(ctx context.Context, circuitPath, sourceFile string, edges pgx.CopyFromSource) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin connectome import: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
CREATE TEMPORARY TABLE connectome_staging (
    source_gid INTEGER NOT NULL,
    target_gid INTEGER NOT NULL
) ON COMMIT DROP`); err != nil {
		return 0, fmt.Errorf("failed to create staging table: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"connectome_staging"},
		[]string{"source_gid", "target_gid"},
		edges,
	); err != nil {
		return 0, fmt.Errorf("failed to copy edges of %s: %w", circuitPath, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM connectome_edges WHERE circuit_path = $1`, circuitPath); err != nil {
		return 0, fmt.Errorf("failed to clear edges of %s: %w", circuitPath, err)
	}

	tag, err := tx.Exec(ctx, `
INSERT INTO connectome_edges (circuit_path, source_gid, target_gid)
SELECT DISTINCT $1::text, source_gid, target_gid FROM connectome_staging`, circuitPath)
	if err != nil {
		return 0, fmt.Errorf("failed to store edges of %s: %w", circuitPath, err)
	}
	count := tag.RowsAffected()

	if _, err := tx.Exec(ctx, `
INSERT INTO connectome_imports (circuit_path, source_file, edge_count, imported_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (circuit_path) DO UPDATE
SET source_file = EXCLUDED.source_file,
    edge_count = EXCLUDED.edge_count,
    imported_at = EXCLUDED.imported_at`, circuitPath, sourceFile, count); err != nil {
		return 0, fmt.Errorf("failed to record import of %s: %w", circuitPath, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit connectome import: %w", err)
	}
	return count, nil
}
