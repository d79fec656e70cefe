package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cryptoganster/content-pipeline/internal/errs"
	"github.com/cryptoganster/content-pipeline/internal/store"
)

// ChunkTallyRepo backs the fan-in synchronizer (spec §4.5/§4.9) with a
// single-row-per-refinement UPDATE...RETURNING, relying on Postgres row
// locking rather than the aggregate's optimistic-concurrency version to
// serialize concurrent increments — the tally is a counter, not an
// aggregate snapshot, so CAS-and-retry would just add contention for no
// benefit over letting the database order the writes.
type ChunkTallyRepo struct {
	db *sql.DB
}

func NewChunkTallyRepo(db *sql.DB) *ChunkTallyRepo {
	return &ChunkTallyRepo{db: db}
}

func (r *ChunkTallyRepo) Init(ctx context.Context, refinementID string, total int) error {
	query := `INSERT INTO refinement_chunk_tallies (refinement_id, total, processed, valid)
		VALUES ($1, $2, 0, 0)
		ON CONFLICT (refinement_id) DO UPDATE SET total = $2, processed = 0, valid = 0`
	_, err := r.db.ExecContext(ctx, query, refinementID, total)
	return err
}

func (r *ChunkTallyRepo) Increment(ctx context.Context, refinementID string, passed bool) (store.ChunkTally, error) {
	validDelta := 0
	if passed {
		validDelta = 1
	}
	query := `UPDATE refinement_chunk_tallies
		SET processed = processed + 1, valid = valid + $1
		WHERE refinement_id = $2
		RETURNING refinement_id, total, processed, valid`
	var t store.ChunkTally
	err := r.db.QueryRowContext(ctx, query, validDelta, refinementID).Scan(&t.RefinementID, &t.Total, &t.Processed, &t.Valid)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ChunkTally{}, errs.NewNotFound("ChunkTally", refinementID)
	}
	return t, err
}

func (r *ChunkTallyRepo) Get(ctx context.Context, refinementID string) (store.ChunkTally, error) {
	query := `SELECT refinement_id, total, processed, valid FROM refinement_chunk_tallies WHERE refinement_id = $1`
	var t store.ChunkTally
	err := r.db.QueryRowContext(ctx, query, refinementID).Scan(&t.RefinementID, &t.Total, &t.Processed, &t.Valid)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ChunkTally{}, errs.NewNotFound("ChunkTally", refinementID)
	}
	return t, err
}
