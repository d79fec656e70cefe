package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/cryptoganster/content-pipeline/internal/domain/refinement"
	"github.com/cryptoganster/content-pipeline/internal/errs"
)

type RefinementRepo struct {
	db *sql.DB
}

func NewRefinementRepo(db *sql.DB) *RefinementRepo {
	return &RefinementRepo{db: db}
}

// Save persists the refinement row under the usual CAS protocol, then
// replaces its full chunk set inside the same transaction. Chunks are
// entities owned outright by the aggregate (spec §4.4: AddChunk only ever
// appends to the aggregate the fan-in handler already holds), so a whole-
// collection replace on every save is simpler than diffing and is safe
// since nothing outside the aggregate writes refinement_chunks.
func (r *RefinementRepo) Save(ctx context.Context, ref *refinement.Refinement) error {
	errRecord, err := json.Marshal(ref.Error)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	inserted := false
	if ref.Version == 0 {
		query := `INSERT INTO content_refinements
			(id, content_item_id, status, started_at, completed_at, rejected_at, rejection_reason, error, previous_refinement_id, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0)
			ON CONFLICT (id) DO NOTHING`
		res, err := tx.ExecContext(ctx, query, ref.ID, ref.ContentItemID, ref.Status, ref.StartedAt, ref.CompletedAt, ref.RejectedAt, ref.RejectionReason, errRecord, ref.PreviousRefinementID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		inserted = n == 1
	}
	if !inserted {
		query := `UPDATE content_refinements
			SET status = $1, started_at = $2, completed_at = $3, rejected_at = $4, rejection_reason = $5, error = $6, version = version + 1
			WHERE id = $7 AND version = $8`
		res, err := tx.ExecContext(ctx, query, ref.Status, ref.StartedAt, ref.CompletedAt, ref.RejectedAt, ref.RejectionReason, errRecord, ref.ID, ref.Version)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return errs.NewConcurrency("ContentRefinement", ref.ID, ref.Version)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM refinement_chunks WHERE refinement_id = $1`, ref.ID); err != nil {
		return err
	}
	for _, c := range ref.Chunks {
		entities, err := json.Marshal(c.Entities)
		if err != nil {
			return err
		}
		temporal, err := json.Marshal(c.TemporalContext)
		if err != nil {
			return err
		}
		quality, err := json.Marshal(c.QualityScore)
		if err != nil {
			return err
		}
		query := `INSERT INTO refinement_chunks
			(chunk_id, refinement_id, content, chunk_index, start_offset, end_offset, hash, entities, temporal_context, quality_score, previous_chunk_id, next_chunk_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
		if _, err := tx.ExecContext(ctx, query, c.ChunkID, ref.ID, c.Content, c.Position.Index, c.Position.StartOffset, c.Position.EndOffset, c.Hash, entities, temporal, quality, c.PreviousChunkID, c.NextChunkID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	if !inserted {
		ref.Version++
	}
	return nil
}

func (r *RefinementRepo) Get(ctx context.Context, id string) (*refinement.Refinement, error) {
	query := `SELECT id, content_item_id, status, started_at, completed_at, rejected_at, rejection_reason, error, previous_refinement_id, version
		FROM content_refinements WHERE id = $1`
	ref, err := scanRefinement(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFound("ContentRefinement", id)
	}
	if err != nil {
		return nil, err
	}
	chunks, err := r.loadChunks(ctx, id)
	if err != nil {
		return nil, err
	}
	ref.Chunks = chunks
	return ref, nil
}

func (r *RefinementRepo) GetByContentItemID(ctx context.Context, contentItemID string) (*refinement.Refinement, error) {
	query := `SELECT id, content_item_id, status, started_at, completed_at, rejected_at, rejection_reason, error, previous_refinement_id, version
		FROM content_refinements WHERE content_item_id = $1 ORDER BY started_at DESC NULLS LAST LIMIT 1`
	ref, err := scanRefinement(r.db.QueryRowContext(ctx, query, contentItemID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFound("ContentRefinement", contentItemID)
	}
	if err != nil {
		return nil, err
	}
	chunks, err := r.loadChunks(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	ref.Chunks = chunks
	return ref, nil
}

// GetNonTerminalByContentItemID backs the one-active-refinement-per-item
// invariant checked by StartRefinement and RerefineContent.
func (r *RefinementRepo) GetNonTerminalByContentItemID(ctx context.Context, contentItemID string) (*refinement.Refinement, error) {
	query := `SELECT id, content_item_id, status, started_at, completed_at, rejected_at, rejection_reason, error, previous_refinement_id, version
		FROM content_refinements
		WHERE content_item_id = $1 AND status NOT IN ($2, $3, $4)
		ORDER BY started_at DESC NULLS LAST LIMIT 1`
	ref, err := scanRefinement(r.db.QueryRowContext(ctx, query, contentItemID, refinement.StatusCompleted, refinement.StatusFailed, refinement.StatusRejected))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFound("ContentRefinement", contentItemID)
	}
	if err != nil {
		return nil, err
	}
	chunks, err := r.loadChunks(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	ref.Chunks = chunks
	return ref, nil
}

func (r *RefinementRepo) loadChunks(ctx context.Context, refinementID string) ([]refinement.Chunk, error) {
	query := `SELECT chunk_id, content, chunk_index, start_offset, end_offset, hash, entities, temporal_context, quality_score, previous_chunk_id, next_chunk_id
		FROM refinement_chunks WHERE refinement_id = $1 ORDER BY chunk_index`
	rows, err := r.db.QueryContext(ctx, query, refinementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []refinement.Chunk
	for rows.Next() {
		var c refinement.Chunk
		var entities, temporal, quality []byte
		err := rows.Scan(&c.ChunkID, &c.Content, &c.Position.Index, &c.Position.StartOffset, &c.Position.EndOffset, &c.Hash, &entities, &temporal, &quality, &c.PreviousChunkID, &c.NextChunkID)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(entities, &c.Entities); err != nil {
			return nil, err
		}
		if len(temporal) > 0 && string(temporal) != "null" {
			if err := json.Unmarshal(temporal, &c.TemporalContext); err != nil {
				return nil, err
			}
		}
		if err := json.Unmarshal(quality, &c.QualityScore); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanRefinement(row rowScanner) (*refinement.Refinement, error) {
	var ref refinement.Refinement
	var errRecord []byte
	err := row.Scan(&ref.ID, &ref.ContentItemID, &ref.Status, &ref.StartedAt, &ref.CompletedAt, &ref.RejectedAt, &ref.RejectionReason, &errRecord, &ref.PreviousRefinementID, &ref.Version)
	if err != nil {
		return nil, err
	}
	if len(errRecord) > 0 && string(errRecord) != "null" {
		if err := json.Unmarshal(errRecord, &ref.Error); err != nil {
			return nil, err
		}
	}
	return &ref, nil
}
