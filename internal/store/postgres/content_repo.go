package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/cryptoganster/content-pipeline/internal/domain/content"
	"github.com/cryptoganster/content-pipeline/internal/errs"
)

type ContentRepo struct {
	db *sql.DB
}

func NewContentRepo(db *sql.DB) *ContentRepo {
	return &ContentRepo{db: db}
}

// Save inserts a ContentItem. Items are immutable once persisted (spec §4.2
// names no update operation), so Save is insert-only; a duplicate hash is
// rejected by the ContentItem store's UNIQUE constraint on content_hash,
// matching the exact-match duplicate check in DetectDuplicate.
func (r *ContentRepo) Save(ctx context.Context, c *content.Item) error {
	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return err
	}
	assetTags, err := json.Marshal(c.AssetTags)
	if err != nil {
		return err
	}

	query := `INSERT INTO content_items
		(id, source_id, content_hash, raw_content, normalized_content, metadata, asset_tags, collected_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0)`
	_, err = r.db.ExecContext(ctx, query, c.ID, c.SourceID, c.ContentHash, c.RawContent, c.NormalizedContent, metadata, assetTags, c.CollectedAt)
	return err
}

func (r *ContentRepo) Get(ctx context.Context, id string) (*content.Item, error) {
	query := `SELECT id, source_id, content_hash, raw_content, normalized_content, metadata, asset_tags, collected_at, version
		FROM content_items WHERE id = $1`
	item, err := scanContentItem(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFound("ContentItem", id)
	}
	return item, err
}

func (r *ContentRepo) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM content_items WHERE content_hash = $1)`
	err := r.db.QueryRowContext(ctx, query, hash).Scan(&exists)
	return exists, err
}

func (r *ContentRepo) GetByHash(ctx context.Context, hash string) (*content.Item, error) {
	query := `SELECT id, source_id, content_hash, raw_content, normalized_content, metadata, asset_tags, collected_at, version
		FROM content_items WHERE content_hash = $1`
	item, err := scanContentItem(r.db.QueryRowContext(ctx, query, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFound("ContentItem", hash)
	}
	return item, err
}

func (r *ContentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_items`).Scan(&count)
	return count, err
}

func scanContentItem(row rowScanner) (*content.Item, error) {
	var item content.Item
	var metadata, assetTags []byte
	err := row.Scan(&item.ID, &item.SourceID, &item.ContentHash, &item.RawContent, &item.NormalizedContent, &metadata, &assetTags, &item.CollectedAt, &item.Version)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metadata, &item.Metadata); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(assetTags, &item.AssetTags); err != nil {
		return nil, err
	}
	return &item, nil
}
