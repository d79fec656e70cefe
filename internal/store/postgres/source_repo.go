package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/cryptoganster/content-pipeline/internal/domain/source"
	"github.com/cryptoganster/content-pipeline/internal/errs"
)

type SourceRepo struct {
	db *sql.DB
}

func NewSourceRepo(db *sql.DB) *SourceRepo {
	return &SourceRepo{db: db}
}

func (r *SourceRepo) Save(ctx context.Context, s *source.Source) error {
	config, err := json.Marshal(s.Config)
	if err != nil {
		return err
	}
	health, err := json.Marshal(s.Health)
	if err != nil {
		return err
	}

	if s.Version == 0 {
		query := `INSERT INTO source_configurations
			(id, source_type, name, config, credentials, is_active, health, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 0)
			ON CONFLICT (id) DO NOTHING`
		res, err := r.db.ExecContext(ctx, query, s.ID, s.SourceType, s.Name, config, s.Credentials, s.IsActive, health)
		if err != nil {
			return err
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if inserted == 1 {
			return nil
		}
	}

	query := `UPDATE source_configurations
		SET name = $1, config = $2, credentials = $3, is_active = $4, health = $5, version = version + 1
		WHERE id = $6 AND version = $7`
	res, err := r.db.ExecContext(ctx, query, s.Name, config, s.Credentials, s.IsActive, health, s.ID, s.Version)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errs.NewConcurrency("SourceConfiguration", s.ID, s.Version)
	}
	s.Version++
	return nil
}

func (r *SourceRepo) Get(ctx context.Context, id string) (*source.Source, error) {
	query := `SELECT id, source_type, name, config, credentials, is_active, health, version
		FROM source_configurations WHERE id = $1`
	s, err := scanSource(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFound("SourceConfiguration", id)
	}
	return s, err
}

func (r *SourceRepo) List(ctx context.Context) ([]*source.Source, error) {
	query := `SELECT id, source_type, name, config, credentials, is_active, health, version
		FROM source_configurations ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*source.Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SourceRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM source_configurations`).Scan(&count)
	return count, err
}

func scanSource(row rowScanner) (*source.Source, error) {
	var s source.Source
	var config, health []byte
	err := row.Scan(&s.ID, &s.SourceType, &s.Name, &config, &s.Credentials, &s.IsActive, &health, &s.Version)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(config, &s.Config); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(health, &s.Health); err != nil {
		return nil, err
	}
	return &s, nil
}
