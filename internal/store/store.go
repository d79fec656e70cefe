// Package store defines the persistence ports every aggregate is written
// and read through. Concrete adapters (internal/store/postgres, and an
// in-memory fake for tests) implement these against the optimistic-
// concurrency protocol described in spec §4.7: version 0 inserts when no
// row with that id exists, any other save updates under a CAS WHERE clause
// on the aggregate's version, and a CAS miss surfaces errs.ConcurrencyError.
package store

import (
	"context"

	"github.com/cryptoganster/content-pipeline/internal/domain/content"
	"github.com/cryptoganster/content-pipeline/internal/domain/job"
	"github.com/cryptoganster/content-pipeline/internal/domain/refinement"
	"github.com/cryptoganster/content-pipeline/internal/domain/source"
)

// JobRepository persists and reconstitutes IngestionJob aggregates.
type JobRepository interface {
	Save(ctx context.Context, j *job.Job) error
	Get(ctx context.Context, id string) (*job.Job, error)
	ListBySource(ctx context.Context, sourceID string) ([]*job.Job, error)
	ListByStatus(ctx context.Context, status job.Status) ([]*job.Job, error)
	Count(ctx context.Context) (int, error)
}

// SourceRepository persists and reconstitutes SourceConfiguration
// aggregates.
type SourceRepository interface {
	Save(ctx context.Context, s *source.Source) error
	Get(ctx context.Context, id string) (*source.Source, error)
	List(ctx context.Context) ([]*source.Source, error)
	Count(ctx context.Context) (int, error)
}

// ContentRepository persists and reconstitutes ContentItem aggregates, and
// answers the authoritative duplicate check on contentHash.
type ContentRepository interface {
	Save(ctx context.Context, c *content.Item) error
	Get(ctx context.Context, id string) (*content.Item, error)
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	GetByHash(ctx context.Context, hash string) (*content.Item, error)
	Count(ctx context.Context) (int, error)
}

// RefinementRepository persists and reconstitutes ContentRefinement
// aggregates, including their Chunk entities.
type RefinementRepository interface {
	Save(ctx context.Context, r *refinement.Refinement) error
	Get(ctx context.Context, id string) (*refinement.Refinement, error)
	GetByContentItemID(ctx context.Context, contentItemID string) (*refinement.Refinement, error)
	GetNonTerminalByContentItemID(ctx context.Context, contentItemID string) (*refinement.Refinement, error)
}

// ChunkTally is the fan-in synchronizer row backing spec §4.5/§4.9: a
// single strong-consistent counter per refinement, updated by an atomic
// UPDATE ... SET processed = processed + 1, valid = valid + :d RETURNING.
type ChunkTally struct {
	RefinementID string
	Total        int
	Processed    int
	Valid        int
}

// ChunkTallyRepository is the fan-in synchronizer port. Implementations
// MUST perform Increment as a single atomic statement — see
// internal/store/postgres for the canonical UPDATE...RETURNING form and
// internal/store/memory for the mutex-guarded equivalent used in tests.
type ChunkTallyRepository interface {
	// Init creates (or resets) the tally row for a refinement once its total
	// chunk count is known, from ContentChunked.
	Init(ctx context.Context, refinementID string, total int) error
	// Increment atomically applies one chunk's outcome and returns the
	// resulting counters.
	Increment(ctx context.Context, refinementID string, passed bool) (ChunkTally, error)
	Get(ctx context.Context, refinementID string) (ChunkTally, error)
}
