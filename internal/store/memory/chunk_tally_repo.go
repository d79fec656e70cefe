package memory

import (
	"context"
	"sync"

	"github.com/cryptoganster/content-pipeline/internal/errs"
	"github.com/cryptoganster/content-pipeline/internal/store"
)

// ChunkTallyRepo guards the single tally map with one mutex so Increment
// is atomic the same way the Postgres repo's single UPDATE...RETURNING
// statement is atomic under a row lock.
type ChunkTallyRepo struct {
	mu      sync.Mutex
	tallies map[string]store.ChunkTally
}

func NewChunkTallyRepo() *ChunkTallyRepo {
	return &ChunkTallyRepo{tallies: make(map[string]store.ChunkTally)}
}

func (r *ChunkTallyRepo) Init(ctx context.Context, refinementID string, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tallies[refinementID] = store.ChunkTally{RefinementID: refinementID, Total: total}
	return nil
}

func (r *ChunkTallyRepo) Increment(ctx context.Context, refinementID string, passed bool) (store.ChunkTally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tallies[refinementID]
	if !ok {
		return store.ChunkTally{}, errs.NewNotFound("ChunkTally", refinementID)
	}
	t.Processed++
	if passed {
		t.Valid++
	}
	r.tallies[refinementID] = t
	return t, nil
}

func (r *ChunkTallyRepo) Get(ctx context.Context, refinementID string) (store.ChunkTally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tallies[refinementID]
	if !ok {
		return store.ChunkTally{}, errs.NewNotFound("ChunkTally", refinementID)
	}
	return t, nil
}
