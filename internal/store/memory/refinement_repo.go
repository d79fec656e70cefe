package memory

import (
	"context"
	"sync"

	"github.com/cryptoganster/content-pipeline/internal/domain/refinement"
	"github.com/cryptoganster/content-pipeline/internal/errs"
)

type RefinementRepo struct {
	mu          sync.Mutex
	refinements map[string]refinement.Refinement
}

func NewRefinementRepo() *RefinementRepo {
	return &RefinementRepo{refinements: make(map[string]refinement.Refinement)}
}

func (r *RefinementRepo) Save(ctx context.Context, ref *refinement.Refinement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.refinements[ref.ID]
	if ref.Version == 0 && !ok {
		r.refinements[ref.ID] = cloneRefinement(ref)
		return nil
	}
	if !ok || existing.Version != ref.Version {
		return errs.NewConcurrency("ContentRefinement", ref.ID, ref.Version)
	}
	ref.Version++
	r.refinements[ref.ID] = cloneRefinement(ref)
	return nil
}

func (r *RefinementRepo) Get(ctx context.Context, id string) (*refinement.Refinement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.refinements[id]
	if !ok {
		return nil, errs.NewNotFound("ContentRefinement", id)
	}
	out := cloneRefinement(&ref)
	return &out, nil
}

func (r *RefinementRepo) GetByContentItemID(ctx context.Context, contentItemID string) (*refinement.Refinement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *refinement.Refinement
	for _, ref := range r.refinements {
		ref := ref
		if ref.ContentItemID != contentItemID {
			continue
		}
		if latest == nil || refStartedAfter(ref, *latest) {
			latest = &ref
		}
	}
	if latest == nil {
		return nil, errs.NewNotFound("ContentRefinement", contentItemID)
	}
	out := cloneRefinement(latest)
	return &out, nil
}

// GetNonTerminalByContentItemID mirrors the Postgres repo's WHERE status
// NOT IN (...) filter over the in-memory map.
func (r *RefinementRepo) GetNonTerminalByContentItemID(ctx context.Context, contentItemID string) (*refinement.Refinement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *refinement.Refinement
	for _, ref := range r.refinements {
		ref := ref
		if ref.ContentItemID != contentItemID || ref.Status.IsTerminal() {
			continue
		}
		if latest == nil || refStartedAfter(ref, *latest) {
			latest = &ref
		}
	}
	if latest == nil {
		return nil, errs.NewNotFound("ContentRefinement", contentItemID)
	}
	out := cloneRefinement(latest)
	return &out, nil
}

func refStartedAfter(a, b refinement.Refinement) bool {
	if a.StartedAt == nil {
		return false
	}
	if b.StartedAt == nil {
		return true
	}
	return a.StartedAt.After(*b.StartedAt)
}

func cloneRefinement(ref *refinement.Refinement) refinement.Refinement {
	out := *ref
	out.Chunks = append([]refinement.Chunk(nil), ref.Chunks...)
	for i, c := range out.Chunks {
		out.Chunks[i].Entities = append([]refinement.Entity(nil), c.Entities...)
	}
	return out
}
