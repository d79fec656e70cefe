package commands

import (
	"context"
	"fmt"

	"github.com/cryptoganster/content-pipeline/internal/errs"
)

const addChunkMaxAttempts = 5

// AddChunkToRefinement appends a passed chunk to the aggregate under
// optimistic concurrency. Chunks from the same refinement's fan-out arrive
// concurrently and each attempts a CAS write against the same row, so a
// lost race is retried a bounded number of times rather than surfaced as a
// failure of the whole enrichment.
func (h *Handlers) AddChunkToRefinement(ctx context.Context, cmd AddChunkToRefinement) error {
	var lastErr error
	for attempt := 0; attempt < addChunkMaxAttempts; attempt++ {
		r, err := h.Refinements.Get(ctx, cmd.RefinementID)
		if err != nil {
			return fmt.Errorf("addChunkToRefinement: load: %w", err)
		}
		if err := r.AddChunk(cmd.Chunk); err != nil {
			return err
		}
		err = h.Refinements.Save(ctx, r)
		if err == nil {
			return nil
		}
		if _, ok := err.(*errs.ConcurrencyError); !ok {
			return fmt.Errorf("addChunkToRefinement: save: %w", err)
		}
		lastErr = err
	}
	return fmt.Errorf("addChunkToRefinement: exhausted retries: %w", lastErr)
}
