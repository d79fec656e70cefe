package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/cryptoganster/content-pipeline/internal/errs"
	revents "github.com/cryptoganster/content-pipeline/internal/refinement/events"
)

// FinalizeRefinement rejects the refinement if no chunk cleared the quality
// filter, else completes it. Idempotent: re-entry on an already-terminal
// refinement is a no-op (spec §4.5).
func (h *Handlers) FinalizeRefinement(ctx context.Context, cmd FinalizeRefinement) error {
	r, err := h.Refinements.Get(ctx, cmd.RefinementID)
	if err != nil {
		return fmt.Errorf("finalizeRefinement: load: %w", err)
	}

	if r.Status.IsTerminal() {
		return nil
	}

	now := time.Now().UTC()

	if cmd.ValidChunks == 0 {
		if err := r.Reject(now, "No valid chunks after quality filtering"); err != nil {
			if _, ok := err.(*errs.InvariantViolationError); ok {
				return nil
			}
			return err
		}
		if err := h.Refinements.Save(ctx, r); err != nil {
			return fmt.Errorf("finalizeRefinement: save: %w", err)
		}
		h.Events.Publish(ctx, revents.ContentRejected{
			RefinementID:    r.ID,
			ContentItemID:   r.ContentItemID,
			RejectionReason: r.RejectionReason,
			RejectedAt:      now,
		})
		return nil
	}

	if err := r.Complete(now); err != nil {
		if _, ok := err.(*errs.InvariantViolationError); ok {
			return nil
		}
		return err
	}
	if err := h.Refinements.Save(ctx, r); err != nil {
		return fmt.Errorf("finalizeRefinement: save: %w", err)
	}

	h.Events.Publish(ctx, revents.RefinementCompleted{
		RefinementID:        r.ID,
		ContentItemID:       r.ContentItemID,
		ChunkCount:          len(r.Chunks),
		AverageQualityScore: r.AverageQualityScore(),
		CompletedAt:         now,
	})
	return nil
}
