package commands

import (
	"context"
	"fmt"

	"github.com/cryptoganster/content-pipeline/internal/domain/refinement"
	"github.com/cryptoganster/content-pipeline/internal/errs"
)

// StartRefinement loads the content item, enforces the single-non-terminal-
// refinement-per-item invariant, and creates the refinement aggregate.
func (h *Handlers) StartRefinement(ctx context.Context, cmd StartRefinement) (StartRefinementResult, error) {
	item, err := h.Content.Get(ctx, cmd.ContentItemID)
	if err != nil {
		return StartRefinementResult{}, fmt.Errorf("startRefinement: load content: %w", err)
	}

	existing, err := h.Refinements.GetNonTerminalByContentItemID(ctx, cmd.ContentItemID)
	if err != nil {
		if _, ok := err.(*errs.NotFoundError); !ok {
			return StartRefinementResult{}, fmt.Errorf("startRefinement: check existing: %w", err)
		}
	}
	if existing != nil {
		return StartRefinementResult{}, errs.NewInvariantViolation("ContentRefinement", "a non-terminal refinement already exists for content item "+cmd.ContentItemID)
	}

	r := refinement.New(h.NewID(), cmd.ContentItemID)
	if err := r.Start(item.CollectedAt); err != nil {
		return StartRefinementResult{}, err
	}
	if err := h.Refinements.Save(ctx, r); err != nil {
		return StartRefinementResult{}, fmt.Errorf("startRefinement: save: %w", err)
	}

	if err := h.ChunkContent(ctx, ChunkContent{
		RefinementID:      r.ID,
		ContentItemID:     cmd.ContentItemID,
		NormalizedContent: item.NormalizedContent,
		PublishedAt:       publishedAtOf(item),
		ChunkSize:         h.Cfg.ChunkSize,
		ChunkOverlap:      h.Cfg.ChunkOverlap,
	}); err != nil {
		h.Logger.ErrorContext(ctx, "startRefinement: chunkContent failed", "refinement_id", r.ID, "error", err)
	}

	return StartRefinementResult{RefinementID: r.ID}, nil
}
