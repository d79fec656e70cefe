package commands

import (
	"context"
	"fmt"

	"github.com/cryptoganster/content-pipeline/internal/domain/refinement"
	"github.com/cryptoganster/content-pipeline/internal/errs"
)

// RerefineContent archives the content item's current refinement (if any
// non-terminal one exists) by linking the new refinement back to it, then
// starts chunking afresh. Only one non-terminal refinement per content item
// may exist at a time (spec §4.5).
func (h *Handlers) RerefineContent(ctx context.Context, cmd RerefineContent) (RerefineContentResult, error) {
	item, err := h.Content.Get(ctx, cmd.ContentItemID)
	if err != nil {
		return RerefineContentResult{}, fmt.Errorf("rerefineContent: load content: %w", err)
	}

	var previousID *string
	existing, err := h.Refinements.GetNonTerminalByContentItemID(ctx, cmd.ContentItemID)
	if err != nil {
		if _, ok := err.(*errs.NotFoundError); !ok {
			return RerefineContentResult{}, fmt.Errorf("rerefineContent: check existing: %w", err)
		}
	}
	if existing != nil {
		if err := existing.Reject(item.CollectedAt, "superseded by re-refinement: "+cmd.Reason); err != nil {
			return RerefineContentResult{}, err
		}
		if err := h.Refinements.Save(ctx, existing); err != nil {
			return RerefineContentResult{}, fmt.Errorf("rerefineContent: archive previous: %w", err)
		}
		previousID = &existing.ID
	}

	r := refinement.New(h.NewID(), cmd.ContentItemID)
	r.PreviousRefinementID = previousID
	if err := r.Start(item.CollectedAt); err != nil {
		return RerefineContentResult{}, err
	}
	if err := h.Refinements.Save(ctx, r); err != nil {
		return RerefineContentResult{}, fmt.Errorf("rerefineContent: save: %w", err)
	}

	if err := h.ChunkContent(ctx, ChunkContent{
		RefinementID:      r.ID,
		ContentItemID:     cmd.ContentItemID,
		NormalizedContent: item.NormalizedContent,
		PublishedAt:       publishedAtOf(item),
		ChunkSize:         h.Cfg.ChunkSize,
		ChunkOverlap:      h.Cfg.ChunkOverlap,
	}); err != nil {
		h.Logger.ErrorContext(ctx, "rerefineContent: chunkContent failed", "refinement_id", r.ID, "error", err)
	}

	return RerefineContentResult{RefinementID: r.ID}, nil
}
