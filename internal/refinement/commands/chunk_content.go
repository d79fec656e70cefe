package commands

import (
	"context"
	"fmt"

	"github.com/cryptoganster/content-pipeline/internal/refinement/chunking"
	"github.com/cryptoganster/content-pipeline/internal/refinement/events"
)

// ChunkContent splits normalized content into contiguous, possibly
// overlapping spans (spec §4.5), initializes the fan-in tally at the known
// total, and publishes ContentChunked.
func (h *Handlers) ChunkContent(ctx context.Context, cmd ChunkContent) error {
	spans := chunking.Split(cmd.NormalizedContent, cmd.ChunkSize, cmd.ChunkOverlap)

	refs := make([]events.ChunkRef, len(spans))
	for i, s := range spans {
		refs[i] = events.ChunkRef{
			ID:          h.NewID(),
			Content:     s.Content,
			Index:       s.Index,
			StartOffset: s.StartOffset,
			EndOffset:   s.EndOffset,
		}
	}

	if err := h.Tallies.Init(ctx, cmd.RefinementID, len(refs)); err != nil {
		return fmt.Errorf("chunkContent: init tally: %w", err)
	}

	h.Events.Publish(ctx, events.ContentChunked{
		RefinementID:  cmd.RefinementID,
		ContentItemID: cmd.ContentItemID,
		ChunkCount:    len(refs),
		Chunks:        refs,
		PublishedAt:   cmd.PublishedAt,
	})
	return nil
}
