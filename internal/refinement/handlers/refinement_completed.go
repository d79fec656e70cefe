package handlers

import (
	"context"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/ports"
	"github.com/cryptoganster/content-pipeline/internal/refinement/events"
)

// onRefinementCompleted forwards every accepted chunk of a just-completed
// refinement to the downstream sink (ports.RefinementSink), grounded on
// the teacher's result_consumer forwarding accepted pages onward once a
// crawl finishes. A nil Sink (no Weaviate cluster configured) makes this a
// no-op; embedding what the sink does with the chunk stays out of scope.
func (h *Handlers) onRefinementCompleted(ctx context.Context, evt bus.Event) error {
	if h.Sink == nil {
		return nil
	}
	e := evt.(events.RefinementCompleted)

	r, err := h.Refinements.Get(ctx, e.RefinementID)
	if err != nil {
		h.Logger.ErrorContext(ctx, "onRefinementCompleted: load refinement failed", "refinement_id", e.RefinementID, "error", err)
		return nil
	}

	for _, c := range r.Chunks {
		err := h.Sink.StoreChunk(ctx, ports.SinkChunk{
			ChunkID:       c.ChunkID,
			ContentItemID: r.ContentItemID,
			RefinementID:  r.ID,
			Content:       c.Content,
			Index:         c.Position.Index,
			QualityScore:  c.QualityScore.Overall,
		})
		if err != nil {
			h.Logger.ErrorContext(ctx, "onRefinementCompleted: store chunk failed", "refinement_id", e.RefinementID, "chunk_id", c.ChunkID, "error", err)
		}
	}
	return nil
}
