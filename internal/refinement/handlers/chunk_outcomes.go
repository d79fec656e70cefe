package handlers

import (
	"context"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/refinement/commands"
	"github.com/cryptoganster/content-pipeline/internal/refinement/events"
)

// onChunkEnriched adds a passed chunk to its refinement, then increments
// the fan-in tally (spec §4.5: "each ChunkEnriched atomically increments
// processed and, if passed, appends the chunk via AddChunkToRefinement").
func (h *Handlers) onChunkEnriched(ctx context.Context, evt bus.Event) error {
	e := evt.(events.ChunkEnriched)

	if e.PassedQualityThreshold {
		if _, err := h.Cmd.Execute(ctx, commands.AddChunkToRefinement{
			RefinementID: e.RefinementID,
			Chunk:        e.Chunk,
		}); err != nil {
			h.Logger.ErrorContext(ctx, "addChunkToRefinement failed", "refinement_id", e.RefinementID, "chunk_id", e.ChunkID, "error", err)
		}
	}

	h.incrementTally(ctx, e.RefinementID, e.TotalChunks, e.PassedQualityThreshold)
	return nil
}

// onChunkEnrichmentFailed counts a failed chunk toward the tally without
// ever adding it to the aggregate (spec §4.5).
func (h *Handlers) onChunkEnrichmentFailed(ctx context.Context, evt bus.Event) error {
	e := evt.(events.ChunkEnrichmentFailed)
	h.incrementTally(ctx, e.RefinementID, e.TotalChunks, false)
	return nil
}

// incrementTally applies one chunk's outcome to the strong-consistent tally
// row and, once every chunk is accounted for, publishes AllChunksProcessed.
func (h *Handlers) incrementTally(ctx context.Context, refinementID string, totalChunks int, passed bool) {
	tally, err := h.Tallies.Increment(ctx, refinementID, passed)
	if err != nil {
		h.Logger.ErrorContext(ctx, "chunk tally increment failed", "refinement_id", refinementID, "error", err)
		return
	}
	if tally.Processed >= tally.Total {
		h.Events.Publish(ctx, events.AllChunksProcessed{
			RefinementID: refinementID,
			TotalChunks:  totalChunks,
			ValidChunks:  tally.Valid,
		})
	}
}

// onAllChunksProcessed triggers finalization once the tally reports every
// chunk accounted for.
func (h *Handlers) onAllChunksProcessed(ctx context.Context, evt bus.Event) error {
	e := evt.(events.AllChunksProcessed)
	_, err := h.Cmd.Execute(ctx, commands.FinalizeRefinement{
		RefinementID: e.RefinementID,
		TotalChunks:  e.TotalChunks,
		ValidChunks:  e.ValidChunks,
	})
	if err != nil {
		h.Logger.ErrorContext(ctx, "finalizeRefinement failed", "refinement_id", e.RefinementID, "error", err)
	}
	return nil
}
