// Package handlers wires the refinement pipeline's event handlers: the
// chunk fan-out/fan-in glue between ChunkContent and FinalizeRefinement
// (spec §4.5).
package handlers

import (
	"context"
	"log/slog"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/ports"
	"github.com/cryptoganster/content-pipeline/internal/refinement/commands"
	"github.com/cryptoganster/content-pipeline/internal/refinement/events"
	"github.com/cryptoganster/content-pipeline/internal/store"
	"golang.org/x/sync/errgroup"
)

// Handlers bundles the dependencies every refinement event handler needs.
type Handlers struct {
	Cmd         *bus.CommandBus
	Events      *bus.EventBus
	Tallies     store.ChunkTallyRepository
	Refinements store.RefinementRepository
	Sink        ports.RefinementSink // nil disables downstream forwarding
	Logger      *slog.Logger
	Cfg         commands.Config
}

var (
	contentChunkedSample        = events.ContentChunked{}
	chunkEnrichedSample         = events.ChunkEnriched{}
	chunkEnrichmentFailedSample = events.ChunkEnrichmentFailed{}
	allChunksProcessedSample    = events.AllChunksProcessed{}
	refinementCompletedSample   = events.RefinementCompleted{}
)

// Register subscribes every refinement event handler.
func (h *Handlers) Register() {
	h.Events.Subscribe(contentChunkedSample, h.onContentChunked)
	h.Events.Subscribe(chunkEnrichedSample, h.onChunkEnriched)
	h.Events.Subscribe(chunkEnrichmentFailedSample, h.onChunkEnrichmentFailed)
	h.Events.Subscribe(allChunksProcessedSample, h.onAllChunksProcessed)
	h.Events.Subscribe(refinementCompletedSample, h.onRefinementCompleted)
}

// ExpectedEvents lists every event type this package subscribes to, used
// by the startup self-check (spec §9).
func (h *Handlers) ExpectedEvents() []bus.Event {
	return []bus.Event{
		contentChunkedSample, chunkEnrichedSample, chunkEnrichmentFailedSample,
		allChunksProcessedSample, refinementCompletedSample,
	}
}

// onContentChunked fans EnrichChunk out across every chunk concurrently
// (spec §4.5 "for each chunk in parallel"), using errgroup: every chunk's
// EnrichChunk is started before Wait, so one chunk's error does not keep
// the others from being dispatched (a panic is not recovered here) —
// each EnrichChunk call is independent and reports its own outcome via
// events, so the group's error return is only logged, never propagated.
func (h *Handlers) onContentChunked(ctx context.Context, evt bus.Event) error {
	e := evt.(events.ContentChunked)

	g, gctx := errgroup.WithContext(context.Background())
	for _, c := range e.Chunks {
		c := c
		g.Go(func() error {
			_, err := h.Cmd.Execute(gctx, commands.EnrichChunk{
				RefinementID:     e.RefinementID,
				ContentItemID:    e.ContentItemID,
				ChunkID:          c.ID,
				ChunkContent:     c.Content,
				ChunkIndex:       c.Index,
				StartOffset:      c.StartOffset,
				EndOffset:        c.EndOffset,
				TotalChunks:      e.ChunkCount,
				PublishedAt:      e.PublishedAt,
				QualityThreshold: h.Cfg.QualityThreshold,
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		h.Logger.ErrorContext(ctx, "onContentChunked: enrichment fan-out error", "refinement_id", e.RefinementID, "error", err)
	}
	return nil
}
