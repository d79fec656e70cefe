package commands

import (
	"context"
	"strings"

	"github.com/cryptoganster/content-pipeline/internal/domain/refinement"
	"github.com/cryptoganster/content-pipeline/internal/ports"
	revents "github.com/cryptoganster/content-pipeline/internal/refinement/events"
)

// EnrichChunk runs entity extraction, temporal analysis, and quality
// scoring for one chunk (spec §4.5 step 2), rejecting it if the weighted
// overall score falls below cmd.QualityThreshold.
func (h *Handlers) EnrichChunk(ctx context.Context, cmd EnrichChunk) error {
	entities, err := h.Entities.Extract(ctx, cmd.ChunkContent)
	if err != nil {
		h.Logger.ErrorContext(ctx, "enrichChunk: entity extraction failed", "chunk_id", cmd.ChunkID, "error", err)
		h.Events.Publish(ctx, revents.ChunkEnrichmentFailed{
			RefinementID:  cmd.RefinementID,
			ContentItemID: cmd.ContentItemID,
			ChunkID:       cmd.ChunkID,
			TotalChunks:   cmd.TotalChunks,
			Reason:        err.Error(),
		})
		return nil
	}

	var temporal *refinement.TemporalContext
	if h.Temporal != nil {
		result, terr := h.Temporal.Extract(ctx, cmd.ChunkContent, cmd.PublishedAt)
		if terr == nil && result != nil {
			temporal = &refinement.TemporalContext{
				PublishedAt:    result.PublishedAt,
				EventTimestamp: result.EventTimestamp,
			}
		}
	}

	tokenCount := len(strings.Fields(cmd.ChunkContent))
	components, err := h.Quality.Analyze(ctx, cmd.ChunkContent, ports.QualityInput{
		TokenCount:  tokenCount,
		Entities:    entities,
		PublishedAt: cmd.PublishedAt,
	})
	if err != nil {
		h.Logger.ErrorContext(ctx, "enrichChunk: quality analysis failed", "chunk_id", cmd.ChunkID, "error", err)
		h.Events.Publish(ctx, revents.ChunkEnrichmentFailed{
			RefinementID:  cmd.RefinementID,
			ContentItemID: cmd.ContentItemID,
			ChunkID:       cmd.ChunkID,
			TotalChunks:   cmd.TotalChunks,
			Reason:        err.Error(),
		})
		return nil
	}

	score := refinement.QualityScore{
		Length:    components.Length,
		Coherence: components.Coherence,
		Relevance: components.Relevance,
		Freshness: components.Freshness,
		Overall: refinement.ComputeOverall(
			components.Length, components.Coherence, components.Relevance, components.Freshness,
		),
	}

	domainEntities := make([]refinement.Entity, len(entities))
	for i, e := range entities {
		domainEntities[i] = refinement.Entity{
			Type:       e.Type,
			Value:      e.Value,
			Confidence: e.Confidence,
			StartPos:   e.StartPos,
			EndPos:     e.EndPos,
		}
	}

	chunk := refinement.Chunk{
		ChunkID: cmd.ChunkID,
		Content: cmd.ChunkContent,
		Position: refinement.Position{
			Index:       cmd.ChunkIndex,
			StartOffset: cmd.StartOffset,
			EndOffset:   cmd.EndOffset,
		},
		Hash:            h.Hash.SHA256(cmd.ChunkContent),
		Entities:        domainEntities,
		TemporalContext: temporal,
		QualityScore:    score,
	}

	passed := score.Overall >= cmd.QualityThreshold

	h.Events.Publish(ctx, revents.ChunkEnriched{
		RefinementID:           cmd.RefinementID,
		ContentItemID:          cmd.ContentItemID,
		ChunkID:                cmd.ChunkID,
		Chunk:                  chunk,
		TotalChunks:            cmd.TotalChunks,
		PassedQualityThreshold: passed,
	})
	return nil
}
