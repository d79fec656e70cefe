// Package commands implements the refinement pipeline's command handlers
// (spec §4.5).
package commands

import (
	"time"

	"github.com/cryptoganster/content-pipeline/internal/domain/refinement"
)

type StartRefinement struct {
	ContentItemID string
}

type StartRefinementResult struct {
	RefinementID string
}

type ChunkContent struct {
	RefinementID      string
	ContentItemID     string
	NormalizedContent string
	PublishedAt       time.Time
	ChunkSize         int // token-equivalent units, ~4 chars/token
	ChunkOverlap      int
}

type EnrichChunk struct {
	RefinementID     string
	ContentItemID    string
	ChunkID          string
	ChunkContent     string
	ChunkIndex       int
	StartOffset      int
	EndOffset        int
	TotalChunks      int
	PublishedAt      time.Time
	QualityThreshold float64
}

type AddChunkToRefinement struct {
	RefinementID string
	Chunk        refinement.Chunk
}

type FinalizeRefinement struct {
	RefinementID string
	TotalChunks  int
	ValidChunks  int
}

type RerefineContent struct {
	ContentItemID string
	Reason        string
}

type RerefineContentResult struct {
	RefinementID string
}
