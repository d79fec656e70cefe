// Package events declares the refinement pipeline's domain events (spec
// §4.5).
package events

import (
	"time"

	"github.com/cryptoganster/content-pipeline/internal/domain/refinement"
)

type ChunkRef struct {
	ID          string
	Content     string
	Index       int
	StartOffset int
	EndOffset   int
}

type ContentChunked struct {
	RefinementID  string
	ContentItemID string
	ChunkCount    int
	Chunks        []ChunkRef
	PublishedAt   time.Time
}

type ChunkEnriched struct {
	RefinementID          string
	ContentItemID         string
	ChunkID               string
	Chunk                 refinement.Chunk
	TotalChunks           int
	PassedQualityThreshold bool
}

type ChunkEnrichmentFailed struct {
	RefinementID  string
	ContentItemID string
	ChunkID       string
	TotalChunks   int
	Reason        string
}

type AllChunksProcessed struct {
	RefinementID string
	TotalChunks  int
	ValidChunks  int
}

type RefinementCompleted struct {
	RefinementID       string
	ContentItemID      string
	ChunkCount         int
	AverageQualityScore float64
	CompletedAt        time.Time
}

type ContentRejected struct {
	RefinementID    string
	ContentItemID   string
	RejectionReason string
	RejectedAt      time.Time
}
