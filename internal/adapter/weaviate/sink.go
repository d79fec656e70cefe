// Package weaviate implements ports.RefinementSink against a real Weaviate
// cluster, grounded on the teacher's internal/adapter/weaviate.Store: same
// client, same Data().Creator() write path, narrowed to the single
// "forward a completed chunk onward" operation this domain needs. Search,
// aggregation, and embedding stay out of scope (spec Non-goals) and are
// dropped rather than adapted — see DESIGN.md.
package weaviate

import (
	"context"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"github.com/cryptoganster/content-pipeline/internal/ports"
	"github.com/cryptoganster/content-pipeline/internal/vector"
)

type Sink struct {
	client *weaviate.Client
}

func NewSink(client *weaviate.Client) *Sink {
	return &Sink{client: client}
}

// EnsureSchema creates or migrates the RefinementChunk class. Called once
// at startup, before any StoreChunk.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	adapter := vector.NewWeaviateClientAdapter(s.client)
	return vector.EnsureSchema(ctx, adapter)
}

// StoreChunk forwards one accepted chunk, keyed by its own chunkId. It
// issues a create, so a retried RefinementCompletedHandler delivery of a
// chunk already stored returns an error instead of overwriting the object;
// the object is never duplicated.
func (s *Sink) StoreChunk(ctx context.Context, chunk ports.SinkChunk) error {
	slog.DebugContext(ctx, "forwarding chunk to refinement sink", "chunk_id", chunk.ChunkID, "refinement_id", chunk.RefinementID, "index", chunk.Index)
	properties := map[string]any{
		"content":       chunk.Content,
		"contentItemId": chunk.ContentItemID,
		"refinementId":  chunk.RefinementID,
		"chunkIndex":    chunk.Index,
		"qualityScore":  chunk.QualityScore,
	}

	_, err := s.client.Data().Creator().
		WithClassName(vector.RefinementChunkClass).
		WithID(chunk.ChunkID).
		WithProperties(properties).
		Do(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to forward chunk to refinement sink", "error", err, "chunk_id", chunk.ChunkID)
	}
	return err
}
