package commands

import (
	"context"
	"log/slog"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/ports"
	"github.com/cryptoganster/content-pipeline/internal/store"
)

// Config carries the refinement pipeline's tunables (spec §4.5, chunkSize/
// chunkOverlap/qualityThreshold are implementation-defined defaults).
type Config struct {
	ChunkSize        int     // token-equivalent units; default 512
	ChunkOverlap     int     // token-equivalent units; default 50
	QualityThreshold float64 // default 0.3
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{ChunkSize: 512, ChunkOverlap: 50, QualityThreshold: 0.3}
}

// Handlers bundles every dependency the refinement command handlers need.
type Handlers struct {
	Refinements store.RefinementRepository
	Content     store.ContentRepository
	Tallies     store.ChunkTallyRepository
	Entities    ports.EntityExtractor
	Temporal    ports.TemporalExtractor
	Quality     ports.QualityAnalyzer
	Hash        ports.HashService
	Events      *bus.EventBus
	Logger      *slog.Logger
	NewID       func() string
	Cfg         Config
}

// Register binds every refinement command to cmdBus.
func (h *Handlers) Register(cmdBus *bus.CommandBus) {
	cmdBus.Register(StartRefinement{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return h.StartRefinement(ctx, cmd.(StartRefinement))
	})
	cmdBus.Register(ChunkContent{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return nil, h.ChunkContent(ctx, cmd.(ChunkContent))
	})
	cmdBus.Register(EnrichChunk{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return nil, h.EnrichChunk(ctx, cmd.(EnrichChunk))
	})
	cmdBus.Register(AddChunkToRefinement{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return nil, h.AddChunkToRefinement(ctx, cmd.(AddChunkToRefinement))
	})
	cmdBus.Register(FinalizeRefinement{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return nil, h.FinalizeRefinement(ctx, cmd.(FinalizeRefinement))
	})
	cmdBus.Register(RerefineContent{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return h.RerefineContent(ctx, cmd.(RerefineContent))
	})
}

// expectedCommands lists every sample this Handlers set registers, used by
// the startup self-check (spec §9).
func (h *Handlers) expectedCommands() []bus.Command {
	return []bus.Command{
		StartRefinement{}, ChunkContent{}, EnrichChunk{},
		AddChunkToRefinement{}, FinalizeRefinement{}, RerefineContent{},
	}
}

// ExpectedCommands exposes expectedCommands for app-level startup
// validation.
func (h *Handlers) ExpectedCommands() []bus.Command { return h.expectedCommands() }
