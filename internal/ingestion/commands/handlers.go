package commands

import (
	"context"
	"log/slog"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/domain/source"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/dedupcache"
	"github.com/cryptoganster/content-pipeline/internal/ports"
	"github.com/cryptoganster/content-pipeline/internal/store"
)

// Handlers bundles every dependency the ingestion command handlers need.
// Grounded on the teacher's Service structs (features/source.Service,
// features/job.Service), which likewise close over a repo and a publisher
// rather than reaching for package-level globals.
type Handlers struct {
	Jobs        store.JobRepository
	Sources     store.SourceRepository
	Content     store.ContentRepository
	Hash        ports.HashService
	Events      *bus.EventBus
	Logger      *slog.Logger
	DedupCache  *dedupcache.Cache
	HealthCfg   source.HealthConfig
	NewID       func() string
	Lang        ports.LanguageDetector
	Cipher      ports.CredentialCipher
	KeyProvider ports.EncryptionKeyProvider
}

// Register binds every ingestion command to cmdBus.
func (h *Handlers) Register(cmdBus *bus.CommandBus) {
	cmdBus.Register(ScheduleJob{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return h.ScheduleJob(ctx, cmd.(ScheduleJob))
	})
	cmdBus.Register(StartJob{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return nil, h.StartJob(ctx, cmd.(StartJob))
	})
	cmdBus.Register(UpdateJobMetrics{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return nil, h.UpdateJobMetrics(ctx, cmd.(UpdateJobMetrics))
	})
	cmdBus.Register(CompleteJob{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return nil, h.CompleteJob(ctx, cmd.(CompleteJob))
	})
	cmdBus.Register(FailJob{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return nil, h.FailJob(ctx, cmd.(FailJob))
	})
	cmdBus.Register(NormalizeContent{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return nil, h.NormalizeContent(ctx, cmd.(NormalizeContent))
	})
	cmdBus.Register(ValidateContentQuality{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return nil, h.ValidateContentQuality(ctx, cmd.(ValidateContentQuality))
	})
	cmdBus.Register(DetectDuplicate{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return nil, h.DetectDuplicate(ctx, cmd.(DetectDuplicate))
	})
	cmdBus.Register(SaveContentItem{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return h.SaveContentItem(ctx, cmd.(SaveContentItem))
	})
	cmdBus.Register(CreateSource{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return h.CreateSource(ctx, cmd.(CreateSource))
	})
	cmdBus.Register(UpdateSource{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return nil, h.UpdateSource(ctx, cmd.(UpdateSource))
	})
	cmdBus.Register(DeleteSource{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return nil, h.DeleteSource(ctx, cmd.(DeleteSource))
	})
	cmdBus.Register(ConfigureSource{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return nil, h.ConfigureSource(ctx, cmd.(ConfigureSource))
	})
	cmdBus.Register(UpdateSourceHealth{}, func(ctx context.Context, cmd bus.Command) (any, error) {
		return nil, h.UpdateSourceHealth(ctx, cmd.(UpdateSourceHealth))
	})
}

// expectedCommands lists every sample this Handlers set registers, used by
// the startup self-check (spec §9).
func (h *Handlers) expectedCommands() []bus.Command {
	return []bus.Command{
		ScheduleJob{}, StartJob{}, UpdateJobMetrics{}, CompleteJob{}, FailJob{},
		NormalizeContent{}, ValidateContentQuality{}, DetectDuplicate{}, SaveContentItem{},
		CreateSource{}, UpdateSource{}, DeleteSource{}, ConfigureSource{}, UpdateSourceHealth{},
	}
}

// ExpectedCommands exposes expectedCommands for app-level startup
// validation.
func (h *Handlers) ExpectedCommands() []bus.Command { return h.expectedCommands() }
