package handlers

import (
	"context"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/commands"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

var contentCollectedSample = events.ContentCollected{}

func (h *Handlers) onContentCollected(ctx context.Context, evt bus.Event) error {
	e := evt.(events.ContentCollected)
	_, err := h.Cmd.Execute(ctx, commands.NormalizeContent{
		JobID:       e.JobID,
		SourceID:    e.SourceID,
		RawContent:  e.RawContent,
		Metadata:    e.Metadata,
		SourceType:  e.SourceType,
		CollectedAt: e.CollectedAt,
	})
	if err != nil {
		h.Logger.ErrorContext(ctx, "normalizeContent failed", "job_id", e.JobID, "error", err)
	}
	return nil
}
