package handlers

import (
	"context"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/commands"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

var jobFailedSample = events.JobFailed{}

func (h *Handlers) onJobFailed(ctx context.Context, evt bus.Event) error {
	e := evt.(events.JobFailed)
	_, err := h.Cmd.Execute(ctx, commands.UpdateSourceHealth{
		SourceID: e.SourceID,
		Outcome:  commands.HealthFailure,
		At:       e.CompletedAt,
	})
	if err != nil {
		h.Logger.ErrorContext(ctx, "updateSourceHealth (failure) failed", "source_id", e.SourceID, "error", err)
	}
	return nil
}
