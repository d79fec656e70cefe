package handlers

import (
	"context"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/commands"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

var jobCompletedSample = events.JobCompleted{}

func (h *Handlers) onJobCompleted(ctx context.Context, evt bus.Event) error {
	e := evt.(events.JobCompleted)
	_, err := h.Cmd.Execute(ctx, commands.UpdateSourceHealth{
		SourceID: e.SourceID,
		Outcome:  commands.HealthSuccess,
		At:       e.CompletedAt,
	})
	if err != nil {
		h.Logger.ErrorContext(ctx, "updateSourceHealth (success) failed", "source_id", e.SourceID, "error", err)
	}
	return nil
}
