package handlers

import (
	"context"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/domain/job"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/commands"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
	refinementcommands "github.com/cryptoganster/content-pipeline/internal/refinement/commands"
)

var contentIngestedSample = events.ContentIngested{}

// onContentIngested fans out to both consumers named in spec §4.4:
// UpdateJobMetrics(itemsPersisted+=1) and StartRefinement. Each is issued
// independently so one failing does not block the other.
func (h *Handlers) onContentIngested(ctx context.Context, evt bus.Event) error {
	e := evt.(events.ContentIngested)

	if _, err := h.Cmd.Execute(ctx, commands.UpdateJobMetrics{
		JobID: e.JobID,
		Delta: job.Metrics{ItemsPersisted: 1},
	}); err != nil {
		h.Logger.ErrorContext(ctx, "updateJobMetrics (persisted) failed", "job_id", e.JobID, "error", err)
	}

	if _, err := h.Cmd.Execute(ctx, refinementcommands.StartRefinement{
		ContentItemID: e.ContentItemID,
	}); err != nil {
		h.Logger.ErrorContext(ctx, "startRefinement failed", "content_item_id", e.ContentItemID, "error", err)
	}
	return nil
}
