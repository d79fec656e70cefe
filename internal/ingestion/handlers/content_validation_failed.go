package handlers

import (
	"context"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/domain/job"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/commands"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

var contentValidationFailedSample = events.ContentValidationFailed{}

// onContentValidationFailed short-circuits the pipeline for this item,
// bumping the job's validationErrors counter (spec §4.4 duplicate/rejection
// short-circuit behavior).
func (h *Handlers) onContentValidationFailed(ctx context.Context, evt bus.Event) error {
	e := evt.(events.ContentValidationFailed)
	_, err := h.Cmd.Execute(ctx, commands.UpdateJobMetrics{
		JobID: e.JobID,
		Delta: job.Metrics{ValidationErrors: 1},
	})
	if err != nil {
		h.Logger.ErrorContext(ctx, "updateJobMetrics (validation failure) failed", "job_id", e.JobID, "error", err)
	}
	return nil
}
