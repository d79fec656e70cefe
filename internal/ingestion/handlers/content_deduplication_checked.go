package handlers

import (
	"context"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/domain/job"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/commands"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

var contentDeduplicationCheckedSample = events.ContentDeduplicationChecked{}

// onContentDeduplicationChecked either bumps duplicatesDetected and stops,
// or saves the new item (spec §4.2: "a duplicate short-circuits the
// pipeline and increments duplicatesDetected").
func (h *Handlers) onContentDeduplicationChecked(ctx context.Context, evt bus.Event) error {
	e := evt.(events.ContentDeduplicationChecked)

	if e.IsDuplicate {
		if _, err := h.Cmd.Execute(ctx, commands.UpdateJobMetrics{
			JobID: e.JobID,
			Delta: job.Metrics{DuplicatesDetected: 1},
		}); err != nil {
			h.Logger.ErrorContext(ctx, "updateJobMetrics (duplicate) failed", "job_id", e.JobID, "error", err)
		}
		return nil
	}

	if _, err := h.Cmd.Execute(ctx, commands.SaveContentItem{
		JobID:             e.JobID,
		SourceID:          e.SourceID,
		RawContent:        e.RawContent,
		NormalizedContent: e.NormalizedContent,
		ContentHash:       e.ContentHash,
		Metadata:          e.Metadata,
		AssetTags:         e.AssetTags,
		CollectedAt:       e.CollectedAt,
	}); err != nil {
		h.Logger.ErrorContext(ctx, "saveContentItem failed", "job_id", e.JobID, "error", err)
	}
	return nil
}
