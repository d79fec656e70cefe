package commands

import (
	"context"
	"fmt"

	"github.com/cryptoganster/content-pipeline/internal/domain/job"
	"github.com/cryptoganster/content-pipeline/internal/errs"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

// ScheduleJob creates a new IngestionJob at version 0 in PENDING, provided
// the source exists and is active, then publishes JobScheduled.
func (h *Handlers) ScheduleJob(ctx context.Context, cmd ScheduleJob) (ScheduleJobResult, error) {
	src, err := h.Sources.Get(ctx, cmd.SourceID)
	if err != nil {
		return ScheduleJobResult{}, fmt.Errorf("scheduleJob: load source: %w", err)
	}
	if !src.IsActive {
		return ScheduleJobResult{}, errs.NewValidation("sourceId", "source is not active: "+cmd.SourceID)
	}

	j := job.New(h.NewID(), cmd.SourceID, cmd.FireAt, job.SourceConfigSnapshot{
		SourceType: src.SourceType,
		Name:       src.Name,
		Config:     src.Config,
	})

	if err := h.Jobs.Save(ctx, j); err != nil {
		return ScheduleJobResult{}, fmt.Errorf("scheduleJob: save: %w", err)
	}

	h.Events.Publish(ctx, events.JobScheduled{
		JobID:       j.ID,
		SourceID:    j.SourceID,
		ScheduledAt: j.ScheduledAt,
	})

	return ScheduleJobResult{JobID: j.ID}, nil
}
