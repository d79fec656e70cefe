package handlers

import (
	"context"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/commands"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

var jobScheduledSample = events.JobScheduled{}

// onJobScheduled issues StartJob immediately. ScheduleJob publishes
// JobScheduled as soon as it runs, and nothing on this path (including
// internal/scheduler) waits for the job's ScheduledAt, so the job starts
// when it is scheduled.
func (h *Handlers) onJobScheduled(ctx context.Context, evt bus.Event) error {
	e := evt.(events.JobScheduled)
	_, err := h.Cmd.Execute(ctx, commands.StartJob{JobID: e.JobID})
	if err != nil {
		h.Logger.ErrorContext(ctx, "startJob failed", "job_id", e.JobID, "error", err)
	}
	return nil
}
