package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

// CompleteJob transitions RUNNING -> COMPLETED and publishes JobCompleted.
// Source health update happens in the JobCompletedHandler event handler,
// not here, keeping the command handler a single aggregate write.
func (h *Handlers) CompleteJob(ctx context.Context, cmd CompleteJob) error {
	j, err := h.Jobs.Get(ctx, cmd.JobID)
	if err != nil {
		return fmt.Errorf("completeJob: load: %w", err)
	}

	now := time.Now().UTC()
	if err := j.Complete(now); err != nil {
		return err
	}

	if err := h.Jobs.Save(ctx, j); err != nil {
		return fmt.Errorf("completeJob: save: %w", err)
	}

	h.Events.Publish(ctx, events.JobCompleted{
		JobID:       j.ID,
		SourceID:    j.SourceID,
		CompletedAt: now,
		Metrics:     j.Metrics,
	})
	return nil
}
