package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

// StartJob transitions a PENDING job to RUNNING and publishes JobStarted.
func (h *Handlers) StartJob(ctx context.Context, cmd StartJob) error {
	j, err := h.Jobs.Get(ctx, cmd.JobID)
	if err != nil {
		return fmt.Errorf("startJob: load: %w", err)
	}

	now := time.Now().UTC()
	if err := j.Start(now); err != nil {
		return err
	}

	if err := h.Jobs.Save(ctx, j); err != nil {
		return fmt.Errorf("startJob: save: %w", err)
	}

	h.Events.Publish(ctx, events.JobStarted{
		JobID:      j.ID,
		SourceID:   j.SourceID,
		ExecutedAt: now,
	})
	return nil
}
