package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/cryptoganster/content-pipeline/internal/errs"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

// FailJob transitions RUNNING -> FAILED, appends an ErrorRecord, and
// publishes JobFailed. Source health update happens in the
// JobFailedHandler event handler.
func (h *Handlers) FailJob(ctx context.Context, cmd FailJob) error {
	j, err := h.Jobs.Get(ctx, cmd.JobID)
	if err != nil {
		return fmt.Errorf("failJob: load: %w", err)
	}

	errType := errs.ErrorType(cmd.ErrType)
	if errType == "" {
		errType = errs.Unknown
	}
	rec := errs.NewRecord(errType, cmd.Message, 0)

	now := time.Now().UTC()
	if err := j.Fail(now, rec); err != nil {
		return err
	}

	if err := h.Jobs.Save(ctx, j); err != nil {
		return fmt.Errorf("failJob: save: %w", err)
	}

	h.Events.Publish(ctx, events.JobFailed{
		JobID:       j.ID,
		SourceID:    j.SourceID,
		CompletedAt: now,
		Reason:      cmd.Message,
	})
	return nil
}
