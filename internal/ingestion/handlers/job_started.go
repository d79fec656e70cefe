package handlers

import (
	"context"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/domain/job"
	"github.com/cryptoganster/content-pipeline/internal/errs"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/commands"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
	"github.com/cryptoganster/content-pipeline/internal/ports"
	"github.com/cryptoganster/content-pipeline/internal/resilience"
)

var jobStartedSample = events.JobStarted{}

// onJobStarted implements FetchContent (spec §4.4): resolve the source's
// adapter, drain it behind retry + circuit breaker, publish ContentCollected
// once per yielded item, then complete or fail the job.
func (h *Handlers) onJobStarted(ctx context.Context, evt bus.Event) error {
	e := evt.(events.JobStarted)

	j, err := h.Jobs.Get(ctx, e.JobID)
	if err != nil {
		h.Logger.ErrorContext(ctx, "jobStarted: load job failed", "job_id", e.JobID, "error", err)
		return nil
	}

	adapter, ok := h.Adapters.Resolve(j.SourceConfig.SourceType)
	if !ok {
		h.fail(ctx, e.JobID, "no adapter registered for source type "+j.SourceConfig.SourceType, errs.Validation)
		return nil
	}

	breaker := h.breakerFor(e.SourceID)
	config := j.SourceConfig.Config

	result := resilience.Execute(ctx, h.RetryCfg, func(ctx context.Context) (job.Metrics, error) {
		return resilience.ExecuteBreaker(ctx, breaker, func(ctx context.Context) (job.Metrics, error) {
			return h.drain(ctx, e, adapter, config)
		})
	})

	if !result.Success {
		h.fail(ctx, e.JobID, result.Err.Error(), errs.ClassifyError(result.Err))
		return nil
	}

	if _, err := h.Cmd.Execute(ctx, commands.UpdateJobMetrics{JobID: e.JobID, Delta: result.Value}); err != nil {
		h.Logger.ErrorContext(ctx, "updateJobMetrics failed", "job_id", e.JobID, "error", err)
	}
	if _, err := h.Cmd.Execute(ctx, commands.CompleteJob{JobID: e.JobID}); err != nil {
		h.Logger.ErrorContext(ctx, "completeJob failed", "job_id", e.JobID, "error", err)
	}
	return nil
}

func (h *Handlers) fail(ctx context.Context, jobID, message string, errType errs.ErrorType) {
	if _, err := h.Cmd.Execute(ctx, commands.FailJob{JobID: jobID, Message: message, ErrType: string(errType)}); err != nil {
		h.Logger.ErrorContext(ctx, "failJob failed", "job_id", jobID, "error", err)
	}
}

// drain consumes adapter's item and error channels to completion, publishing
// ContentCollected per item, and returns the accumulated job metrics.
func (h *Handlers) drain(ctx context.Context, e events.JobStarted, adapter ports.SourceAdapter, config map[string]any) (job.Metrics, error) {
	items, errsCh := adapter.Collect(ctx, config)

	var m job.Metrics

	for items != nil || errsCh != nil {
		select {
		case item, ok := <-items:
			if !ok {
				items = nil
				continue
			}
			m.ItemsCollected++
			m.BytesProcessed += int64(len(item.RawContent))
			h.Events.Publish(ctx, events.ContentCollected{
				JobID:       e.JobID,
				SourceID:    e.SourceID,
				RawContent:  item.RawContent,
				Metadata:    item.Metadata,
				SourceType:  item.SourceType,
				CollectedAt: item.CollectedAt,
			})
		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			return job.Metrics{}, err
		case <-ctx.Done():
			return job.Metrics{}, ctx.Err()
		}
	}

	return m, nil
}
