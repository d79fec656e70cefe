package handlers

import (
	"context"
	"time"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/errs"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

var sourceUnhealthySample = events.SourceUnhealthy{}

const disableMaxAttempts = 3

// onSourceUnhealthy auto-disables the source on the first unhealthy
// crossing (spec §3). A lost optimistic-lock race against a concurrent
// health update is retried a bounded number of times with a short linear
// backoff rather than through the shared resilience.Execute helper, since
// this loop's unit of work is a load-mutate-save triple, not a single op.
func (h *Handlers) onSourceUnhealthy(ctx context.Context, evt bus.Event) error {
	e := evt.(events.SourceUnhealthy)

	for attempt := 0; attempt < disableMaxAttempts; attempt++ {
		s, err := h.Sources.Get(ctx, e.SourceID)
		if err != nil {
			h.Logger.ErrorContext(ctx, "sourceUnhealthy: load failed", "source_id", e.SourceID, "error", err)
			return nil
		}
		if !s.IsActive {
			return nil
		}
		s.Disable("auto-disabled: unhealthy")
		err = h.Sources.Save(ctx, s)
		if err == nil {
			return nil
		}
		if _, ok := err.(*errs.ConcurrencyError); !ok {
			h.Logger.ErrorContext(ctx, "sourceUnhealthy: save failed", "source_id", e.SourceID, "error", err)
			return nil
		}
		select {
		case <-time.After(time.Duration(attempt+1) * 10 * time.Millisecond):
		case <-ctx.Done():
			return nil
		}
	}

	h.Logger.ErrorContext(ctx, "sourceUnhealthy: exhausted retries disabling source", "source_id", e.SourceID)
	return nil
}
