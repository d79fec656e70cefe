package commands

import (
	"context"
	"fmt"

	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

// UpdateSourceHealth records one job outcome against a source's rolling
// health counters and, on the first crossing into unhealthy, publishes
// SourceUnhealthy. Auto-disabling on that event is the SourceUnhealthyHandler's
// job, not this command's.
func (h *Handlers) UpdateSourceHealth(ctx context.Context, cmd UpdateSourceHealth) error {
	s, err := h.Sources.Get(ctx, cmd.SourceID)
	if err != nil {
		return fmt.Errorf("updateSourceHealth: load: %w", err)
	}

	switch cmd.Outcome {
	case HealthSuccess:
		s.RecordSuccess(cmd.At)
	case HealthFailure:
		s.RecordFailure(cmd.At)
	}

	crossed := s.CheckUnhealthy(h.HealthCfg)

	if err := h.Sources.Save(ctx, s); err != nil {
		return fmt.Errorf("updateSourceHealth: save: %w", err)
	}

	if crossed {
		h.Events.Publish(ctx, events.SourceUnhealthy{
			SourceID:            s.ID,
			FailureRate:         100 - s.Health.SuccessRate,
			ConsecutiveFailures: s.Health.ConsecutiveFailures,
			DetectedAt:          cmd.At,
		})
	}
	return nil
}
