package commands

import (
	"context"
	"fmt"
)

// UpdateJobMetrics applies an additive field-wise delta. Idempotent against
// duplicate deliveries of the same command only insofar as the delta is
// itself the correct per-event increment (spec §5); the bus does not
// deduplicate commands.
func (h *Handlers) UpdateJobMetrics(ctx context.Context, cmd UpdateJobMetrics) error {
	j, err := h.Jobs.Get(ctx, cmd.JobID)
	if err != nil {
		return fmt.Errorf("updateJobMetrics: load: %w", err)
	}
	if err := j.UpdateMetrics(cmd.Delta); err != nil {
		return err
	}
	if err := h.Jobs.Save(ctx, j); err != nil {
		return fmt.Errorf("updateJobMetrics: save: %w", err)
	}
	return nil
}
