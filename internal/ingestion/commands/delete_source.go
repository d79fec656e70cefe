package commands

import (
	"context"
	"fmt"
)

// DeleteSource soft-deactivates a source rather than removing its row,
// preserving history for already-scheduled and in-flight jobs.
func (h *Handlers) DeleteSource(ctx context.Context, cmd DeleteSource) error {
	s, err := h.Sources.Get(ctx, cmd.SourceID)
	if err != nil {
		return fmt.Errorf("deleteSource: load: %w", err)
	}
	s.Disable("deleted")
	if err := h.Sources.Save(ctx, s); err != nil {
		return fmt.Errorf("deleteSource: save: %w", err)
	}
	return nil
}
