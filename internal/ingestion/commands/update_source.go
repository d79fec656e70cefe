package commands

import (
	"context"
	"fmt"
)

// UpdateSource replaces a source's name and config under optimistic
// concurrency.
func (h *Handlers) UpdateSource(ctx context.Context, cmd UpdateSource) error {
	s, err := h.Sources.Get(ctx, cmd.SourceID)
	if err != nil {
		return fmt.Errorf("updateSource: load: %w", err)
	}
	if err := s.UpdateConfig(cmd.Name, cmd.Config); err != nil {
		return err
	}
	if err := h.Sources.Save(ctx, s); err != nil {
		return fmt.Errorf("updateSource: save: %w", err)
	}
	return nil
}
