package commands

import (
	"context"
	"fmt"

	"github.com/cryptoganster/content-pipeline/internal/domain/source"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

// CreateSource constructs a new, active SourceConfiguration at version 0.
func (h *Handlers) CreateSource(ctx context.Context, cmd CreateSource) (CreateSourceResult, error) {
	s := source.New(h.NewID(), cmd.SourceType, cmd.Name, cmd.Config)
	if err := h.Sources.Save(ctx, s); err != nil {
		return CreateSourceResult{}, fmt.Errorf("createSource: save: %w", err)
	}
	return CreateSourceResult{SourceID: s.ID}, nil
}
