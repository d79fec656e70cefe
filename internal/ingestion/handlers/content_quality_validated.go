package handlers

import (
	"context"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/commands"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

var contentQualityValidatedSample = events.ContentQualityValidated{}

func (h *Handlers) onContentQualityValidated(ctx context.Context, evt bus.Event) error {
	e := evt.(events.ContentQualityValidated)
	_, err := h.Cmd.Execute(ctx, commands.DetectDuplicate{
		JobID:             e.JobID,
		SourceID:          e.SourceID,
		RawContent:        e.RawContent,
		NormalizedContent: e.NormalizedContent,
		ContentHash:       e.ContentHash,
		Metadata:          e.Metadata,
		AssetTags:         e.AssetTags,
		CollectedAt:       e.CollectedAt,
	})
	if err != nil {
		h.Logger.ErrorContext(ctx, "detectDuplicate failed", "job_id", e.JobID, "error", err)
	}
	return nil
}
