package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/cryptoganster/content-pipeline/internal/domain/content"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

// SaveContentItem constructs and persists a new ContentItem, records its
// hash in the dedup cache, and publishes the canonical ContentIngested
// event (spec §9 Open Question 3). Only this handler may call content.New.
func (h *Handlers) SaveContentItem(ctx context.Context, cmd SaveContentItem) (SaveContentItemResult, error) {
	item, err := content.New(
		h.NewID(),
		cmd.SourceID,
		cmd.ContentHash,
		cmd.RawContent,
		cmd.NormalizedContent,
		cmd.Metadata,
		cmd.AssetTags,
		cmd.CollectedAt,
	)
	if err != nil {
		return SaveContentItemResult{}, err
	}

	if err := h.Content.Save(ctx, item); err != nil {
		return SaveContentItemResult{}, fmt.Errorf("saveContentItem: save: %w", err)
	}

	if h.DedupCache != nil {
		h.DedupCache.Record(item.ContentHash)
	}

	persistedAt := time.Now().UTC()
	h.Events.Publish(ctx, events.ContentIngested{
		ContentItemID:     item.ID,
		JobID:             cmd.JobID,
		SourceID:          item.SourceID,
		NormalizedContent: item.NormalizedContent,
		Metadata:          item.Metadata,
		AssetTags:         item.AssetTags,
		PersistedAt:       persistedAt,
	})

	return SaveContentItemResult{ContentItemID: item.ID}, nil
}
