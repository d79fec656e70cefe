package commands

import (
	"context"
	"fmt"

	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

// DetectDuplicate checks the advisory in-process cache first, then falls
// back to the authoritative store lookup by content hash (spec §4.2). The
// cache only ever short-circuits a lookup to "seen"; it never overrides a
// store miss, so a cold cache never causes a false negative.
func (h *Handlers) DetectDuplicate(ctx context.Context, cmd DetectDuplicate) error {
	isDuplicate := h.DedupCache != nil && h.DedupCache.Seen(cmd.ContentHash)
	if !isDuplicate {
		exists, err := h.Content.ExistsByHash(ctx, cmd.ContentHash)
		if err != nil {
			return fmt.Errorf("detectDuplicate: lookup: %w", err)
		}
		isDuplicate = exists
	}

	h.Events.Publish(ctx, events.ContentDeduplicationChecked{
		JobID:             cmd.JobID,
		SourceID:          cmd.SourceID,
		RawContent:        cmd.RawContent,
		NormalizedContent: cmd.NormalizedContent,
		ContentHash:       cmd.ContentHash,
		Metadata:          cmd.Metadata,
		AssetTags:         cmd.AssetTags,
		CollectedAt:       cmd.CollectedAt,
		IsDuplicate:       isDuplicate,
	})
	return nil
}
