package commands

import (
	"context"
	"time"

	"github.com/cryptoganster/content-pipeline/internal/domain/content"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/normalize"
)

// NormalizeContent strips HTML/control characters, collapses whitespace,
// normalizes to NFC, detects language, computes the content hash, and
// extracts asset tags, then publishes ContentNormalized.
func (h *Handlers) NormalizeContent(ctx context.Context, cmd NormalizeContent) error {
	normalized := normalize.Normalize(cmd.RawContent)
	hash := h.Hash.SHA256(normalized)
	tags := normalize.DetectAssetTags(normalized)

	language := ""
	if h.Lang != nil {
		language = h.Lang.Detect(normalized)
	}

	meta := content.Metadata{Language: language}
	if title, ok := cmd.Metadata["title"].(string); ok {
		meta.Title = title
	}
	if author, ok := cmd.Metadata["author"].(string); ok {
		meta.Author = author
	}
	if sourceURL, ok := cmd.Metadata["sourceUrl"].(string); ok {
		meta.SourceURL = sourceURL
	}
	if publishedAt, ok := cmd.Metadata["publishedAt"].(time.Time); ok {
		meta.PublishedAt = &publishedAt
	}

	h.Events.Publish(ctx, events.ContentNormalized{
		JobID:             cmd.JobID,
		SourceID:          cmd.SourceID,
		RawContent:        cmd.RawContent,
		NormalizedContent: normalized,
		ContentHash:       hash,
		Metadata:          meta,
		AssetTags:         tags,
		CollectedAt:       cmd.CollectedAt,
	})
	return nil
}
