package commands

import (
	"time"

	"github.com/cryptoganster/content-pipeline/internal/domain/content"
)

// publishedAtOf resolves the timestamp temporal analysis measures freshness
// against: the item's declared publish time if known, else when it was
// collected.
func publishedAtOf(item *content.Item) time.Time {
	if item.Metadata.PublishedAt != nil {
		return *item.Metadata.PublishedAt
	}
	return item.CollectedAt
}
