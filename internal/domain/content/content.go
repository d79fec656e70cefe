// Package content implements the ContentItem aggregate: a deduplicated,
// normalized piece of ingested text plus its metadata and asset tags.
package content

import (
	"encoding/hex"
	"regexp"
	"time"

	"github.com/cryptoganster/content-pipeline/internal/errs"
)

var symbolPattern = regexp.MustCompile(`^[A-Z]{1,10}$`)

// ConfidenceClass is exactly one of high/medium/low for an AssetTag.
type ConfidenceClass string

const (
	ConfidenceHigh   ConfidenceClass = "HIGH"
	ConfidenceMedium ConfidenceClass = "MEDIUM"
	ConfidenceLow    ConfidenceClass = "LOW"
)

// AssetTag is a detected ticker-like token with a confidence score.
type AssetTag struct {
	Symbol     string
	Confidence float64
}

// Class buckets Confidence into exactly one class: high >0.8, medium in
// [0.5,0.8], low <0.5. The boundaries 0.5 and 0.8 land in medium.
func (t AssetTag) Class() ConfidenceClass {
	switch {
	case t.Confidence > 0.8:
		return ConfidenceHigh
	case t.Confidence >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Validate enforces the AssetTag invariants from spec §3/§8.
func (t AssetTag) Validate() error {
	if !symbolPattern.MatchString(t.Symbol) {
		return errs.NewValidation("symbol", "must match ^[A-Z]{1,10}$: "+t.Symbol)
	}
	if t.Confidence < 0 || t.Confidence > 1 {
		return errs.NewValidation("confidence", "must be in [0,1]")
	}
	return nil
}

// Metadata carries the optional descriptive fields collected alongside raw
// content.
type Metadata struct {
	Title       string
	Author      string
	PublishedAt *time.Time
	Language    string
	SourceURL   string
}

// Item is the ContentItem aggregate.
type Item struct {
	ID                string
	SourceID          string
	ContentHash       string
	RawContent        string
	NormalizedContent string
	Metadata          Metadata
	AssetTags         []AssetTag
	CollectedAt       time.Time
	Version           int
}

// validHexHash reports whether s is exactly 64 lowercase hex characters.
func validHexHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'F' {
			return false
		}
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// New validates the hash shape and asset tags, then constructs a new
// ContentItem at version 0. This is the only constructor; SaveContentItem is
// the sole command that may call it.
func New(id, sourceID, hash, raw, normalized string, meta Metadata, tags []AssetTag, collectedAt time.Time) (*Item, error) {
	if !validHexHash(hash) {
		return nil, errs.NewValidation("contentHash", "must be 64 lowercase hex characters")
	}
	for _, t := range tags {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return &Item{
		ID:                id,
		SourceID:          sourceID,
		ContentHash:       hash,
		RawContent:        raw,
		NormalizedContent: normalized,
		Metadata:          meta,
		AssetTags:         tags,
		CollectedAt:       collectedAt,
		Version:           0,
	}, nil
}
