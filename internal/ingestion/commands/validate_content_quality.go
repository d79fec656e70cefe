package commands

import (
	"context"
	"strings"

	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

const (
	minContentLength = 20
	maxSpamRunLength = 30
)

// ValidateContentQuality applies the length, language, and spam filters from
// spec §4.2. A failure stops the pipeline for this item and reports
// ContentValidationFailed rather than propagating a Go error, since a
// rejected item is an expected outcome, not a fault.
func (h *Handlers) ValidateContentQuality(ctx context.Context, cmd ValidateContentQuality) error {
	reason := firstValidationFailure(cmd)
	if reason != "" {
		h.Events.Publish(ctx, events.ContentValidationFailed{
			JobID:    cmd.JobID,
			SourceID: cmd.SourceID,
			Reason:   reason,
		})
		return nil
	}

	h.Events.Publish(ctx, events.ContentQualityValidated{
		JobID:             cmd.JobID,
		SourceID:          cmd.SourceID,
		RawContent:        cmd.RawContent,
		NormalizedContent: cmd.NormalizedContent,
		ContentHash:       cmd.ContentHash,
		Metadata:          cmd.Metadata,
		AssetTags:         cmd.AssetTags,
		CollectedAt:       cmd.CollectedAt,
	})
	return nil
}

// firstValidationFailure reports the first violated filter, or "" if the
// content passes all of them.
func firstValidationFailure(cmd ValidateContentQuality) string {
	trimmed := strings.TrimSpace(cmd.NormalizedContent)
	if len(trimmed) < minContentLength {
		return "content shorter than minimum length"
	}
	if cmd.Metadata.Language != "" && cmd.Metadata.Language != "en" {
		return "unsupported language: " + cmd.Metadata.Language
	}
	if isSpammy(trimmed) {
		return "content flagged as spam"
	}
	return ""
}

// isSpammy is a crude repeated-character heuristic (a run of
// maxSpamRunLength identical bytes); repeated words are not checked. A real spam filter
// is an external collaborator but this keeps pipeline behavior deterministic
// for fakes and tests.
func isSpammy(s string) bool {
	runCount := 1
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1] {
			runCount++
			if runCount >= maxSpamRunLength {
				return true
			}
		} else {
			runCount = 1
		}
	}
	return false
}
