// Package events declares the ingestion pipeline's domain events (spec
// §4.4). Event-carried state transfer (spec §9): ContentIngested carries
// everything its refinement-side subscriber needs so that subscriber need
// not round-trip the store for hot-path data.
package events

import (
	"time"

	"github.com/cryptoganster/content-pipeline/internal/domain/content"
	"github.com/cryptoganster/content-pipeline/internal/domain/job"
)

type JobScheduled struct {
	JobID       string
	SourceID    string
	ScheduledAt time.Time
}

type JobStarted struct {
	JobID      string
	SourceID   string
	ExecutedAt time.Time
}

type JobCompleted struct {
	JobID       string
	SourceID    string
	CompletedAt time.Time
	Metrics     job.Metrics
}

type JobFailed struct {
	JobID       string
	SourceID    string
	CompletedAt time.Time
	Reason      string
}

// ContentCollected is raised once per raw item an adapter yields.
type ContentCollected struct {
	JobID       string
	SourceID    string
	RawContent  string
	Metadata    map[string]any
	SourceType  string
	CollectedAt time.Time
}

type ContentNormalized struct {
	JobID             string
	SourceID          string
	RawContent        string
	NormalizedContent string
	ContentHash       string
	Metadata          content.Metadata
	AssetTags         []content.AssetTag
	CollectedAt       time.Time
}

type ContentQualityValidated struct {
	JobID             string
	SourceID          string
	RawContent        string
	NormalizedContent string
	ContentHash       string
	Metadata          content.Metadata
	AssetTags         []content.AssetTag
	CollectedAt       time.Time
}

type ContentValidationFailed struct {
	JobID    string
	SourceID string
	Reason   string
}

type ContentDeduplicationChecked struct {
	JobID             string
	SourceID          string
	RawContent        string
	NormalizedContent string
	ContentHash       string
	Metadata          content.Metadata
	AssetTags         []content.AssetTag
	CollectedAt       time.Time
	IsDuplicate       bool
}

// ContentIngested is the canonical, richer event named in spec §9 Open
// Question 3 ("treat the richer payload...as canonical"): it carries the
// jobId, normalizedContent, metadata, and persistedAt that downstream
// refinement-side subscribers need without a store round-trip.
type ContentIngested struct {
	ContentItemID     string
	JobID             string
	SourceID          string
	NormalizedContent string
	Metadata          content.Metadata
	AssetTags         []content.AssetTag
	PersistedAt       time.Time
}

type SourceConfigured struct {
	SourceID string
}

type SourceUnhealthy struct {
	SourceID            string
	FailureRate         float64
	ConsecutiveFailures int
	DetectedAt          time.Time
}
