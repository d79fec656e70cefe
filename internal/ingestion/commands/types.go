// Package commands implements the ingestion pipeline's command handlers
// (spec §4.4 command table), grounded on features/source.Service's
// hash-check-save-publish shape and features/job.Service's repo+publisher
// composition from the teacher.
package commands

import (
	"time"

	"github.com/cryptoganster/content-pipeline/internal/domain/content"
	"github.com/cryptoganster/content-pipeline/internal/domain/job"
)

type ScheduleJob struct {
	SourceID string
	FireAt   time.Time
}

type ScheduleJobResult struct {
	JobID string
}

type StartJob struct {
	JobID string
}

type UpdateJobMetrics struct {
	JobID string
	Delta job.Metrics
}

type CompleteJob struct {
	JobID string
}

type FailJob struct {
	JobID   string
	Message string
	ErrType string // errs.ErrorType value
}

type NormalizeContent struct {
	JobID       string
	SourceID    string
	RawContent  string
	Metadata    map[string]any
	SourceType  string
	CollectedAt time.Time
}

type ValidateContentQuality struct {
	JobID             string
	SourceID          string
	RawContent        string
	NormalizedContent string
	ContentHash       string
	Metadata          content.Metadata
	AssetTags         []content.AssetTag
	CollectedAt       time.Time
}

type DetectDuplicate struct {
	JobID             string
	SourceID          string
	RawContent        string
	NormalizedContent string
	ContentHash       string
	Metadata          content.Metadata
	AssetTags         []content.AssetTag
	CollectedAt       time.Time
}

type SaveContentItem struct {
	JobID             string
	SourceID          string
	RawContent        string
	NormalizedContent string
	ContentHash       string
	Metadata          content.Metadata
	AssetTags         []content.AssetTag
	CollectedAt       time.Time
}

type SaveContentItemResult struct {
	ContentItemID string
}

type CreateSource struct {
	SourceType string
	Name       string
	Config     map[string]any
}

type CreateSourceResult struct {
	SourceID string
}

type UpdateSource struct {
	SourceID string
	Name     string
	Config   map[string]any
}

type DeleteSource struct {
	SourceID string
}

type ConfigureSource struct {
	SourceID    string
	Credentials []byte
}

// HealthOutcome is the outcome UpdateSourceHealth records against a
// source's rolling counters.
type HealthOutcome string

const (
	HealthSuccess HealthOutcome = "success"
	HealthFailure HealthOutcome = "failure"
)

type UpdateSourceHealth struct {
	SourceID string
	Outcome  HealthOutcome
	At       time.Time
}
