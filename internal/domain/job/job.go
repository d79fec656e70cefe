// Package job implements the IngestionJob aggregate: a scheduled fetch run
// against a single source, its metrics, and its lifecycle state machine.
package job

import (
	"time"

	"github.com/cryptoganster/content-pipeline/internal/errs"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// IsTerminal reports whether no further mutation of the job is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Metrics accumulates additive counters updated via UpdateMetrics deltas.
type Metrics struct {
	ItemsCollected     int
	ItemsPersisted     int
	DuplicatesDetected int
	ValidationErrors   int
	BytesProcessed     int64
	DurationMs         int64
}

// Add applies a delta field-wise. Zero fields in delta leave the
// corresponding counter unchanged.
func (m *Metrics) Add(delta Metrics) {
	m.ItemsCollected += delta.ItemsCollected
	m.ItemsPersisted += delta.ItemsPersisted
	m.DuplicatesDetected += delta.DuplicatesDetected
	m.ValidationErrors += delta.ValidationErrors
	m.BytesProcessed += delta.BytesProcessed
	m.DurationMs += delta.DurationMs
}

// SourceConfigSnapshot is an embedded, point-in-time copy of the source's
// configuration at schedule time, so a job's provenance survives later
// source edits.
type SourceConfigSnapshot struct {
	SourceType string
	Name       string
	Config     map[string]any
}

// Job is the IngestionJob aggregate.
type Job struct {
	ID           string
	SourceID     string
	Status       Status
	ScheduledAt  time.Time
	ExecutedAt   *time.Time
	CompletedAt  *time.Time
	Metrics      Metrics
	Errors       []errs.Record
	SourceConfig SourceConfigSnapshot
	Version      int
}

// New creates a job in PENDING at version 0. This is the only constructor;
// ScheduleJob is the sole command that may call it.
func New(id, sourceID string, scheduledAt time.Time, cfg SourceConfigSnapshot) *Job {
	return &Job{
		ID:           id,
		SourceID:     sourceID,
		Status:       StatusPending,
		ScheduledAt:  scheduledAt,
		SourceConfig: cfg,
		Version:      0,
	}
}

// Start transitions PENDING -> RUNNING.
func (j *Job) Start(at time.Time) error {
	if j.Status != StatusPending {
		return errs.NewInvariantViolation("Job", "start requires PENDING, got "+string(j.Status))
	}
	j.Status = StatusRunning
	j.ExecutedAt = &at
	return nil
}

// UpdateMetrics applies an additive delta. Valid from any non-terminal
// state. The delta is added as given, so applying the same delta event
// twice counts it twice; callers apply each event's delta exactly once.
func (j *Job) UpdateMetrics(delta Metrics) error {
	if j.Status.IsTerminal() {
		return errs.NewInvariantViolation("Job", "cannot update metrics on terminal job")
	}
	j.Metrics.Add(delta)
	return nil
}

// RecordError appends an ErrorRecord regardless of state; errors observed
// during teardown of a job still belong on its record.
func (j *Job) RecordError(rec errs.Record) {
	j.Errors = append(j.Errors, rec)
}

// Complete transitions RUNNING -> COMPLETED.
func (j *Job) Complete(at time.Time) error {
	if j.Status != StatusRunning {
		return errs.NewInvariantViolation("Job", "complete requires RUNNING, got "+string(j.Status))
	}
	j.Status = StatusCompleted
	j.CompletedAt = &at
	return nil
}

// Fail transitions RUNNING -> FAILED, recording the terminal error.
func (j *Job) Fail(at time.Time, rec errs.Record) error {
	if j.Status != StatusRunning {
		return errs.NewInvariantViolation("Job", "fail requires RUNNING, got "+string(j.Status))
	}
	j.Status = StatusFailed
	j.CompletedAt = &at
	j.Errors = append(j.Errors, rec)
	return nil
}

// Cancel transitions PENDING or RUNNING -> CANCELLED.
func (j *Job) Cancel(at time.Time) error {
	if j.Status.IsTerminal() {
		return errs.NewInvariantViolation("Job", "cannot cancel a terminal job")
	}
	j.Status = StatusCancelled
	j.CompletedAt = &at
	return nil
}
