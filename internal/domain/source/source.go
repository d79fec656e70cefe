// Package source implements the SourceConfiguration aggregate: a pluggable
// content source's config, credentials, activity flag, and rolling health.
package source

import (
	"time"

	"github.com/cryptoganster/content-pipeline/internal/errs"
)

// HealthConfig carries the unhealthy-crossing thresholds as configuration
// rather than hard-coded constants (spec Open Question 2).
type HealthConfig struct {
	SuccessRateFloor          float64 // default 50
	MinTotalJobs              int     // default 10
	ConsecutiveFailureCeiling int     // default 5
}

// DefaultHealthConfig returns the thresholds named literally in the spec.
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		SuccessRateFloor:          50,
		MinTotalJobs:              10,
		ConsecutiveFailureCeiling: 5,
	}
}

// Health tracks the rolling outcome counters behind IsUnhealthy.
type Health struct {
	ConsecutiveFailures int
	SuccessRate         float64 // 0..100
	TotalJobs           int
	LastSuccessAt       *time.Time
	LastFailureAt       *time.Time

	Successes int
	// LatchedUnhealthy latches the first crossing so repeated crossings
	// while already disabled do not re-publish SourceUnhealthy. Exported so
	// it round-trips through persistence like every other Health field.
	LatchedUnhealthy bool
}

func (h *Health) recordSuccess(at time.Time) {
	h.Successes++
	h.TotalJobs++
	h.ConsecutiveFailures = 0
	h.LastSuccessAt = &at
	h.recompute()
}

func (h *Health) recordFailure(at time.Time) {
	h.TotalJobs++
	h.ConsecutiveFailures++
	h.LastFailureAt = &at
	h.recompute()
}

func (h *Health) recompute() {
	if h.TotalJobs == 0 {
		h.SuccessRate = 0
		return
	}
	h.SuccessRate = float64(h.Successes) / float64(h.TotalJobs) * 100
}

// IsUnhealthy reports the crossing condition from spec §3: successRate<50
// with enough samples, or too many failures in a row.
func (h Health) IsUnhealthy(cfg HealthConfig) bool {
	belowFloor := h.SuccessRate < cfg.SuccessRateFloor && h.TotalJobs >= cfg.MinTotalJobs
	tooManyInARow := h.ConsecutiveFailures >= cfg.ConsecutiveFailureCeiling
	return belowFloor || tooManyInARow
}

// Source is the SourceConfiguration aggregate.
type Source struct {
	ID          string
	SourceType  string
	Name        string
	Config      map[string]any
	Credentials []byte // opaque ciphertext, see ports.CredentialCipher
	IsActive    bool
	Health      Health
	Version     int
}

// New creates an active source at version 0.
func New(id, sourceType, name string, config map[string]any) *Source {
	return &Source{
		ID:         id,
		SourceType: sourceType,
		Name:       name,
		Config:     config,
		IsActive:   true,
		Version:    0,
	}
}

// RecordSuccess resets ConsecutiveFailures to 0 and updates SuccessRate.
func (s *Source) RecordSuccess(at time.Time) {
	s.Health.recordSuccess(at)
}

// RecordFailure increments ConsecutiveFailures by 1 and updates SuccessRate.
func (s *Source) RecordFailure(at time.Time) {
	s.Health.recordFailure(at)
}

// CheckUnhealthy reports true only on the first crossing since the source
// was last healthy (or created), to avoid publishing SourceUnhealthy once
// per job thereafter.
func (s *Source) CheckUnhealthy(cfg HealthConfig) bool {
	unhealthy := s.Health.IsUnhealthy(cfg)
	if !unhealthy {
		s.Health.LatchedUnhealthy = false
		return false
	}
	if s.Health.LatchedUnhealthy {
		return false
	}
	s.Health.LatchedUnhealthy = true
	return true
}

// Disable soft-deactivates the source. Idempotent: disabling an already
// inactive source is a no-op, matching the auto-disable handler's
// redundant-update guard.
func (s *Source) Disable(reason string) {
	_ = reason
	s.IsActive = false
}

// Activate reactivates a soft-disabled source and clears the unhealthy
// latch so future crossings can be detected again.
func (s *Source) Activate() {
	s.IsActive = true
	s.Health.LatchedUnhealthy = false
}

// UpdateConfig replaces the mutable configuration fields. Credentials are
// updated separately through the encryption port.
func (s *Source) UpdateConfig(name string, config map[string]any) error {
	if name == "" {
		return errs.NewValidation("name", "must not be empty")
	}
	s.Name = name
	s.Config = config
	return nil
}

// SetCredentials stores opaque, already-encrypted credential bytes.
func (s *Source) SetCredentials(ciphertext []byte) {
	s.Credentials = ciphertext
}
