// Package handlers wires the ingestion event handlers that glue the
// pipeline's command stages together (spec §4.4: "Event handlers glue
// stages"). Each handler reacts to exactly one event type, issues the next
// command(s) on the shared command bus, and never returns an error to the
// bus — failures are logged and, where the spec calls for it, turned into
// a FailJob command instead of propagating.
package handlers

import (
	"log/slog"
	"sync"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/ports"
	"github.com/cryptoganster/content-pipeline/internal/resilience"
	"github.com/cryptoganster/content-pipeline/internal/store"
)

// Handlers bundles the dependencies every ingestion event handler needs.
type Handlers struct {
	Cmd      *bus.CommandBus
	Events   *bus.EventBus
	Jobs     store.JobRepository
	Sources  store.SourceRepository
	Adapters ports.AdapterRegistry
	Logger   *slog.Logger
	RetryCfg resilience.RetryConfig

	breakersMu sync.Mutex
	breakers   map[string]*resilience.CircuitBreaker
}

// breakerFor returns the per-source circuit breaker, creating it on first
// use. One breaker per source isolates one misbehaving adapter's trips
// from every other source's fetches.
func (h *Handlers) breakerFor(sourceID string) *resilience.CircuitBreaker {
	h.breakersMu.Lock()
	defer h.breakersMu.Unlock()
	if h.breakers == nil {
		h.breakers = make(map[string]*resilience.CircuitBreaker)
	}
	b, ok := h.breakers[sourceID]
	if !ok {
		b = resilience.NewCircuitBreaker(resilience.DefaultBreakerConfig())
		h.breakers[sourceID] = b
	}
	return b
}

// Register subscribes every ingestion event handler on evt.
func (h *Handlers) Register() {
	h.Events.Subscribe(jobScheduledSample, h.onJobScheduled)
	h.Events.Subscribe(jobStartedSample, h.onJobStarted)
	h.Events.Subscribe(contentCollectedSample, h.onContentCollected)
	h.Events.Subscribe(contentNormalizedSample, h.onContentNormalized)
	h.Events.Subscribe(contentQualityValidatedSample, h.onContentQualityValidated)
	h.Events.Subscribe(contentValidationFailedSample, h.onContentValidationFailed)
	h.Events.Subscribe(contentDeduplicationCheckedSample, h.onContentDeduplicationChecked)
	h.Events.Subscribe(contentIngestedSample, h.onContentIngested)
	h.Events.Subscribe(jobCompletedSample, h.onJobCompleted)
	h.Events.Subscribe(jobFailedSample, h.onJobFailed)
	h.Events.Subscribe(sourceUnhealthySample, h.onSourceUnhealthy)
}

// ExpectedEvents lists every event type this package subscribes to, used
// by the startup self-check (spec §9).
func (h *Handlers) ExpectedEvents() []bus.Event {
	return []bus.Event{
		jobScheduledSample, jobStartedSample, contentCollectedSample,
		contentNormalizedSample, contentQualityValidatedSample,
		contentValidationFailedSample, contentDeduplicationCheckedSample,
		contentIngestedSample, jobCompletedSample, jobFailedSample,
		sourceUnhealthySample,
	}
}
