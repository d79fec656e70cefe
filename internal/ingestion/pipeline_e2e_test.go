package ingestion_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoganster/content-pipeline/internal/adapterregistry"
	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/domain/source"
	"github.com/cryptoganster/content-pipeline/internal/errs"
	"github.com/cryptoganster/content-pipeline/internal/hashing"
	ingestioncommands "github.com/cryptoganster/content-pipeline/internal/ingestion/commands"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/dedupcache"
	ingestionhandlers "github.com/cryptoganster/content-pipeline/internal/ingestion/handlers"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/normalize"
	"github.com/cryptoganster/content-pipeline/internal/ports"
	refinementcommands "github.com/cryptoganster/content-pipeline/internal/refinement/commands"
	refinementhandlers "github.com/cryptoganster/content-pipeline/internal/refinement/handlers"
	"github.com/cryptoganster/content-pipeline/internal/resilience"
	"github.com/cryptoganster/content-pipeline/internal/store/memory"
)

// networkError builds a retryable NETWORK-classified error, the kind a
// flaky adapter's error channel yields (spec §8 scenario 3).
func networkError() error {
	return errs.NewTransient(errs.Network, errors.New("connection reset"))
}

// fakeQuality always scores above any reasonable threshold, so the
// ingestion scenarios below exercise StartRefinement's synchronous
// fan-out/fan-in without the outcome of refinement itself being under
// test here (see internal/refinement/pipeline_e2e_test.go for that).
type fakeQuality struct{}

func (fakeQuality) Analyze(ctx context.Context, content string, input ports.QualityInput) (ports.QualityComponents, error) {
	return ports.QualityComponents{Length: 1, Coherence: 1, Relevance: 1, Freshness: 1}, nil
}

type fakeEntities struct{}

func (fakeEntities) Extract(ctx context.Context, content string) ([]ports.CryptoEntity, error) {
	return nil, nil
}

// fakeAdapter yields a scripted sequence of RawItem batches or errors, one
// entry consumed per Collect call, so a test can script exactly how many
// times a job's fetch fails before (if ever) it succeeds.
type fakeAdapter struct {
	mu      sync.Mutex
	batches [][]ports.RawItem
	errs    []error
	calls   int
}

func (a *fakeAdapter) Collect(ctx context.Context, config map[string]any) (<-chan ports.RawItem, <-chan error) {
	a.mu.Lock()
	i := a.calls
	a.calls++
	a.mu.Unlock()

	items := make(chan ports.RawItem, 8)
	errc := make(chan error, 1)

	go func() {
		defer close(items)
		defer close(errc)
		if i < len(a.errs) && a.errs[i] != nil {
			errc <- a.errs[i]
			return
		}
		var batch []ports.RawItem
		if i < len(a.batches) {
			batch = a.batches[i]
		}
		for _, it := range batch {
			items <- it
		}
	}()
	return items, errc
}

func (a *fakeAdapter) Supports(sourceType string) bool { return sourceType == "WEB" }

func (a *fakeAdapter) ValidateConfig(config map[string]any) ports.ConfigValidation {
	return ports.ConfigValidation{IsValid: true}
}

// harness wires the ingestion and refinement command/event handlers onto
// a shared bus pair against in-memory repositories, the same shape
// internal/app.New builds in production but with knobs (retry config,
// adapter) a single test needs that app.New hard-codes.
type harness struct {
	cmdBus  *bus.CommandBus
	sources *memory.SourceRepo
	jobs    *memory.JobRepo
	content *memory.ContentRepo
}

func newHarness(t *testing.T, adapter ports.SourceAdapter, retryCfg resilience.RetryConfig) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cmdBus := bus.NewCommandBus()
	eventBus := bus.NewEventBus(logger)

	jobs := memory.NewJobRepo()
	sources := memory.NewSourceRepo()
	content := memory.NewContentRepo()
	refinements := memory.NewRefinementRepo()
	tallies := memory.NewChunkTallyRepo()

	adapters := adapterregistry.New()
	adapters.Register("WEB", adapter)

	newID := func() string { return uuid.NewString() }

	ingestionCmd := &ingestioncommands.Handlers{
		Jobs:       jobs,
		Sources:    sources,
		Content:    content,
		Hash:       hashing.New(),
		Events:     eventBus,
		Logger:     logger,
		DedupCache: dedupcache.New(),
		HealthCfg:  source.DefaultHealthConfig(),
		NewID:      newID,
		Lang:       nil,
	}
	ingestionCmd.Register(cmdBus)

	ingestionEvt := &ingestionhandlers.Handlers{
		Cmd:      cmdBus,
		Events:   eventBus,
		Jobs:     jobs,
		Sources:  sources,
		Adapters: adapters,
		Logger:   logger,
		RetryCfg: retryCfg,
	}
	ingestionEvt.Register()

	refCfg := refinementcommands.Config{ChunkSize: 512, ChunkOverlap: 0, QualityThreshold: 0.3}

	refinementCmd := &refinementcommands.Handlers{
		Refinements: refinements,
		Content:     content,
		Tallies:     tallies,
		Entities:    fakeEntities{},
		Temporal:    nil,
		Quality:     fakeQuality{},
		Hash:        hashing.New(),
		Events:      eventBus,
		Logger:      logger,
		NewID:       newID,
		Cfg:         refCfg,
	}
	refinementCmd.Register(cmdBus)

	refinementEvt := &refinementhandlers.Handlers{
		Cmd:         cmdBus,
		Events:      eventBus,
		Tallies:     tallies,
		Refinements: refinements,
		Sink:        nil,
		Logger:      logger,
		Cfg:         refCfg,
	}
	refinementEvt.Register()

	require.NoError(t, cmdBus.ValidateRegistered(append(ingestionCmd.ExpectedCommands(), refinementCmd.ExpectedCommands()...)))
	require.NoError(t, eventBus.ValidateSubscribed(append(ingestionEvt.ExpectedEvents(), refinementEvt.ExpectedEvents()...)))

	return &harness{cmdBus: cmdBus, sources: sources, jobs: jobs, content: content}
}

func seedSource(t *testing.T, h *harness) *source.Source {
	t.Helper()
	src := source.New("src-1", "WEB", "Crypto Site", map[string]any{})
	require.NoError(t, h.sources.Save(context.Background(), src))
	return src
}

// fastRetry keeps scenario 3/4's retry loop well under the test process's
// patience: the production defaults (1s initial delay, up to 60s) are
// correct for the real system but would make this test glacial.
func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:       5,
		InitialDelay:      1 * time.Millisecond,
		BackoffMultiplier: 2,
		MaxDelay:          20 * time.Millisecond,
		UseJitter:         false,
	}
}

// Scenario 1 (spec §8): happy ingest.
func TestPipeline_HappyIngest(t *testing.T) {
	raw := "BTC rallied hard today on strong spot volume across major venues."
	adapter := &fakeAdapter{batches: [][]ports.RawItem{{
		{RawContent: raw, Metadata: map[string]any{"title": "Rally"}, SourceType: "WEB", CollectedAt: time.Now().UTC()},
	}}}
	h := newHarness(t, adapter, fastRetry())
	src := seedSource(t, h)
	ctx := context.Background()

	result, err := h.cmdBus.Execute(ctx, ingestioncommands.ScheduleJob{SourceID: src.ID, FireAt: time.Now().UTC()})
	require.NoError(t, err)
	jobID := result.(ingestioncommands.ScheduleJobResult).JobID

	j, err := h.jobs.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", string(j.Status))
	assert.Equal(t, 1, j.Metrics.ItemsCollected)
	assert.Equal(t, 1, j.Metrics.ItemsPersisted)
	assert.Equal(t, 0, j.Metrics.DuplicatesDetected)

	wantHash := hashing.New().SHA256(normalize.Normalize(raw))
	item, err := h.content.GetByHash(ctx, wantHash)
	require.NoError(t, err)
	assert.Equal(t, wantHash, item.ContentHash)

	require.Len(t, item.AssetTags, 1)
	assert.Equal(t, "BTC", item.AssetTags[0].Symbol)
	assert.GreaterOrEqual(t, item.AssetTags[0].Confidence, 0.5)

	gotSrc, err := h.sources.Get(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotSrc.Health.Successes)
	assert.Equal(t, 0, gotSrc.Health.ConsecutiveFailures)
}

// Scenario 2 (spec §8): duplicate ingest.
func TestPipeline_DuplicateIngest(t *testing.T) {
	raw := "ETH broke through resistance as the wider market firmed up."
	item := ports.RawItem{RawContent: raw, SourceType: "WEB", CollectedAt: time.Now().UTC()}
	adapter := &fakeAdapter{batches: [][]ports.RawItem{{item}, {item}}}
	h := newHarness(t, adapter, fastRetry())
	src := seedSource(t, h)
	ctx := context.Background()

	_, err := h.cmdBus.Execute(ctx, ingestioncommands.ScheduleJob{SourceID: src.ID, FireAt: time.Now().UTC()})
	require.NoError(t, err)

	result2, err := h.cmdBus.Execute(ctx, ingestioncommands.ScheduleJob{SourceID: src.ID, FireAt: time.Now().UTC()})
	require.NoError(t, err)
	job2ID := result2.(ingestioncommands.ScheduleJobResult).JobID

	j2, err := h.jobs.Get(ctx, job2ID)
	require.NoError(t, err)
	assert.Equal(t, 1, j2.Metrics.ItemsCollected)
	assert.Equal(t, 0, j2.Metrics.ItemsPersisted)
	assert.Equal(t, 1, j2.Metrics.DuplicatesDetected)

	count, err := h.content.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// Scenario 3 (spec §8): flaky source recovers within retry's default
// attempt budget; breaker stays CLOSED (4 failures < FailureThreshold 5).
func TestPipeline_FlakySourceRecovers(t *testing.T) {
	raw := "SOL network throughput hit a new high this quarter, more than twenty chars."
	netErr := networkError()
	adapter := &fakeAdapter{
		errs:    []error{netErr, netErr, netErr, netErr},
		batches: [][]ports.RawItem{nil, nil, nil, nil, {{RawContent: raw, SourceType: "WEB", CollectedAt: time.Now().UTC()}}},
	}
	h := newHarness(t, adapter, fastRetry())
	src := seedSource(t, h)
	ctx := context.Background()

	result, err := h.cmdBus.Execute(ctx, ingestioncommands.ScheduleJob{SourceID: src.ID, FireAt: time.Now().UTC()})
	require.NoError(t, err)
	jobID := result.(ingestioncommands.ScheduleJobResult).JobID

	j, err := h.jobs.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", string(j.Status))
	assert.Equal(t, 5, adapter.calls)

	gotSrc, err := h.sources.Get(ctx, src.ID)
	require.NoError(t, err)
	assert.True(t, gotSrc.IsActive)
}

// Scenario 4 (spec §8): a permanently failing adapter exhausts retry on
// every job; after 5 consecutive job failures SourceUnhealthy fires and
// the source is auto-disabled.
func TestPipeline_AutoDisableAfterConsecutiveFailures(t *testing.T) {
	netErr := networkError()
	errs := make([]error, 0, 25)
	for i := 0; i < 25; i++ {
		errs = append(errs, netErr)
	}
	adapter := &fakeAdapter{errs: errs}
	h := newHarness(t, adapter, fastRetry())
	src := seedSource(t, h)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := h.cmdBus.Execute(ctx, ingestioncommands.ScheduleJob{SourceID: src.ID, FireAt: time.Now().UTC()})
		require.NoError(t, err)
	}

	gotSrc, err := h.sources.Get(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, gotSrc.Health.ConsecutiveFailures)
	assert.False(t, gotSrc.IsActive)
}
