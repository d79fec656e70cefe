// Package app is the composition root: it wires the shared command/event
// buses, every aggregate repository, every external-collaborator adapter,
// and the HTTP presentation layer into one runnable process, grounded on
// the teacher's app.New (features wired through one constructor returning
// an *App with a routed http.Handler).
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cryptoganster/content-pipeline/internal/adapter/gemini"
	"github.com/cryptoganster/content-pipeline/internal/adapter/httpfetch"
	"github.com/cryptoganster/content-pipeline/internal/adapter/langdetect"
	"github.com/cryptoganster/content-pipeline/internal/adapterregistry"
	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/config"
	"github.com/cryptoganster/content-pipeline/internal/crypto"
	"github.com/cryptoganster/content-pipeline/internal/domain/source"
	"github.com/cryptoganster/content-pipeline/internal/hashing"
	ingestioncommands "github.com/cryptoganster/content-pipeline/internal/ingestion/commands"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/dedupcache"
	ingestionhandlers "github.com/cryptoganster/content-pipeline/internal/ingestion/handlers"
	"github.com/cryptoganster/content-pipeline/internal/httpapi"
	"github.com/cryptoganster/content-pipeline/internal/ports"
	refinementcommands "github.com/cryptoganster/content-pipeline/internal/refinement/commands"
	refinementhandlers "github.com/cryptoganster/content-pipeline/internal/refinement/handlers"
	"github.com/cryptoganster/content-pipeline/internal/resilience"
	"github.com/cryptoganster/content-pipeline/internal/scheduler"
	"github.com/cryptoganster/content-pipeline/internal/store"
)

// App bundles the running process's routed handler and the shared buses,
// so main can mount the HTTP server and cmd/qurio-ingest can dispatch CLI
// commands against the very same core.
type App struct {
	Handler   http.Handler
	Commands  *bus.CommandBus
	Events    *bus.EventBus
	Scheduler *scheduler.Scheduler
	Jobs      store.JobRepository
	cfg       *config.Config
}

// JobStatus reads a job's current state directly from its repository, the
// same read path httpapi's GET /jobs/{id} uses.
func (a *App) JobStatus(ctx context.Context, jobID string) (any, error) {
	return a.Jobs.Get(ctx, jobID)
}

// Dependencies is everything Bootstrap constructs that New needs: real
// infrastructure in production, fakes in tests (internal/store/memory,
// a nil Sink, no gemini client).
type Dependencies struct {
	Jobs        store.JobRepository
	Sources     store.SourceRepository
	Content     store.ContentRepository
	Refinements store.RefinementRepository
	Tallies     store.ChunkTallyRepository

	Entities ports.EntityExtractor
	Temporal ports.TemporalExtractor
	Quality  ports.QualityAnalyzer
	Sink     ports.RefinementSink

	Cipher      ports.CredentialCipher
	KeyProvider ports.EncryptionKeyProvider

	Transport bus.Transport // nil disables event forwarding
}

// New wires every command/event handler onto a shared bus pair, runs the
// startup self-check (spec §9: reject unregistered types before serving
// any request), and builds the routed HTTP handler.
func New(cfg *config.Config, deps Dependencies, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cmdBus := bus.NewCommandBus()
	eventBus := bus.NewEventBus(logger)
	if deps.Transport != nil {
		eventBus.WithTransport(deps.Transport)
	}

	adapters := adapterregistry.New()
	adapters.Register("WEB", httpfetch.New())
	adapters.Register("RSS", httpfetch.New())

	newID := func() string { return uuid.NewString() }

	ingestionCmdHandlers := &ingestioncommands.Handlers{
		Jobs:        deps.Jobs,
		Sources:     deps.Sources,
		Content:     deps.Content,
		Hash:        hashing.New(),
		Events:      eventBus,
		Logger:      logger,
		DedupCache:  dedupcache.New(),
		HealthCfg:   source.DefaultHealthConfig(),
		NewID:       newID,
		Lang:        langdetect.New(),
		Cipher:      deps.Cipher,
		KeyProvider: deps.KeyProvider,
	}
	ingestionCmdHandlers.Register(cmdBus)

	ingestionEvtHandlers := &ingestionhandlers.Handlers{
		Cmd:      cmdBus,
		Events:   eventBus,
		Jobs:     deps.Jobs,
		Sources:  deps.Sources,
		Adapters: adapters,
		Logger:   logger,
		RetryCfg: resilience.DefaultRetryConfig(),
	}
	ingestionEvtHandlers.Register()

	refinementCfg := refinementcommands.Config{
		ChunkSize:        cfg.ChunkSize,
		ChunkOverlap:     cfg.ChunkOverlap,
		QualityThreshold: cfg.QualityThreshold,
	}

	refinementCmdHandlers := &refinementcommands.Handlers{
		Refinements: deps.Refinements,
		Content:     deps.Content,
		Tallies:     deps.Tallies,
		Entities:    deps.Entities,
		Temporal:    deps.Temporal,
		Quality:     deps.Quality,
		Hash:        hashing.New(),
		Events:      eventBus,
		Logger:      logger,
		NewID:       newID,
		Cfg:         refinementCfg,
	}
	refinementCmdHandlers.Register(cmdBus)

	refinementEvtHandlers := &refinementhandlers.Handlers{
		Cmd:         cmdBus,
		Events:      eventBus,
		Tallies:     deps.Tallies,
		Refinements: deps.Refinements,
		Sink:        deps.Sink,
		Logger:      logger,
		Cfg:         refinementCfg,
	}
	refinementEvtHandlers.Register()

	if err := cmdBus.ValidateRegistered(append(ingestionCmdHandlers.ExpectedCommands(), refinementCmdHandlers.ExpectedCommands()...)); err != nil {
		return nil, fmt.Errorf("app: command bus self-check failed: %w", err)
	}
	if err := eventBus.ValidateSubscribed(append(ingestionEvtHandlers.ExpectedEvents(), refinementEvtHandlers.ExpectedEvents()...)); err != nil {
		return nil, fmt.Errorf("app: event bus self-check failed: %w", err)
	}

	sched := scheduler.New(logger)

	httpHandler := httpapi.NewHandler(cmdBus, deps.Jobs, deps.Sources)

	return &App{
		Handler:   httpHandler.Mux(),
		Commands:  cmdBus,
		Events:    eventBus,
		Scheduler: sched,
		Jobs:      deps.Jobs,
		cfg:       cfg,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully and
// cancels every outstanding scheduler registration.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.HTTPPort),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("app: shutting down")
		a.Scheduler.CancelAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("app: server shutdown failed", "error", err)
		}
	}()

	slog.Info("app: serving", "port", a.cfg.HTTPPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// NewGeminiAdapters constructs the NLP collaborators from a shared Gemini
// client, or returns all-nil extractors when apiKey is empty so a
// memory-backend dev run can proceed without external calls.
func NewGeminiAdapters(ctx context.Context, apiKey string) (ports.EntityExtractor, ports.TemporalExtractor, ports.QualityAnalyzer, error) {
	if apiKey == "" {
		return nil, nil, nil, nil
	}
	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("app: gemini client: %w", err)
	}
	return gemini.NewEntityExtractor(client), gemini.NewTemporalExtractor(client), gemini.NewQualityAnalyzer(client), nil
}

// NewCryptoAdapters builds the credential cipher and its key provider from
// config, grounded on internal/crypto's AES-GCM + env-var key idiom.
func NewCryptoAdapters(cfg *config.Config) (ports.CredentialCipher, ports.EncryptionKeyProvider) {
	return crypto.New(), crypto.NewEnvKeyProvider(cfg.EncryptionKeyEnvVar)
}
