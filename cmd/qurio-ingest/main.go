// Command qurio-ingest is the CLI/daemon entrypoint, grounded on the
// teacher's main.go (config load → bootstrap infra → wire app → serve),
// generalized into subcommands that dispatch over the same command bus
// internal/httpapi's REST surface uses, per SPEC_FULL §6.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cryptoganster/content-pipeline/internal/app"
	"github.com/cryptoganster/content-pipeline/internal/config"
	"github.com/cryptoganster/content-pipeline/internal/errs"
	ingestioncommands "github.com/cryptoganster/content-pipeline/internal/ingestion/commands"
	refinementcommands "github.com/cryptoganster/content-pipeline/internal/refinement/commands"
)

// Exit codes per the error taxonomy's CLI mapping (spec §7).
const (
	exitOK                  = 0
	exitValidation          = 1
	exitTransientOrConflict = 2
	exitPermanent           = 3
	exitNotFound            = 4
	exitUnknown             = 70
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(exitValidation)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(exitValidation)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infra, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(exitUnknown)
	}
	if infra.DB != nil {
		defer infra.DB.Close()
	}

	repos := app.NewRepos(cfg, infra.DB)

	entities, temporal, quality, err := app.NewGeminiAdapters(ctx, cfg.GeminiAPIKey)
	if err != nil {
		slog.Error("failed to build gemini adapters", "error", err)
		os.Exit(exitUnknown)
	}

	cipher, keyProvider := app.NewCryptoAdapters(cfg)

	deps := app.Dependencies{
		Jobs:        repos.Jobs,
		Sources:     repos.Sources,
		Content:     repos.Content,
		Refinements: repos.Refinements,
		Tallies:     repos.Tallies,
		Entities:    entities,
		Temporal:    temporal,
		Quality:     quality,
		Cipher:      cipher,
		KeyProvider: keyProvider,
		Transport:   infra.Transport,
	}
	if infra.VectorStore != nil {
		deps.Sink = infra.VectorStore
	}

	application, err := app.New(cfg, deps, logger)
	if err != nil {
		slog.Error("failed to wire app", "error", err)
		os.Exit(exitUnknown)
	}

	switch os.Args[1] {
	case "serve":
		if err := application.Run(ctx); err != nil {
			slog.Error("server exited with error", "error", err)
			os.Exit(exitUnknown)
		}
	case "schedule":
		runSchedule(ctx, application, os.Args[2:])
	case "status":
		runStatus(ctx, application, os.Args[2:])
	case "create-source":
		runCreateSource(ctx, application, os.Args[2:])
	case "configure-source":
		runConfigureSource(ctx, application, os.Args[2:])
	case "process-content":
		runProcessContent(ctx, application, os.Args[2:])
	default:
		usage()
		os.Exit(exitValidation)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: qurio-ingest <command> [args]

commands:
  serve
  schedule <sourceId> [fireAt RFC3339]
  status <jobId>
  create-source <sourceType> <name>
  configure-source <sourceId> <credentials>
  process-content <contentItemId>`)
}

func runSchedule(ctx context.Context, a *app.App, args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(exitValidation)
	}
	fireAt := time.Now()
	if len(args) >= 2 {
		parsed, err := time.Parse(time.RFC3339, args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalid fireAt, expected RFC3339:", err)
			os.Exit(exitValidation)
		}
		fireAt = parsed
	}
	result, err := a.Commands.Execute(ctx, ingestioncommands.ScheduleJob{SourceID: args[0], FireAt: fireAt})
	exitOnResult(result, err)
}

func runStatus(ctx context.Context, a *app.App, args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(exitValidation)
	}
	j, err := a.JobStatus(ctx, args[0])
	exitOnResult(j, err)
}

func runCreateSource(ctx context.Context, a *app.App, args []string) {
	if len(args) < 2 {
		usage()
		os.Exit(exitValidation)
	}
	result, err := a.Commands.Execute(ctx, ingestioncommands.CreateSource{
		SourceType: args[0],
		Name:       args[1],
		Config:     map[string]any{},
	})
	exitOnResult(result, err)
}

func runConfigureSource(ctx context.Context, a *app.App, args []string) {
	if len(args) < 2 {
		usage()
		os.Exit(exitValidation)
	}
	_, err := a.Commands.Execute(ctx, ingestioncommands.ConfigureSource{
		SourceID:    args[0],
		Credentials: []byte(args[1]),
	})
	exitOnResult("credentials configured", err)
}

func runProcessContent(ctx context.Context, a *app.App, args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(exitValidation)
	}
	result, err := a.Commands.Execute(ctx, refinementcommands.StartRefinement{ContentItemID: args[0]})
	exitOnResult(result, err)
}

// exitOnResult prints result as JSON on success, or the error's single-line
// message on its matching exit code (spec §7 CLI exit-code table).
func exitOnResult(result any, err error) {
	if err == nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
		os.Exit(exitOK)
	}

	fmt.Fprintln(os.Stderr, err.Error())

	var (
		validation *errs.ValidationError
		invariant  *errs.InvariantViolationError
		concurrent *errs.ConcurrencyError
		notFound   *errs.NotFoundError
		transient  *errs.TransientError
		permanent  *errs.PermanentError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &invariant):
		os.Exit(exitValidation)
	case errors.As(err, &transient), errors.As(err, &concurrent):
		os.Exit(exitTransientOrConflict)
	case errors.As(err, &permanent):
		os.Exit(exitPermanent)
	case errors.As(err, &notFound):
		os.Exit(exitNotFound)
	default:
		os.Exit(exitUnknown)
	}
}
