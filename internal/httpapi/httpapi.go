// Package httpapi is a thin REST presentation over the shared command bus,
// grounded on features/job.Handler: a ServeMux, the middleware.CorrelationID
// stack, and the same {"data":...,"meta":...} / {"error":{...}} envelope.
// It exposes the same operations as cmd/qurio-ingest's subcommands so the
// CLI and HTTP surfaces stay interchangeable outer presentations over one
// core (spec §6).
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/errs"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/commands"
	"github.com/cryptoganster/content-pipeline/internal/middleware"
	refinecommands "github.com/cryptoganster/content-pipeline/internal/refinement/commands"
	"github.com/cryptoganster/content-pipeline/internal/store"
)

// Handler bundles every dependency the HTTP surface needs to execute
// commands and answer read-only status queries.
type Handler struct {
	Commands *bus.CommandBus
	Jobs     store.JobRepository
	Sources  store.SourceRepository
}

func NewHandler(cmdBus *bus.CommandBus, jobs store.JobRepository, sources store.SourceRepository) *Handler {
	return &Handler{Commands: cmdBus, Jobs: jobs, Sources: sources}
}

// Mux builds the routed ServeMux, wrapped in middleware.CorrelationID.
func (h *Handler) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sources", h.CreateSource)
	mux.HandleFunc("POST /sources/{id}/credentials", h.ConfigureSource)
	mux.HandleFunc("POST /sources/{id}/schedule", h.ScheduleJob)
	mux.HandleFunc("GET /jobs/{id}", h.JobStatus)
	mux.HandleFunc("POST /content/{id}/refine", h.ProcessContent)
	return middleware.CorrelationID(mux)
}

type createSourceRequest struct {
	SourceType string         `json:"sourceType"`
	Name       string         `json:"name"`
	Config     map[string]any `json:"config"`
}

func (h *Handler) CreateSource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION", "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.Commands.Execute(ctx, commands.CreateSource{
		SourceType: req.SourceType,
		Name:       req.Name,
		Config:     req.Config,
	})
	if err != nil {
		h.writeCommandError(ctx, w, err)
		return
	}

	h.writeData(ctx, w, http.StatusCreated, result, nil)
}

type configureSourceRequest struct {
	Credentials string `json:"credentials"` // raw secret, encrypted by the handler before storage
}

func (h *Handler) ConfigureSource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	var req configureSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION", "invalid request body", http.StatusBadRequest)
		return
	}

	_, err := h.Commands.Execute(ctx, commands.ConfigureSource{
		SourceID:    id,
		Credentials: []byte(req.Credentials),
	})
	if err != nil {
		h.writeCommandError(ctx, w, err)
		return
	}

	h.writeData(ctx, w, http.StatusOK, "credentials configured", nil)
}

type scheduleJobRequest struct {
	FireAt *time.Time `json:"fireAt"` // nil means now
}

func (h *Handler) ScheduleJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	var req scheduleJobRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(ctx, w, "VALIDATION", "invalid request body", http.StatusBadRequest)
			return
		}
	}
	fireAt := time.Now()
	if req.FireAt != nil {
		fireAt = *req.FireAt
	}

	result, err := h.Commands.Execute(ctx, commands.ScheduleJob{SourceID: id, FireAt: fireAt})
	if err != nil {
		h.writeCommandError(ctx, w, err)
		return
	}

	h.writeData(ctx, w, http.StatusAccepted, result, nil)
}

func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	j, err := h.Jobs.Get(ctx, id)
	if err != nil {
		h.writeCommandError(ctx, w, err)
		return
	}

	h.writeData(ctx, w, http.StatusOK, j, nil)
}

func (h *Handler) ProcessContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	result, err := h.Commands.Execute(ctx, refinecommands.StartRefinement{ContentItemID: id})
	if err != nil {
		h.writeCommandError(ctx, w, err)
		return
	}

	h.writeData(ctx, w, http.StatusAccepted, result, nil)
}

func (h *Handler) writeData(ctx context.Context, w http.ResponseWriter, status int, data any, meta any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]any{"data": data}
	if meta != nil {
		resp["meta"] = meta
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "httpapi: failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]any{
		"error":         map[string]string{"code": code, "message": message},
		"correlationId": middleware.GetCorrelationID(ctx),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "httpapi: failed to encode error response", "error", err)
	}
}

// writeCommandError maps the shared error taxonomy (internal/errs) onto
// HTTP status codes, mirroring the CLI's exit-code table (spec §7).
func (h *Handler) writeCommandError(ctx context.Context, w http.ResponseWriter, err error) {
	slog.ErrorContext(ctx, "httpapi: command failed", "error", err)

	var (
		validation *errs.ValidationError
		invariant  *errs.InvariantViolationError
		concurrent *errs.ConcurrencyError
		notFound   *errs.NotFoundError
		transient  *errs.TransientError
		permanent  *errs.PermanentError
	)

	switch {
	case errors.As(err, &validation):
		h.writeError(ctx, w, "VALIDATION", validation.Error(), http.StatusBadRequest)
	case errors.As(err, &invariant):
		h.writeError(ctx, w, "INVARIANT_VIOLATION", invariant.Error(), http.StatusConflict)
	case errors.As(err, &concurrent):
		h.writeError(ctx, w, "CONCURRENCY", concurrent.Error(), http.StatusConflict)
	case errors.As(err, &notFound):
		h.writeError(ctx, w, "NOT_FOUND", notFound.Error(), http.StatusNotFound)
	case errors.As(err, &transient):
		h.writeError(ctx, w, "TRANSIENT", transient.Error(), http.StatusServiceUnavailable)
	case errors.As(err, &permanent):
		h.writeError(ctx, w, "PERMANENT", permanent.Error(), http.StatusUnprocessableEntity)
	default:
		h.writeError(ctx, w, "UNKNOWN", err.Error(), http.StatusInternalServerError)
	}
}
