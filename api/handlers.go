/*
handlers.go - HTTP API handlers for the amortization engine

PURPOSE:
  Exposes the amortization engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine.

ENDPOINTS:
  Loans:
    POST   /api/loans                  Amortize terms and store the run
    GET    /api/loans                  List stored runs (no schedules)
    GET    /api/loans/{id}             Get a run with its full schedule
    GET    /api/loans/{id}/summary     Plain-text terms summary

  Scenarios:
    GET    /api/scenarios              List preset loans
    POST   /api/scenarios/{id}         Amortize a preset and store the run

  Health:
    GET    /api/health

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Run persistence (memory or SQLite)
  - Cache: Terms key -> run ID, so identical requests reuse a stored run
  - LoanFactory: JSON to Terms conversion
  - MaxPeriods: Period budget handed to every Amortizer
  - AmortizeTimeout: Deadline on each amortization, on top of the
    request context

REQUEST FLOW:
  1. Parse HTTP request into Terms
  2. Look up the cache; on hit, load and return the stored run
  3. Amortize with the period budget under the deadline
  4. Persist the run, remember its ID in the cache
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid amount, date or period; nothing to amortize
  - 404: Run or scenario not found
  - 422: Schedule did not converge within the budget (body carries the
         partial schedule)
  - 500: Internal errors
  - 503: Amortization hit its deadline or the client went away (nothing
         is stored)

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Preset loans
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/amortization-engine/amortization"
	"github.com/warp/amortization-engine/cache"
	"github.com/warp/amortization-engine/factory"
)

// maxBodyBytes bounds request bodies; a terms document is a few hundred bytes.
const maxBodyBytes = 1 << 16

// DefaultAmortizeTimeout is the per-request amortization deadline.
const DefaultAmortizeTimeout = 10 * time.Second

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       amortization.Store
	Cache       cache.Cache
	LoanFactory *factory.LoanFactory
	MaxPeriods  int
	Logger      *zap.Logger

	// AmortizeTimeout bounds each amortization; 0 leaves only the request
	// context.
	AmortizeTimeout time.Duration

	now   func() time.Time
	newID func() amortization.RunID
}

// NewHandler creates a handler over store. Cache may be nil.
func NewHandler(store amortization.Store, c cache.Cache, maxPeriods int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:           store,
		Cache:           c,
		LoanFactory:     factory.NewLoanFactory(),
		MaxPeriods:      maxPeriods,
		Logger:          logger,
		AmortizeTimeout: DefaultAmortizeTimeout,
		now:             time.Now,
		newID:           func() amortization.RunID { return amortization.RunID(uuid.NewString()) },
	}
}

// =============================================================================
// LOAN HANDLERS
// =============================================================================

// CreateLoan amortizes the posted terms.
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	terms, err := h.LoanFactory.ParseTerms(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid loan terms", err)
		return
	}

	h.amortizeAndRespond(w, r, terms)
}

// ListLoans returns every stored run without schedules.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Store.List(r.Context())
	if err != nil {
		h.Logger.Error("failed to list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list loans", err)
		return
	}

	dtos := make([]LoanDTO, len(summaries))
	for i, sum := range summaries {
		dtos[i] = toSummaryDTO(h.LoanFactory, sum)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLoan returns one run with its full schedule.
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(h.LoanFactory, run))
}

// GetLoanSummary returns the plain-text terms summary of a run.
func (h *Handler) GetLoanSummary(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, run.Terms.String()+"\n")
}

func (h *Handler) loadRun(w http.ResponseWriter, r *http.Request) (amortization.Run, bool) {
	id := amortization.RunID(chi.URLParam(r, "id"))
	run, err := h.Store.Load(r.Context(), id)
	if err != nil {
		if amortization.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Loan not found", err)
		} else {
			h.Logger.Error("failed to load run", zap.String("run_id", string(id)), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to load loan", err)
		}
		return amortization.Run{}, false
	}
	return run, true
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the preset loans.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Scenarios())
}

// RunScenario amortizes a preset loan.
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sc, ok := ScenarioByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Scenario not found", nil)
		return
	}

	terms, err := h.LoanFactory.FromJSON(sc.Terms)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Invalid scenario terms", err)
		return
	}

	h.amortizeAndRespond(w, r, terms)
}

// =============================================================================
// HEALTH
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// AMORTIZATION
// =============================================================================

func (h *Handler) amortizeAndRespond(w http.ResponseWriter, r *http.Request, terms amortization.Terms) {
	ctx := r.Context()
	key := cache.Key(terms, h.MaxPeriods)

	if h.Cache != nil {
		if id, hit := h.Cache.Get(ctx, key); hit {
			run, err := h.Store.Load(ctx, amortization.RunID(id))
			if err == nil {
				h.Logger.Debug("amortization served from cache", zap.String("run_id", id))
				w.Header().Set("X-Cache", "hit")
				writeRun(w, h.LoanFactory, run, http.StatusOK)
				return
			}
			// Stale entry (store was reset); recompute.
			h.Logger.Debug("cached run missing", zap.String("run_id", id), zap.Error(err))
		}
	}

	loan := amortization.NewLoan(terms)
	amortizer := &amortization.Amortizer{
		MaxPeriods: h.MaxPeriods,
		Logger:     h.Logger,
	}
	amortizeCtx := ctx
	if h.AmortizeTimeout > 0 {
		var cancel context.CancelFunc
		amortizeCtx, cancel = context.WithTimeout(ctx, h.AmortizeTimeout)
		defer cancel()
	}
	_, err := amortizer.AmortizeContext(amortizeCtx, loan)

	var nonConvergent *amortization.NonConvergentError
	switch {
	case err == nil, errors.As(err, &nonConvergent):
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		h.Logger.Warn("amortization abandoned", zap.Int("periods", loan.Len()), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Amortization did not finish in time", err)
		return
	case amortization.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid loan terms", err)
		return
	default:
		h.Logger.Error("amortization failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Amortization failed", err)
		return
	}

	run := amortization.NewRun(h.newID(), loan, err, h.now())
	if err := h.Store.Save(ctx, run); err != nil {
		h.Logger.Error("failed to save run", zap.String("run_id", string(run.ID)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save loan", err)
		return
	}

	if h.Cache != nil {
		if err := h.Cache.Set(ctx, key, string(run.ID)); err != nil {
			h.Logger.Warn("failed to cache run", zap.String("run_id", string(run.ID)), zap.Error(err))
		}
	}

	writeRun(w, h.LoanFactory, run, http.StatusCreated)
}

// writeRun writes a run; non-convergent runs are reported as 422 whatever
// the success status would have been.
func writeRun(w http.ResponseWriter, f *factory.LoanFactory, run amortization.Run, status int) {
	dto := toLoanDTO(f, run)
	if run.Status == amortization.RunNonConvergent {
		dto.Error = amortization.ErrNonConvergent.Error()
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, dto)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
