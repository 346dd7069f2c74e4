/*
store.go - Persistence interface for amortization runs

PURPOSE:
  The engine itself keeps nothing; a Loan is discarded after use. Services
  that want to serve a schedule again (the HTTP API) record each computed
  schedule as a Run through this interface.

APPEND-ONLY CONTRACT:
  - Save(): the only write. A run ID can be written once.
  - NO Update() or Delete() methods exist. Re-amortizing creates a new run.

IMPLEMENTATIONS:
  - amortization/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go: SQLite
*/
package amortization

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RunID identifies a stored run.
type RunID string

// RunStatus is how a run ended.
type RunStatus string

const (
	RunPaidOff       RunStatus = "paid_off"
	RunNonConvergent RunStatus = "non_convergent"
)

// Run is one amortized loan: its terms, the schedule and how it ended.
type Run struct {
	ID        RunID
	Terms     Terms
	Periods   []Period
	Status    RunStatus
	CreatedAt time.Time
}

// NewRun snapshots loan into a run. err is the result of Amortize.
func NewRun(id RunID, loan *Loan, err error, createdAt time.Time) Run {
	status := RunPaidOff
	if err != nil {
		status = RunNonConvergent
	}
	return Run{
		ID:        id,
		Terms:     loan.Terms,
		Periods:   loan.Periods(),
		Status:    status,
		CreatedAt: createdAt.UTC(),
	}
}

// Final returns the last period of the run.
func (r Run) Final() (Period, bool) {
	if len(r.Periods) == 0 {
		return Period{}, false
	}
	return r.Periods[len(r.Periods)-1], true
}

// RunSummary is a run without its schedule, as listings show it.
type RunSummary struct {
	ID             RunID
	Terms          Terms
	Status         RunStatus
	CreatedAt      time.Time
	PeriodCount    int
	Final          Period // zero value when PeriodCount is 0
	TotalInterest  decimal.Decimal
	TotalPrincipal decimal.Decimal
}

// Summary drops the schedule, keeping its count, final period and totals.
func (r Run) Summary() RunSummary {
	interest, principal := decimal.Zero, decimal.Zero
	for _, p := range r.Periods {
		interest = interest.Add(p.InterestPaid)
		principal = principal.Add(p.PrincipalPaid)
	}
	final, _ := r.Final()
	return RunSummary{
		ID:             r.ID,
		Terms:          r.Terms,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
		PeriodCount:    len(r.Periods),
		Final:          final,
		TotalInterest:  interest,
		TotalPrincipal: principal,
	}
}

// Store persists runs. APPEND-ONLY.
type Store interface {
	// Save persists a run. Returns ErrDuplicateRun if the ID exists.
	Save(ctx context.Context, run Run) error

	// Load returns one run with its full schedule, or ErrRunNotFound.
	Load(ctx context.Context, id RunID) (Run, error)

	// List returns a summary of every run ordered by CreatedAt. Schedules
	// are not loaded.
	List(ctx context.Context) ([]RunSummary, error)
}
