/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Decouples the engine's types from the JSON contract. The engine never
  rounds; DTOs render amounts to cents.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients (loan terms reuse factory.TermsJSON)

SEE ALSO:
  - handlers.go: Uses these types
  - factory/loan.go: TermsJSON type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/amortization-engine/amortization"
	"github.com/warp/amortization-engine/factory"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// PeriodDTO is one row of the schedule.
type PeriodDTO struct {
	Number        int    `json:"number"`
	Start         string `json:"start"`
	Date          string `json:"date"`
	Days          int    `json:"days"`
	BalanceBefore string `json:"balance_before"`
	InterestPaid  string `json:"interest_paid"`
	PrincipalPaid string `json:"principal_paid"`
	BalanceAfter  string `json:"balance_after"`
}

// LoanDTO is a stored run with its full schedule.
type LoanDTO struct {
	ID             string            `json:"id"`
	Status         string            `json:"status"`
	Terms          factory.TermsJSON `json:"terms"`
	Summary        string            `json:"summary"`
	PeriodCount    int               `json:"period_count"`
	PayoffDate     string            `json:"payoff_date,omitempty"`
	TotalInterest  string            `json:"total_interest"`
	TotalPrincipal string            `json:"total_principal"`
	Final          *PeriodDTO        `json:"final,omitempty"`
	Periods        []PeriodDTO       `json:"periods,omitempty"`
	Error          string            `json:"error,omitempty"`
	CreatedAt      string            `json:"created_at"`
}

// ScenarioDTO is a preset loan.
type ScenarioDTO struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Terms       factory.TermsJSON `json:"terms"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func toPeriodDTO(p amortization.Period) PeriodDTO {
	return PeriodDTO{
		Number:        p.Number,
		Start:         p.Start.String(),
		Date:          p.Date.String(),
		Days:          p.Days(),
		BalanceBefore: money(p.BalanceBefore),
		InterestPaid:  money(p.InterestPaid),
		PrincipalPaid: money(p.PrincipalPaid),
		BalanceAfter:  money(p.BalanceAfter),
	}
}

// toSummaryDTO renders a run without its schedule, as listings show it.
func toSummaryDTO(f *factory.LoanFactory, sum amortization.RunSummary) LoanDTO {
	dto := LoanDTO{
		ID:             string(sum.ID),
		Status:         string(sum.Status),
		Terms:          f.ToJSON(sum.Terms),
		Summary:        sum.Terms.String(),
		PeriodCount:    sum.PeriodCount,
		TotalInterest:  money(sum.TotalInterest),
		TotalPrincipal: money(sum.TotalPrincipal),
		CreatedAt:      sum.CreatedAt.Format(time.RFC3339),
	}
	if sum.PeriodCount > 0 {
		fp := toPeriodDTO(sum.Final)
		dto.Final = &fp
		if sum.Status == amortization.RunPaidOff {
			dto.PayoffDate = fp.Date
		}
	}
	return dto
}

// toLoanDTO renders a run with its full schedule.
func toLoanDTO(f *factory.LoanFactory, run amortization.Run) LoanDTO {
	dto := toSummaryDTO(f, run.Summary())
	dto.Periods = make([]PeriodDTO, 0, len(run.Periods))
	for _, p := range run.Periods {
		dto.Periods = append(dto.Periods, toPeriodDTO(p))
	}
	return dto
}
