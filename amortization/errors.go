/*
errors.go - Error types for the amortization engine

ERROR CATEGORIES:
  1. Input errors - malformed dates, unknown payment periods, bad amounts
  2. Convergence - a budgeted run that never retires the debt
  3. Store errors - missing or duplicate runs

The engine never validates loan economics. A payment that cannot cover the
accruing interest is not an error on its own; it only surfaces as
ErrNonConvergent when the caller sets a period budget.
*/
package amortization

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a date is not a valid YYYY-MM-DD day.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidAmount is returned when a decimal amount cannot be parsed.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrUnknownPaymentPeriod is returned for a payment period outside the enum.
	ErrUnknownPaymentPeriod = errors.New("unknown payment period")

	// ErrNonConvergent is returned when the period budget runs out before the
	// balance reaches zero.
	ErrNonConvergent = errors.New("non-convergent schedule")

	// ErrNothingToAmortize is returned when the loan starts at a balance that
	// needs no payments, so there is no final period to report.
	ErrNothingToAmortize = errors.New("nothing to amortize")

	// ErrRunNotFound is returned when a stored run doesn't exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrDuplicateRun is returned when a run ID is saved twice.
	ErrDuplicateRun = errors.New("duplicate run")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DateError reports the input that failed to parse.
type DateError struct {
	Input string
	Err   error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", e.Input)
}

func (e *DateError) Unwrap() []error {
	return []error{ErrInvalidDate, e.Err}
}

// NonConvergentError describes where a budgeted run stopped.
type NonConvergentError struct {
	Periods int
	Balance decimal.Decimal
	Last    Date
}

func (e *NonConvergentError) Error() string {
	return fmt.Sprintf("non-convergent schedule: balance %s after %d periods (last due %s)",
		e.Balance.StringFixed(2), e.Periods, e.Last)
}

func (e *NonConvergentError) Unwrap() error {
	return ErrNonConvergent
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrUnknownPaymentPeriod) ||
		errors.Is(err, ErrNothingToAmortize)
}

// IsNotFound returns true if the error indicates a missing run.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}
