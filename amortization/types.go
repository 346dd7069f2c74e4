/*
Package amortization computes the schedule of a fixed-payment installment loan.

PURPOSE:
  Given a principal, an annual rate, a fixed payment and an origination date,
  the engine derives each payment's interest/principal split and the
  declining balance until the loan is paid off.

KEY CONCEPTS IN THIS FILE (types.go):
  - Terms: the fixed, immutable loan terms
  - Period: one computed payment (immutable once appended)
  - State: everything Step needs to compute the next Period

CALCULATION RULES:
  1. Interest accrues actual/365 on the balance between two due dates
  2. Due dates advance one calendar month, clamped to the month end
  3. Principal = payment - interest, with no floor
  4. The balance is clamped at zero, never negative

PRECISION:
  All amounts are decimal.Decimal and are never rounded by the engine.
  Rounding is a presentation concern (see api/dto.go).

USAGE:
  terms, err := amortization.NewTerms(
      amortization.MustParseDecimal("12997.61"),
      amortization.MustParseDecimal("0.0504"),
      amortization.Monthly,
      amortization.MustParseDecimal("324.82"),
      "2020-06-25",
  )
  loan := amortization.NewLoan(terms)
  final, err := (&amortization.Amortizer{MaxPeriods: 10000}).Amortize(loan)

SEE ALSO:
  - step.go: the pure period step
  - amortizer.go: the driver loop and iteration budget
  - loan.go: schedule accumulation and read views
*/
package amortization

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

var (
	daysPerYear = decimal.NewFromInt(365)
	hundred     = decimal.NewFromInt(100)
)

// ParseAmount parses a decimal amount such as "12997.61".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %q: %v", ErrInvalidAmount, s, err)
	}
	return d, nil
}

// MustParseDecimal panics on malformed input. Use for literals only.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// TERMS - The fixed loan terms
// =============================================================================

// Terms are fixed at construction. None of the amounts are range-checked:
// negative principals or rates are accepted and simply produce odd schedules.
type Terms struct {
	Principal        decimal.Decimal
	InterestRate     decimal.Decimal // annual, as a fraction (0.0504 = 5.04%)
	PaymentPeriod    PaymentPeriod
	PaymentPerPeriod decimal.Decimal
	OriginationDate  Date
}

// NewTerms builds Terms from an origination date string. An empty string
// means today. An empty payment period means Monthly.
func NewTerms(principal, interestRate decimal.Decimal, period PaymentPeriod, payment decimal.Decimal, originationDate string) (Terms, error) {
	origination := Today()
	if strings.TrimSpace(originationDate) != "" {
		d, err := ParseDate(originationDate)
		if err != nil {
			return Terms{}, fmt.Errorf("origination date: %w", err)
		}
		origination = d
	}
	if period == "" {
		period = Monthly
	}
	return Terms{
		Principal:        principal,
		InterestRate:     interestRate,
		PaymentPeriod:    period,
		PaymentPerPeriod: payment,
		OriginationDate:  origination,
	}, nil
}

// FirstDueDate is one payment period after origination.
func (t Terms) FirstDueDate() Date {
	return t.PaymentPeriod.Next(t.OriginationDate)
}

// String is the human-readable summary of the terms.
func (t Terms) String() string {
	return fmt.Sprintf("Principal: $%s\nInterest Rate: %s%%\nPayment Period: %s\nPayment per Period: $%s\nOrigination Date: %s",
		t.Principal, t.InterestRate.Mul(hundred), t.PaymentPeriod, t.PaymentPerPeriod, t.OriginationDate)
}

func (t Terms) GoString() string {
	return fmt.Sprintf("Loan(principal=%s, interest_rate=%s, payment_period=%s, payment_per_period=%s, origination_date=%s)",
		t.Principal, t.InterestRate, t.PaymentPeriod, t.PaymentPerPeriod, t.OriginationDate)
}

// =============================================================================
// PERIOD - One computed payment
// =============================================================================

// Period is one billing cycle, bounded by Start (previous scheduled date)
// and Date (this payment's due date).
type Period struct {
	Number        int
	Start         Date
	Date          Date
	BalanceBefore decimal.Decimal
	InterestPaid  decimal.Decimal
	PrincipalPaid decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// Days is the accrual window of the period.
func (p Period) Days() int { return DaysBetween(p.Start, p.Date) }

// State is the input of the next step: the running balance and the two
// dates bounding the period about to be computed.
type State struct {
	Number   int // number of the period about to be computed
	Balance  decimal.Decimal
	Previous Date
	Due      Date
}

// InitialState is the state before the first payment.
func InitialState(t Terms) State {
	return State{
		Number:   1,
		Balance:  t.Principal,
		Previous: t.OriginationDate,
		Due:      t.FirstDueDate(),
	}
}
