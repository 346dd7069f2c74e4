package amortization

import "github.com/shopspring/decimal"

// =============================================================================
// LOAN - Terms plus the append-only schedule
// =============================================================================

// Loan owns one schedule. It is not safe for concurrent use; a loan has a
// single owner for its whole lifetime.
type Loan struct {
	Terms Terms

	periods []Period
	state   State
}

func NewLoan(t Terms) *Loan {
	return &Loan{Terms: t, state: InitialState(t)}
}

// Step computes and appends the next period. It returns false, appending
// nothing, when the current balance is negative.
func (l *Loan) Step() (Period, bool) {
	p, next, ok := Step(l.Terms, l.state)
	if !ok {
		return Period{}, false
	}
	l.periods = append(l.periods, p)
	l.state = next
	return p, true
}

// Balance is the latest balance: the principal before any payment.
func (l *Loan) Balance() decimal.Decimal { return l.state.Balance }

// NextDueDate is the date the next step accrues to.
func (l *Loan) NextDueDate() Date { return l.state.Due }

// IncrementDate returns NextDueDate advanced by one payment period without
// touching the schedule.
func (l *Loan) IncrementDate() Date { return l.Terms.PaymentPeriod.Next(l.state.Due) }

// Last returns the most recent period.
func (l *Loan) Last() (Period, bool) {
	if len(l.periods) == 0 {
		return Period{}, false
	}
	return l.periods[len(l.periods)-1], true
}

// Len is the number of computed periods.
func (l *Loan) Len() int { return len(l.periods) }

// Periods returns a copy of the schedule.
func (l *Loan) Periods() []Period {
	out := make([]Period, len(l.periods))
	copy(out, l.periods)
	return out
}

// =============================================================================
// SEQUENCE VIEWS
// =============================================================================
// Dates and Balances carry one leading entry (origination, principal) ahead
// of the per-period sequences:
//
//   len(Dates()) == len(Balances()) == len(InterestPaid())+1 == len(PrincipalPaid())+1

func (l *Loan) Dates() []Date {
	out := make([]Date, 0, len(l.periods)+1)
	out = append(out, l.Terms.OriginationDate)
	for _, p := range l.periods {
		out = append(out, p.Date)
	}
	return out
}

func (l *Loan) Balances() []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(l.periods)+1)
	out = append(out, l.Terms.Principal)
	for _, p := range l.periods {
		out = append(out, p.BalanceAfter)
	}
	return out
}

func (l *Loan) InterestPaid() []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(l.periods))
	for _, p := range l.periods {
		out = append(out, p.InterestPaid)
	}
	return out
}

func (l *Loan) PrincipalPaid() []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(l.periods))
	for _, p := range l.periods {
		out = append(out, p.PrincipalPaid)
	}
	return out
}

// Totals sums interest and principal over the schedule.
func (l *Loan) Totals() (interest, principal decimal.Decimal) {
	interest, principal = decimal.Zero, decimal.Zero
	for _, p := range l.periods {
		interest = interest.Add(p.InterestPaid)
		principal = principal.Add(p.PrincipalPaid)
	}
	return interest, principal
}
