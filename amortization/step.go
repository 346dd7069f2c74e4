package amortization

import "github.com/shopspring/decimal"

// Step computes the period described by s and the state that follows it.
// It is pure: the caller owns accumulation.
//
// A negative balance is a no-op (ok == false). The gate is strictly < 0, so
// a balance of exactly zero still produces a period: zero interest, the full
// payment booked as principal, and the balance clamped back to zero. The
// Amortizer never reaches that case because its loop stops at <= 0; it is
// only observable when stepping a settled loan directly.
func Step(t Terms, s State) (p Period, next State, ok bool) {
	if s.Balance.IsNegative() {
		return Period{}, s, false
	}

	interest := AccruedInterest(s.Balance, t.InterestRate, s.Previous, s.Due)
	principal := t.PaymentPerPeriod.Sub(interest)

	after := s.Balance.Sub(principal)
	if after.IsNegative() {
		after = decimal.Zero
	}

	p = Period{
		Number:        s.Number,
		Start:         s.Previous,
		Date:          s.Due,
		BalanceBefore: s.Balance,
		InterestPaid:  interest,
		PrincipalPaid: principal,
		BalanceAfter:  after,
	}
	next = State{
		Number:   s.Number + 1,
		Balance:  after,
		Previous: s.Due,
		Due:      t.PaymentPeriod.Next(s.Due),
	}
	return p, next, true
}
