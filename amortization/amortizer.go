package amortization

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxPeriods is the budget the CLI and API apply when none is given:
// well past any real loan term, at any payment period.
const DefaultMaxPeriods = 10000

// =============================================================================
// AMORTIZER - Drives Step until the debt is retired
// =============================================================================

// Amortizer repeats Loan.Step while the latest balance is > 0.
//
// With MaxPeriods == 0 the loop is unbounded: a payment that never covers
// the accruing interest runs forever. MaxPeriods > 0 is a safety budget on
// top of that contract; when it runs out Amortize returns a
// *NonConvergentError and leaves the partial schedule on the loan.
//
// MaxPeriods bounds the number of steps, not their cost: a balance that
// grows by orders of magnitude each period makes every step slower. Callers
// serving untrusted terms use AmortizeContext with a deadline as well.
type Amortizer struct {
	MaxPeriods int
	Logger     *zap.Logger

	// OnPeriod, when set, observes every appended period.
	OnPeriod func(Period)
}

// Amortize drives loan to completion and returns its final period.
// ErrNothingToAmortize is returned when no period was ever computed.
func (a *Amortizer) Amortize(loan *Loan) (Period, error) {
	return a.AmortizeContext(context.Background(), loan)
}

// AmortizeContext is Amortize, checking ctx before every step. When ctx is
// done it returns the last computed period and an error wrapping ctx.Err();
// the partial schedule stays on the loan.
func (a *Amortizer) AmortizeContext(ctx context.Context, loan *Loan) (Period, error) {
	logger := a.logger()

	for steps := 0; loan.Balance().IsPositive(); steps++ {
		if err := ctx.Err(); err != nil {
			last, _ := loan.Last()
			logger.Warn("amortization interrupted",
				zap.Int("periods", loan.Len()),
				zap.Error(err))
			return last, fmt.Errorf("amortization stopped after %d periods: %w", loan.Len(), err)
		}
		if a.MaxPeriods > 0 && steps >= a.MaxPeriods {
			last, _ := loan.Last()
			err := &NonConvergentError{Periods: loan.Len(), Balance: loan.Balance(), Last: last.Date}
			logger.Warn("amortization did not converge",
				zap.Int("periods", loan.Len()),
				zap.String("balance", loan.Balance().String()),
				zap.String("payment", loan.Terms.PaymentPerPeriod.String()))
			return last, err
		}

		p, ok := loan.Step()
		if !ok {
			break
		}
		logger.Debug("period computed",
			zap.Int("period", p.Number),
			zap.Stringer("date", p.Date),
			zap.String("balance", p.BalanceAfter.String()),
			zap.String("interest", p.InterestPaid.String()),
			zap.String("principal", p.PrincipalPaid.String()))
		if a.OnPeriod != nil {
			a.OnPeriod(p)
		}
	}

	last, ok := loan.Last()
	if !ok {
		return Period{}, ErrNothingToAmortize
	}
	interest, _ := loan.Totals()
	logger.Info("loan amortized",
		zap.Int("periods", loan.Len()),
		zap.Stringer("payoff_date", last.Date),
		zap.String("total_interest", interest.String()))
	return last, nil
}

func (a *Amortizer) logger() *zap.Logger {
	if a == nil || a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// Amortize drives loan with no budget and no logging, matching the plain
// contract: it returns only once the balance is <= 0.
func Amortize(loan *Loan) (Period, error) {
	return (&Amortizer{}).Amortize(loan)
}
