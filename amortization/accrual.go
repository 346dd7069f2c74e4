package amortization

import "github.com/shopspring/decimal"

// AccruedInterest is simple actual/365 interest on balance between from and
// to: balance * annualRate / 365 * days. Days are exact calendar days, so a
// level payment splits differently in a 28-day period than in a 31-day one.
func AccruedInterest(balance, annualRate decimal.Decimal, from, to Date) decimal.Decimal {
	days := decimal.NewFromInt(int64(DaysBetween(from, to)))
	return balance.Mul(annualRate).Div(daysPerYear).Mul(days)
}
