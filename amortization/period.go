package amortization

import (
	"fmt"
	"strings"
)

// =============================================================================
// PAYMENT PERIOD - How often a payment falls due
// =============================================================================

// PaymentPeriod is the billing cycle of a loan.
//
// Known limitation: every variant currently steps one calendar month. The
// value is stored and reported, and Next dispatches on it, but Biweekly,
// Quarterly and Biannually share the monthly stepping until they get their
// own increments.
type PaymentPeriod string

const (
	Biweekly   PaymentPeriod = "Biweekly"
	Monthly    PaymentPeriod = "Monthly"
	Quarterly  PaymentPeriod = "Quarterly"
	Biannually PaymentPeriod = "Biannually"
)

// PaymentPeriods lists every supported variant.
var PaymentPeriods = []PaymentPeriod{Biweekly, Monthly, Quarterly, Biannually}

// ParsePaymentPeriod accepts any casing of a variant name. Empty input
// yields Monthly.
func ParsePaymentPeriod(s string) (PaymentPeriod, error) {
	if strings.TrimSpace(s) == "" {
		return Monthly, nil
	}
	for _, p := range PaymentPeriods {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPaymentPeriod, s)
}

// Next returns the due date following d.
func (p PaymentPeriod) Next(d Date) Date {
	switch p {
	case Monthly:
		return AddMonthClamped(d)
	default:
		// Biweekly, Quarterly, Biannually: monthly until broadened.
		return AddMonthClamped(d)
	}
}

func (p PaymentPeriod) String() string { return string(p) }
