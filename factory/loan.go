/*
Package factory converts loan term documents into amortization.Terms.

PURPOSE:
  Loan terms arrive as JSON (HTTP API) or as JSON/YAML files (CLI -config).
  The factory decodes them, applies defaults and builds the Terms the engine
  consumes.

SCHEMA (JSON):
  {
    "principal": "12997.61",
    "interest_rate": "0.0504",
    "payment_period": "monthly",
    "payment_per_period": 324.82,
    "origination_date": "2020-06-25"
  }

SCHEMA (YAML):
  principal: 12997.61
  interest_rate: 0.0504
  payment_period: monthly
  payment_per_period: 324.82
  origination_date: "2020-06-25"

KEY FEATURES:
  - Amounts may be numbers or strings; they are parsed as exact decimals,
    never through float64
  - Missing payment_period defaults to Monthly
  - Missing origination_date defaults to today
  - No economic validation: a payment below the accruing interest is
    accepted here and only surfaces when amortizing with a budget
  - Size limits: amounts up to MaxAmount, rates up to MaxRate, at most
    MaxFractionDigits decimal places. These bound the arithmetic one
    document can cause; they say nothing about whether the loan is sensible

SEE ALSO:
  - amortization/types.go: Terms
  - api/handlers.go: Uses ParseTerms for request bodies
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/amortization-engine/amortization"
)

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// Amount is a decimal literal written either as a number or a string.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "null" {
		*a = ""
		return nil
	}
	*a = Amount(strings.Trim(s, `"`))
	return nil
}

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	*a = Amount(node.Value)
	return nil
}

// TermsJSON is the document form of amortization.Terms.
type TermsJSON struct {
	Principal        Amount `json:"principal" yaml:"principal"`
	InterestRate     Amount `json:"interest_rate" yaml:"interest_rate"`
	PaymentPeriod    string `json:"payment_period,omitempty" yaml:"payment_period,omitempty"`
	PaymentPerPeriod Amount `json:"payment_per_period" yaml:"payment_per_period"`
	OriginationDate  string `json:"origination_date,omitempty" yaml:"origination_date,omitempty"`
}

// =============================================================================
// SIZE LIMITS
// =============================================================================

var (
	// MaxAmount bounds the magnitude of principal and payment.
	MaxAmount = decimal.New(1, 15)

	// MaxRate bounds the magnitude of the annual rate (10 = 1000%).
	MaxRate = decimal.NewFromInt(10)
)

// MaxFractionDigits bounds the decimal places of any amount or rate.
const MaxFractionDigits = 10

// checkSize rejects d when it exceeds max or carries too many places. The
// exponent checks come first, and d is only formatted once its digits are
// bounded, since both rescaling and String expand a huge exponent.
func checkSize(d, max decimal.Decimal) error {
	if d.Exponent() < -MaxFractionDigits {
		return fmt.Errorf("%w: more than %d decimal places", amortization.ErrInvalidAmount, MaxFractionDigits)
	}
	maxDigits := max.NumDigits() + int(max.Exponent())
	if d.NumDigits()+int(d.Exponent()) > maxDigits {
		return fmt.Errorf("%w: exceeds %s", amortization.ErrInvalidAmount, max)
	}
	if d.Abs().GreaterThan(max) {
		return fmt.Errorf("%w: %s exceeds %s", amortization.ErrInvalidAmount, d, max)
	}
	return nil
}

// =============================================================================
// LOAN FACTORY
// =============================================================================

// LoanFactory converts term documents to amortization.Terms.
type LoanFactory struct{}

// NewLoanFactory creates a new loan factory.
func NewLoanFactory() *LoanFactory {
	return &LoanFactory{}
}

// ParseTerms parses a JSON document into Terms.
func (f *LoanFactory) ParseTerms(data []byte) (amortization.Terms, error) {
	var tj TermsJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&tj); err != nil {
		return amortization.Terms{}, fmt.Errorf("failed to parse terms JSON: %w", err)
	}
	return f.FromJSON(tj)
}

// ParseTermsYAML parses a YAML document into Terms.
func (f *LoanFactory) ParseTermsYAML(data []byte) (amortization.Terms, error) {
	var tj TermsJSON
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tj); err != nil {
		return amortization.Terms{}, fmt.Errorf("failed to parse terms YAML: %w", err)
	}
	return f.FromJSON(tj)
}

// ParseTermsFile reads a .json, .yaml or .yml terms file.
func (f *LoanFactory) ParseTermsFile(path string) (amortization.Terms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return amortization.Terms{}, fmt.Errorf("failed to read terms file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return f.ParseTermsYAML(data)
	default:
		return f.ParseTerms(data)
	}
}

// FromJSON converts a TermsJSON to amortization.Terms.
func (f *LoanFactory) FromJSON(tj TermsJSON) (amortization.Terms, error) {
	principal, err := parseBounded(tj.Principal, MaxAmount)
	if err != nil {
		return amortization.Terms{}, fmt.Errorf("principal: %w", err)
	}
	rate, err := parseBounded(tj.InterestRate, MaxRate)
	if err != nil {
		return amortization.Terms{}, fmt.Errorf("interest_rate: %w", err)
	}
	payment, err := parseBounded(tj.PaymentPerPeriod, MaxAmount)
	if err != nil {
		return amortization.Terms{}, fmt.Errorf("payment_per_period: %w", err)
	}
	period, err := amortization.ParsePaymentPeriod(tj.PaymentPeriod)
	if err != nil {
		return amortization.Terms{}, err
	}

	return amortization.NewTerms(principal, rate, period, payment, tj.OriginationDate)
}

func parseBounded(a Amount, max decimal.Decimal) (decimal.Decimal, error) {
	d, err := amortization.ParseAmount(string(a))
	if err != nil {
		return decimal.Zero, err
	}
	return d, checkSize(d, max)
}

// ToJSON converts Terms to their document form.
func (f *LoanFactory) ToJSON(t amortization.Terms) TermsJSON {
	return TermsJSON{
		Principal:        Amount(t.Principal.String()),
		InterestRate:     Amount(t.InterestRate.String()),
		PaymentPeriod:    t.PaymentPeriod.String(),
		PaymentPerPeriod: Amount(t.PaymentPerPeriod.String()),
		OriginationDate:  t.OriginationDate.String(),
	}
}
