package factory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/amortization-engine/amortization"
	"github.com/warp/amortization-engine/factory"
)

func TestParseTerms_NumbersAndStrings(t *testing.T) {
	f := factory.NewLoanFactory()

	terms, err := f.ParseTerms([]byte(`{
		"principal": "12997.61",
		"interest_rate": 0.0504,
		"payment_period": "monthly",
		"payment_per_period": 324.82,
		"origination_date": "2020-06-25"
	}`))
	require.NoError(t, err)

	assert.True(t, terms.Principal.Equal(amortization.MustParseDecimal("12997.61")))
	assert.True(t, terms.InterestRate.Equal(amortization.MustParseDecimal("0.0504")))
	assert.True(t, terms.PaymentPerPeriod.Equal(amortization.MustParseDecimal("324.82")))
	assert.Equal(t, amortization.Monthly, terms.PaymentPeriod)
	assert.Equal(t, "2020-06-25", terms.OriginationDate.String())
}

func TestParseTerms_Defaults(t *testing.T) {
	terms, err := factory.NewLoanFactory().ParseTerms([]byte(`{"principal": 1000, "interest_rate": 0, "payment_per_period": 100}`))
	require.NoError(t, err)

	assert.Equal(t, amortization.Monthly, terms.PaymentPeriod)
	assert.Equal(t, amortization.Today(), terms.OriginationDate)
}

func TestParseTerms_Errors(t *testing.T) {
	f := factory.NewLoanFactory()

	tests := []struct {
		name   string
		doc    string
		target error
	}{
		{"bad date", `{"principal": 1, "interest_rate": 0, "payment_per_period": 1, "origination_date": "06/25/2020"}`, amortization.ErrInvalidDate},
		{"bad period", `{"principal": 1, "interest_rate": 0, "payment_per_period": 1, "payment_period": "weekly"}`, amortization.ErrUnknownPaymentPeriod},
		{"missing principal", `{"interest_rate": 0, "payment_per_period": 1}`, amortization.ErrInvalidAmount},
		{"bad payment", `{"principal": 1, "interest_rate": 0, "payment_per_period": "lots"}`, amortization.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseTerms([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, amortization.IsClientError(err))
		})
	}

	_, err := f.ParseTerms([]byte(`{"principal": 1, "rate": 0.05}`))
	assert.Error(t, err, "unknown fields are rejected")

	_, err = f.ParseTerms([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseTermsYAML(t *testing.T) {
	terms, err := factory.NewLoanFactory().ParseTermsYAML([]byte(`
principal: 12997.61
interest_rate: 0.0504
payment_period: Biweekly
payment_per_period: "324.82"
origination_date: "2020-06-25"
`))
	require.NoError(t, err)

	assert.True(t, terms.Principal.Equal(amortization.MustParseDecimal("12997.61")))
	assert.Equal(t, amortization.Biweekly, terms.PaymentPeriod)
	assert.Equal(t, "2020-06-25", terms.OriginationDate.String())

	_, err = factory.NewLoanFactory().ParseTermsYAML([]byte("principal: [1, 2]\n"))
	assert.Error(t, err)
}

func TestParseTermsFile(t *testing.T) {
	dir := t.TempDir()
	f := factory.NewLoanFactory()

	yamlPath := filepath.Join(dir, "loan.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("principal: 1000\ninterest_rate: 0\npayment_per_period: 250\norigination_date: \"2021-03-15\"\n"), 0o600))
	jsonPath := filepath.Join(dir, "loan.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"principal": 1000, "interest_rate": 0, "payment_per_period": 250, "origination_date": "2021-03-15"}`), 0o600))

	fromYAML, err := f.ParseTermsFile(yamlPath)
	require.NoError(t, err)
	fromJSON, err := f.ParseTermsFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, f.ToJSON(fromYAML), f.ToJSON(fromJSON))

	_, err = f.ParseTermsFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := factory.NewLoanFactory()
	terms, err := amortization.NewTerms(
		amortization.MustParseDecimal("12997.61"),
		amortization.MustParseDecimal("0.0504"),
		amortization.Quarterly,
		amortization.MustParseDecimal("324.82"),
		"2020-06-25",
	)
	require.NoError(t, err)

	back, err := f.FromJSON(f.ToJSON(terms))
	require.NoError(t, err)
	assert.Equal(t, terms.String(), back.String())
}

func TestFromJSON_SizeLimits(t *testing.T) {
	f := factory.NewLoanFactory()
	base := factory.TermsJSON{
		Principal:        "12997.61",
		InterestRate:     "0.0504",
		PaymentPerPeriod: "324.82",
		OriginationDate:  "2020-06-25",
	}

	tests := []struct {
		name   string
		modify func(*factory.TermsJSON)
	}{
		{"huge rate", func(tj *factory.TermsJSON) { tj.InterestRate = "1e20" }},
		{"rate over limit", func(tj *factory.TermsJSON) { tj.InterestRate = "10.5" }},
		{"huge exponent principal", func(tj *factory.TermsJSON) { tj.Principal = "1e999999999" }},
		{"principal over limit", func(tj *factory.TermsJSON) { tj.Principal = "1000000000000001" }},
		{"negative payment over limit", func(tj *factory.TermsJSON) { tj.PaymentPerPeriod = "-2e15" }},
		{"too many places", func(tj *factory.TermsJSON) { tj.PaymentPerPeriod = "324.82000000001" }},
		{"tiny exponent", func(tj *factory.TermsJSON) { tj.Principal = "1e-999999999" }},
		{"zero with huge exponent", func(tj *factory.TermsJSON) { tj.InterestRate = "0e999999999" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tj := base
			tt.modify(&tj)
			_, err := f.FromJSON(tj)
			assert.ErrorIs(t, err, amortization.ErrInvalidAmount)
			assert.True(t, amortization.IsClientError(err))
		})
	}

	// The limits themselves are accepted
	edge := base
	edge.Principal = "1000000000000000"
	edge.InterestRate = "10"
	edge.PaymentPerPeriod = "0.0000000001"
	_, err := f.FromJSON(edge)
	assert.NoError(t, err)
}
