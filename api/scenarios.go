/*
scenarios.go - Preset loans for demos and smoke tests

PURPOSE:
  Named loan terms that show the engine's characteristic behaviour:
  a standard payoff, an exact zero landing, month-end date drift and a
  payment that never catches up with interest.

USAGE:
  GET  /api/scenarios          List presets
  POST /api/scenarios/{id}     Amortize one and store the run
*/
package api

import "github.com/warp/amortization-engine/factory"

var scenarios = []ScenarioDTO{
	{
		ID:          "reference",
		Name:        "Reference loan",
		Description: "12997.61 at 5.04% paid 324.82 monthly from 2020-06-25. Pays off in 44 periods on 2024-02-25.",
		Terms: factory.TermsJSON{
			Principal:        "12997.61",
			InterestRate:     "0.0504",
			PaymentPeriod:    "Monthly",
			PaymentPerPeriod: "324.82",
			OriginationDate:  "2020-06-25",
		},
	},
	{
		ID:          "exact-payoff",
		Name:        "Exact payoff",
		Description: "Interest-free 1000 paid 250 monthly. The balance lands exactly on zero after 4 periods.",
		Terms: factory.TermsJSON{
			Principal:        "1000",
			InterestRate:     "0",
			PaymentPeriod:    "Monthly",
			PaymentPerPeriod: "250",
			OriginationDate:  "2021-03-15",
		},
	},
	{
		ID:          "month-end-drift",
		Name:        "Month-end drift",
		Description: "Originated on Jan 31. The first due date clamps to Feb 28 and every later payment stays on the 28th.",
		Terms: factory.TermsJSON{
			Principal:        "1000",
			InterestRate:     "0",
			PaymentPeriod:    "Monthly",
			PaymentPerPeriod: "250",
			OriginationDate:  "2021-01-31",
		},
	},
	{
		ID:          "non-convergent",
		Name:        "Non-convergent",
		Description: "10000 at 12% paid 50 monthly. Interest exceeds the payment so the balance grows until the period budget runs out.",
		Terms: factory.TermsJSON{
			Principal:        "10000",
			InterestRate:     "0.12",
			PaymentPeriod:    "Monthly",
			PaymentPerPeriod: "50",
			OriginationDate:  "2021-01-01",
		},
	},
}

// Scenarios returns the preset loans.
func Scenarios() []ScenarioDTO {
	out := make([]ScenarioDTO, len(scenarios))
	copy(out, scenarios)
	return out
}

// ScenarioByID looks up a preset.
func ScenarioByID(id string) (ScenarioDTO, bool) {
	for _, sc := range scenarios {
		if sc.ID == id {
			return sc, true
		}
	}
	return ScenarioDTO{}, false
}
