/*
main.go - Command-line amortizer

PURPOSE:
  Amortizes one loan and prints the schedule: every period as it is
  computed, then the final period.

COMMAND-LINE FLAGS:
  -principal    Loan principal (default: 12997.61)
  -rate         Annual interest rate as a fraction (default: 0.0504)
  -period       Biweekly, Monthly, Quarterly or Biannually (default: Monthly)
  -payment      Fixed payment per period (default: 324.82)
  -date         Origination date YYYY-MM-DD (default: 2020-06-25)
  -config       JSON or YAML terms file; overrides the term flags
  -max-periods  Period budget, 0 for unbounded (default: 10000)
  -exact        Print amounts unrounded
  -log-level    debug, info, warn or error (default: warn)

EXIT CODES:
  0  Paid off
  1  Did not converge within -max-periods
  2  Invalid flags or terms

EXAMPLES:
  ./amortize
  ./amortize -principal=1000 -rate=0 -payment=250 -date=2021-01-31
  ./amortize -config=loan.yaml -max-periods=600
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/amortization-engine/amortization"
	"github.com/warp/amortization-engine/factory"
	"github.com/warp/amortization-engine/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("amortize", flag.ContinueOnError)
	fs.SetOutput(stderr)

	principal := fs.String("principal", "12997.61", "Loan principal")
	rate := fs.String("rate", "0.0504", "Annual interest rate as a fraction")
	period := fs.String("period", string(amortization.Monthly), "Payment period")
	payment := fs.String("payment", "324.82", "Fixed payment per period")
	date := fs.String("date", "2020-06-25", "Origination date (YYYY-MM-DD)")
	configPath := fs.String("config", "", "JSON or YAML terms file")
	maxPeriods := fs.Int("max-periods", amortization.DefaultMaxPeriods, "Period budget (0: unbounded)")
	exact := fs.Bool("exact", false, "Print amounts unrounded")
	logLevel := fs.String("log-level", "warn", "Log level")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger, err := logging.New(*logLevel, true)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	defer logger.Sync()

	f := factory.NewLoanFactory()
	var terms amortization.Terms
	if *configPath != "" {
		terms, err = f.ParseTermsFile(*configPath)
	} else {
		terms, err = f.FromJSON(factory.TermsJSON{
			Principal:        factory.Amount(*principal),
			InterestRate:     factory.Amount(*rate),
			PaymentPeriod:    *period,
			PaymentPerPeriod: factory.Amount(*payment),
			OriginationDate:  *date,
		})
	}
	if err != nil {
		fmt.Fprintf(stderr, "invalid terms: %v\n", err)
		return 2
	}

	format := func(d decimal.Decimal) string {
		if *exact {
			return d.String()
		}
		return d.StringFixed(2)
	}

	fmt.Fprintf(stdout, "%s\n\n", terms)

	loan := amortization.NewLoan(terms)
	amortizer := &amortization.Amortizer{
		MaxPeriods: *maxPeriods,
		Logger:     logger,
		OnPeriod: func(p amortization.Period) {
			printPeriod(stdout, p, format)
			fmt.Fprintln(stdout)
		},
	}

	final, err := amortizer.Amortize(loan)
	if err != nil {
		var nc *amortization.NonConvergentError
		if errors.As(err, &nc) {
			logger.Error("loan did not pay off", zap.Error(err))
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	interest, _ := loan.Totals()
	fmt.Fprintln(stdout, "Final payment")
	printPeriod(stdout, final, format)
	fmt.Fprintf(stdout, "Periods: %d\nTotal Interest: %s\n", loan.Len(), format(interest))
	return 0
}

func printPeriod(w io.Writer, p amortization.Period, format func(decimal.Decimal) string) {
	fmt.Fprintf(w, "Date: %s\nBalance: %s\nInterest Payment: %s\nPrincipal Payment: %s\n",
		p.Date, format(p.BalanceAfter), format(p.InterestPaid), format(p.PrincipalPaid))
}
