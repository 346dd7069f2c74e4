package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/amortization-engine/amortization"
	"github.com/warp/amortization-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func referenceRun(t *testing.T, id string, createdAt time.Time) amortization.Run {
	t.Helper()
	terms, err := amortization.NewTerms(
		amortization.MustParseDecimal("12997.61"),
		amortization.MustParseDecimal("0.0504"),
		amortization.Monthly,
		amortization.MustParseDecimal("324.82"),
		"2020-06-25",
	)
	require.NoError(t, err)
	loan := amortization.NewLoan(terms)
	_, err = amortization.Amortize(loan)
	require.NoError(t, err)
	return amortization.NewRun(amortization.RunID(id), loan, nil, createdAt)
}

func assertSameRun(t *testing.T, want, got amortization.Run) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Status, got.Status)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, want.Terms.Principal.Equal(got.Terms.Principal))
	assert.True(t, want.Terms.InterestRate.Equal(got.Terms.InterestRate))
	assert.True(t, want.Terms.PaymentPerPeriod.Equal(got.Terms.PaymentPerPeriod))
	assert.Equal(t, want.Terms.PaymentPeriod, got.Terms.PaymentPeriod)
	assert.Equal(t, want.Terms.OriginationDate, got.Terms.OriginationDate)

	require.Len(t, got.Periods, len(want.Periods))
	for i := range want.Periods {
		w, g := want.Periods[i], got.Periods[i]
		assert.Equal(t, w.Number, g.Number)
		assert.Equal(t, w.Start, g.Start)
		assert.Equal(t, w.Date, g.Date)
		assert.True(t, w.BalanceBefore.Equal(g.BalanceBefore), "period %d balance before", w.Number)
		assert.True(t, w.InterestPaid.Equal(g.InterestPaid), "period %d interest", w.Number)
		assert.True(t, w.PrincipalPaid.Equal(g.PrincipalPaid), "period %d principal", w.Number)
		assert.True(t, w.BalanceAfter.Equal(g.BalanceAfter), "period %d balance after", w.Number)
	}
}

// =============================================================================
// RUN STORE
// =============================================================================

func TestStore_SaveAndLoad_ExactDecimals(t *testing.T) {
	// GIVEN: A fully amortized reference loan with unrounded decimals
	// WHEN: Round-tripping through SQLite
	// THEN: Every amount comes back exactly, not rounded through REAL
	ctx := context.Background()
	store := newTestStore(t)
	run := referenceRun(t, "run-1", time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC))

	require.NoError(t, store.Save(ctx, run))

	got, err := store.Load(ctx, "run-1")
	require.NoError(t, err)
	assertSameRun(t, run, got)
	assert.Len(t, got.Periods, 44)
}

func TestStore_DuplicateRunRejected(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	run := referenceRun(t, "run-1", time.Now())

	require.NoError(t, store.Save(ctx, run))
	assert.ErrorIs(t, store.Save(ctx, run), amortization.ErrDuplicateRun)

	// The failed save left nothing behind
	got, err := store.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, got.Periods, 44)
}

func TestStore_LoadMissing(t *testing.T) {
	_, err := newTestStore(t).Load(context.Background(), "missing")
	assert.ErrorIs(t, err, amortization.ErrRunNotFound)
}

func TestStore_ListOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, referenceRun(t, "second", base.Add(time.Minute))))
	require.NoError(t, store.Save(ctx, referenceRun(t, "first", base)))

	runs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, amortization.RunID("first"), runs[0].ID)
	assert.Equal(t, amortization.RunID("second"), runs[1].ID)
}

func TestStore_ListOrdersSubSecondTimes(t *testing.T) {
	// GIVEN: A run half a second after midnight saved before one at midnight
	ctx := context.Background()
	store := newTestStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, referenceRun(t, "a-later", base.Add(500*time.Millisecond))))
	require.NoError(t, store.Save(ctx, referenceRun(t, "b-earlier", base)))

	// THEN: List follows the timestamps, not the save order or the IDs
	runs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, amortization.RunID("b-earlier"), runs[0].ID)
	assert.Equal(t, amortization.RunID("a-later"), runs[1].ID)
	assert.True(t, runs[1].CreatedAt.Equal(base.Add(500*time.Millisecond)))
}

func TestStore_ListSummarizesWithoutSchedules(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	run := referenceRun(t, "run-1", time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, run))

	runs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	want := run.Summary()
	got := runs[0]
	assert.Equal(t, 44, got.PeriodCount)
	assert.Equal(t, want.Final.Number, got.Final.Number)
	assert.Equal(t, "2024-02-25", got.Final.Date.String())
	assert.True(t, want.Final.InterestPaid.Equal(got.Final.InterestPaid))
	assert.True(t, got.Final.BalanceAfter.IsZero())
	assert.True(t, want.TotalInterest.Equal(got.TotalInterest))
	assert.True(t, want.TotalPrincipal.Equal(got.TotalPrincipal))
	assert.True(t, want.Terms.Principal.Equal(got.Terms.Principal))
}

func TestStore_NonConvergentRunKeepsPartialSchedule(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	terms, err := amortization.NewTerms(
		amortization.MustParseDecimal("10000"),
		amortization.MustParseDecimal("0.12"),
		amortization.Biannually,
		amortization.MustParseDecimal("50"),
		"2021-01-31",
	)
	require.NoError(t, err)
	loan := amortization.NewLoan(terms)
	_, amortizeErr := (&amortization.Amortizer{MaxPeriods: 24}).Amortize(loan)
	require.ErrorIs(t, amortizeErr, amortization.ErrNonConvergent)

	run := amortization.NewRun("stuck", loan, amortizeErr, time.Now())
	require.NoError(t, store.Save(ctx, run))

	got, err := store.Load(ctx, "stuck")
	require.NoError(t, err)
	assert.Equal(t, amortization.RunNonConvergent, got.Status)
	assert.Equal(t, amortization.Biannually, got.Terms.PaymentPeriod)
	assertSameRun(t, run, got)
}
