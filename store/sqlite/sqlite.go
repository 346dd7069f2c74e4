/*
Package sqlite provides a SQLite-backed implementation of amortization.Store.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE or DELETE statements on either table
  - A run and its periods are written in one transaction
  - Re-amortizing the same terms creates a new run

KEY TABLES:
  loan_runs:    One row per amortized loan (terms + status)
  loan_periods: One row per computed period, keyed by (run_id, number)

AMOUNTS:
  Decimals are stored as TEXT in their exact string form. REAL would round
  the unrounded engine values.

TIMESTAMPS:
  created_at is UTC text in a fixed-width layout (nanoseconds always
  present), so ORDER BY on the text is chronological.

SUMMARIES:
  loan_runs carries period_count and the interest/principal totals so List
  reads one row per run plus its final period, never the whole schedule.

WAL MODE:
  Opened with WAL (Write-Ahead Logging): readers don't block the writer.

USAGE:
  store, err := sqlite.New("./data/amortization.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - amortization/store.go: Interface definition
  - amortization/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/amortization-engine/amortization"
)

// createdAtLayout is RFC 3339 with a fixed nine-digit fraction.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements amortization.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS loan_runs (
		id TEXT PRIMARY KEY,
		principal TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		payment_period TEXT NOT NULL,
		payment_per_period TEXT NOT NULL,
		origination_date TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		period_count INTEGER NOT NULL,
		total_interest TEXT NOT NULL,
		total_principal TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_loan_runs_created_at
		ON loan_runs(created_at);

	CREATE TABLE IF NOT EXISTS loan_periods (
		run_id TEXT NOT NULL REFERENCES loan_runs(id),
		number INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		due_date TEXT NOT NULL,
		balance_before TEXT NOT NULL,
		interest_paid TEXT NOT NULL,
		principal_paid TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		PRIMARY KEY (run_id, number)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RUN STORE (amortization.Store interface)
// =============================================================================

// Save writes a run and its schedule atomically.
func (s *Store) Save(ctx context.Context, run amortization.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	summary := run.Summary()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO loan_runs
		(id, principal, interest_rate, payment_period, payment_per_period, origination_date, status, created_at,
		 period_count, total_interest, total_principal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		string(run.ID),
		run.Terms.Principal.String(),
		run.Terms.InterestRate.String(),
		string(run.Terms.PaymentPeriod),
		run.Terms.PaymentPerPeriod.String(),
		run.Terms.OriginationDate.String(),
		string(run.Status),
		run.CreatedAt.UTC().Format(createdAtLayout),
		summary.PeriodCount,
		summary.TotalInterest.String(),
		summary.TotalPrincipal.String(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return amortization.ErrDuplicateRun
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO loan_periods
		(run_id, number, start_date, due_date, balance_before, interest_paid, principal_paid, balance_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare period insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range run.Periods {
		_, err := stmt.ExecContext(ctx,
			string(run.ID),
			p.Number,
			p.Start.String(),
			p.Date.String(),
			p.BalanceBefore.String(),
			p.InterestPaid.String(),
			p.PrincipalPaid.String(),
			p.BalanceAfter.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert period %d: %w", p.Number, err)
		}
	}

	return tx.Commit()
}

// Load returns a run with its full schedule.
func (s *Store) Load(ctx context.Context, id amortization.RunID) (amortization.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, principal, interest_rate, payment_period, payment_per_period, origination_date, status, created_at
		FROM loan_runs
		WHERE id = ?
	`, string(id))

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return amortization.Run{}, amortization.ErrRunNotFound
	}
	if err != nil {
		return amortization.Run{}, err
	}

	run.Periods, err = s.loadPeriods(ctx, id)
	if err != nil {
		return amortization.Run{}, err
	}
	return run, nil
}

// List returns a summary of every run ordered by creation. Only the final
// period of each schedule is read.
func (s *Store) List(ctx context.Context) ([]amortization.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.principal, r.interest_rate, r.payment_period, r.payment_per_period,
		       r.origination_date, r.status, r.created_at,
		       r.period_count, r.total_interest, r.total_principal,
		       p.number, p.start_date, p.due_date, p.balance_before, p.interest_paid, p.principal_paid, p.balance_after
		FROM loan_runs r
		LEFT JOIN loan_periods p ON p.run_id = r.id AND p.number = r.period_count
		ORDER BY r.created_at ASC, r.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var summaries []amortization.RunSummary
	for rows.Next() {
		var (
			count           int
			interest, princ string
			number          sql.NullInt64
			final           [6]sql.NullString
		)
		run, err := scanRun(rows, &count, &interest, &princ,
			&number, &final[0], &final[1], &final[2], &final[3], &final[4], &final[5])
		if err != nil {
			return nil, err
		}

		summary := amortization.RunSummary{
			ID:          run.ID,
			Terms:       run.Terms,
			Status:      run.Status,
			CreatedAt:   run.CreatedAt,
			PeriodCount: count,
		}
		if summary.TotalInterest, err = amortization.ParseAmount(interest); err != nil {
			return nil, err
		}
		if summary.TotalPrincipal, err = amortization.ParseAmount(princ); err != nil {
			return nil, err
		}
		if number.Valid {
			cols := make([]string, len(final))
			for i, c := range final {
				cols[i] = c.String
			}
			if summary.Final, err = parsePeriod(int(number.Int64), cols...); err != nil {
				return nil, err
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func (s *Store) loadPeriods(ctx context.Context, id amortization.RunID) ([]amortization.Period, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, start_date, due_date, balance_before, interest_paid, principal_paid, balance_after
		FROM loan_periods
		WHERE run_id = ?
		ORDER BY number ASC
	`, string(id))
	if err != nil {
		return nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	var periods []amortization.Period
	for rows.Next() {
		var (
			number int
			cols   [6]string
		)
		if err := rows.Scan(&number, &cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5]); err != nil {
			return nil, fmt.Errorf("failed to scan period: %w", err)
		}
		p, err := parsePeriod(number, cols[:]...)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// parsePeriod builds a period from its TEXT columns in table order:
// start_date, due_date, balance_before, interest_paid, principal_paid, balance_after.
func parsePeriod(number int, cols ...string) (amortization.Period, error) {
	p := amortization.Period{Number: number}
	var err error
	if p.Start, err = amortization.ParseDate(cols[0]); err != nil {
		return p, err
	}
	if p.Date, err = amortization.ParseDate(cols[1]); err != nil {
		return p, err
	}
	amounts := []*decimal.Decimal{&p.BalanceBefore, &p.InterestPaid, &p.PrincipalPaid, &p.BalanceAfter}
	for i, dst := range amounts {
		if *dst, err = amortization.ParseAmount(cols[2+i]); err != nil {
			return p, err
		}
	}
	return p, nil
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

// scanRun reads the eight loan_runs term columns; extra receives any
// columns selected after them.
func scanRun(row scanner, extra ...any) (amortization.Run, error) {
	var (
		id, principal, rate, period, payment string
		origination, status, createdAt       string
	)
	dest := append([]any{&id, &principal, &rate, &period, &payment, &origination, &status, &createdAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return amortization.Run{}, err
		}
		return amortization.Run{}, fmt.Errorf("failed to scan run: %w", err)
	}

	var (
		run amortization.Run
		err error
	)
	run.ID = amortization.RunID(id)
	run.Status = amortization.RunStatus(status)
	run.Terms.PaymentPeriod = amortization.PaymentPeriod(period)
	if run.Terms.Principal, err = amortization.ParseAmount(principal); err != nil {
		return run, err
	}
	if run.Terms.InterestRate, err = amortization.ParseAmount(rate); err != nil {
		return run, err
	}
	if run.Terms.PaymentPerPeriod, err = amortization.ParseAmount(payment); err != nil {
		return run, err
	}
	if run.Terms.OriginationDate, err = amortization.ParseDate(origination); err != nil {
		return run, err
	}
	if run.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
		return run, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return run, nil
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
