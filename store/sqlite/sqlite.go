/*
Package sqlite persists reconciliation runs and their normalized records.

PURPOSE:
  Every execution of the reconciliation pipeline produces a run: the
  normalized batch plus metadata about where it came from. This package
  stores runs in SQLite so reports can be served later without re-parsing
  carrier statements.

APPEND-ONLY DISCIPLINE:
  Runs are never updated or deleted. Re-reconciling a period creates a new
  run; report queries pick the latest run for a period. This keeps the full
  history of what was reconciled when, and means a bad import can never
  silently overwrite a good one.

KEY TABLES:
  runs:    One row per reconciliation run (uuid id, period, counts, total)
  records: The normalized canonical records of a run, in batch order

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block and crash recovery is cleaner.

USAGE:
  store, err := sqlite.New("./commissions.db")
  defer store.Close()
  err = store.SaveRun(ctx, run, batch.Records)

SEE ALSO:
  - canonical/: The record shape persisted here
  - api/: Serves reports from this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/canonical"
)

// Run is the metadata for one reconciliation run.
type Run struct {
	ID              string          `json:"id"`
	Period          string          `json:"period"`
	SourceCount     int             `json:"source_count"`
	RecordCount     int             `json:"record_count"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	AnomalyCount    int             `json:"anomaly_count"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Store persists runs and records in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) a SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

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

func (s *Store) migrate() error {
	schema := `
	-- Reconciliation runs (append-only; reruns create new runs)
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		period TEXT NOT NULL,
		source_count INTEGER NOT NULL,
		record_count INTEGER NOT NULL,
		total_commission TEXT NOT NULL,
		anomaly_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_period_created
		ON runs(period, created_at DESC);

	-- Normalized canonical records, in batch order (seq)
	CREATE TABLE IF NOT EXISTS records (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		carrier_name TEXT NOT NULL,
		commission_period TEXT NOT NULL,
		agent_name TEXT NOT NULL,
		agency_name TEXT NOT NULL DEFAULT '',
		member_id TEXT NOT NULL DEFAULT '',
		member_name TEXT NOT NULL DEFAULT '',
		plan_name TEXT NOT NULL DEFAULT '',
		enrollment_date TEXT,
		disenrollment_date TEXT,
		commission_amount TEXT NOT NULL,
		transaction_type TEXT NOT NULL DEFAULT '',
		policy_number TEXT NOT NULL DEFAULT '',
		effective_date TEXT,
		processed_date TEXT,
		PRIMARY KEY (run_id, seq)
	);

	-- Period reporting (hot path)
	CREATE INDEX IF NOT EXISTS idx_records_period
		ON records(commission_period);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WRITES
// =============================================================================

// SaveRun persists a run and its records atomically. Either the run and
// every record land, or nothing does.
func (s *Store) SaveRun(ctx context.Context, run Run, records []canonical.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, period, source_count, record_count, total_commission, anomaly_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Period,
		run.SourceCount,
		run.RecordCount,
		run.TotalCommission.String(),
		run.AnomalyCount,
		run.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records
		(run_id, seq, carrier_name, commission_period, agent_name, agency_name,
		 member_id, member_name, plan_name, enrollment_date, disenrollment_date,
		 commission_amount, transaction_type, policy_number, effective_date, processed_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for seq, rec := range records {
		_, err = stmt.ExecContext(ctx,
			run.ID,
			seq,
			rec.CarrierName,
			rec.CommissionPeriod,
			rec.AgentName,
			rec.AgencyName,
			rec.MemberID,
			rec.MemberName,
			rec.PlanName,
			nullDate(rec.EnrollmentDate),
			nullDate(rec.DisenrollmentDate),
			rec.CommissionAmount.String(),
			rec.TransactionType,
			rec.PolicyNumber,
			nullDate(rec.EffectiveDate),
			nullDate(rec.ProcessedDate),
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %d: %w", seq, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// READS
// =============================================================================

// GetRun loads one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, period, source_count, record_count, total_commission, anomaly_count, created_at
		FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// LatestRun returns the most recent run for a period.
func (s *Store) LatestRun(ctx context.Context, period string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, period, source_count, record_count, total_commission, anomaly_count, created_at
		FROM runs WHERE period = ?
		ORDER BY created_at DESC, id DESC LIMIT 1`, period)
	return scanRun(row)
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, period, source_count, record_count, total_commission, anomaly_count, created_at
		FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LoadRecords returns a run's records in their original batch order.
func (s *Store) LoadRecords(ctx context.Context, runID string) ([]canonical.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT carrier_name, commission_period, agent_name, agency_name,
		       member_id, member_name, plan_name, enrollment_date, disenrollment_date,
		       commission_amount, transaction_type, policy_number, effective_date, processed_date
		FROM records WHERE run_id = ? ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	defer rows.Close()

	var records []canonical.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LoadRecordsByPeriod returns the records of the latest run for a period.
func (s *Store) LoadRecordsByPeriod(ctx context.Context, period string) ([]canonical.Record, error) {
	run, err := s.LatestRun(ctx, period)
	if err != nil {
		return nil, err
	}
	return s.LoadRecords(ctx, run.ID)
}

// =============================================================================
// SCANNING HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var total, createdAt string
	err := row.Scan(&run.ID, &run.Period, &run.SourceCount, &run.RecordCount,
		&total, &run.AnomalyCount, &createdAt)
	if err == sql.ErrNoRows {
		return Run{}, canonical.ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}

	run.TotalCommission, err = decimal.NewFromString(total)
	if err != nil {
		return Run{}, fmt.Errorf("corrupt total_commission %q: %w", total, err)
	}
	run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("corrupt created_at %q: %w", createdAt, err)
	}
	return run, nil
}

func scanRecord(rows *sql.Rows) (canonical.Record, error) {
	var rec canonical.Record
	var amount string
	var enrollment, disenrollment, effective, processed sql.NullString

	err := rows.Scan(&rec.CarrierName, &rec.CommissionPeriod, &rec.AgentName, &rec.AgencyName,
		&rec.MemberID, &rec.MemberName, &rec.PlanName, &enrollment, &disenrollment,
		&amount, &rec.TransactionType, &rec.PolicyNumber, &effective, &processed)
	if err != nil {
		return canonical.Record{}, fmt.Errorf("failed to scan record: %w", err)
	}

	rec.CommissionAmount, err = decimal.NewFromString(amount)
	if err != nil {
		return canonical.Record{}, fmt.Errorf("corrupt commission_amount %q: %w", amount, err)
	}
	if rec.EnrollmentDate, err = dateFromNull(enrollment); err != nil {
		return canonical.Record{}, err
	}
	if rec.DisenrollmentDate, err = dateFromNull(disenrollment); err != nil {
		return canonical.Record{}, err
	}
	if rec.EffectiveDate, err = dateFromNull(effective); err != nil {
		return canonical.Record{}, err
	}
	if rec.ProcessedDate, err = dateFromNull(processed); err != nil {
		return canonical.Record{}, err
	}
	return rec, nil
}

func nullDate(d canonical.Date) any {
	if !d.Valid {
		return nil
	}
	return d.String()
}

func dateFromNull(ns sql.NullString) (canonical.Date, error) {
	if !ns.Valid || ns.String == "" {
		return canonical.Date{}, nil
	}
	t, err := time.ParseInLocation(canonical.ISODate, ns.String, time.UTC)
	if err != nil {
		return canonical.Date{}, fmt.Errorf("corrupt date %q: %w", ns.String, err)
	}
	return canonical.DateOf(t), nil
}
