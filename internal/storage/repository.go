// Package storage persists financial records in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"finboard/internal/core"
	applog "finboard/internal/log"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// ColumnState is the outcome of probing for the investment_income column.
type ColumnState int

const (
	ColumnAbsent ColumnState = iota
	ColumnPresent
)

func (s ColumnState) String() string {
	if s == ColumnPresent {
		return "present"
	}
	return "absent"
}

const connPragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

func dsn(dbPath string) string {
	return dbPath + "?" + connPragmas
}

// SQLiteRepository issues every statement the record layer and the bootstrap
// procedures need. It holds a single connection.
type SQLiteRepository struct {
	db     *sql.DB
	path   string
	logger *applog.Logger
}

// NewSQLiteRepository opens the database file, creating its directory.
// The schema is not touched; that is the job of the bootstrap procedures.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		path:   dbPath,
		logger: applog.FromContext(context.Background()).WithComponent(applog.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Path returns the database file the repository was opened on.
func (r *SQLiteRepository) Path() string {
	return r.path
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InvestmentIncomeColumn probes the live table definition. A missing table
// reports ColumnAbsent.
func (r *SQLiteRepository) InvestmentIncomeColumn(ctx context.Context) (ColumnState, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info('financial_data') WHERE name = 'investment_income'`,
	).Scan(&n)
	if err != nil {
		return ColumnAbsent, fmt.Errorf("probe investment_income column: %w", err)
	}
	if n > 0 {
		return ColumnPresent, nil
	}
	return ColumnAbsent, nil
}

// ListRecords returns every record ordered by month, oldest first.
func (r *SQLiteRepository) ListRecords(ctx context.Context) ([]core.FinancialRecord, error) {
	state, err := r.InvestmentIncomeColumn(ctx)
	if err != nil {
		return nil, err
	}

	investment := "investment_income"
	if state == ColumnAbsent {
		investment = "0 AS investment_income"
	}

	query := `SELECT year_month, total_income, total_expense, total_capital, ` + investment + `,
		interest_rate, created_at, updated_at
		FROM financial_data ORDER BY year_month ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query financial data: %w", err)
	}
	defer rows.Close()

	records := make([]core.FinancialRecord, 0)
	for rows.Next() {
		var (
			rec                  core.FinancialRecord
			createdAt, updatedAt any
		)
		if err := rows.Scan(
			&rec.YearMonth,
			realAmount{&rec.TotalIncome},
			realAmount{&rec.TotalExpense},
			realAmount{&rec.TotalCapital},
			realAmount{&rec.InvestmentIncome},
			realAmount{&rec.InterestRate},
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan financial data: %w", err)
		}
		if rec.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("record %s created_at: %w", rec.YearMonth, err)
		}
		if rec.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, fmt.Errorf("record %s updated_at: %w", rec.YearMonth, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate financial data: %w", err)
	}

	return records, nil
}

// UpsertRecord inserts rec or replaces the whole row with the same month,
// created_at included.
func (r *SQLiteRepository) UpsertRecord(ctx context.Context, rec core.FinancialRecord) error {
	state, err := r.InvestmentIncomeColumn(ctx)
	if err != nil {
		return err
	}

	if state == ColumnPresent {
		_, err = r.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO financial_data
			(year_month, total_income, total_expense, total_capital, investment_income, interest_rate)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rec.YearMonth, rec.TotalIncome, rec.TotalExpense, rec.TotalCapital, rec.InvestmentIncome, rec.InterestRate)
	} else {
		_, err = r.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO financial_data
			(year_month, total_income, total_expense, total_capital, interest_rate)
			VALUES (?, ?, ?, ?, ?)`,
			rec.YearMonth, rec.TotalIncome, rec.TotalExpense, rec.TotalCapital, rec.InterestRate)
	}
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", rec.YearMonth, err)
	}

	r.logger.DebugContext(ctx, "Record upserted",
		applog.NewFields().WithRecord(rec.YearMonth, string(core.ActionUpsert)).ToSlice()...)
	return nil
}

// UpdateRecord rewrites the mutable columns of an existing month and returns
// the number of rows touched.
func (r *SQLiteRepository) UpdateRecord(ctx context.Context, rec core.FinancialRecord) (int64, error) {
	state, err := r.InvestmentIncomeColumn(ctx)
	if err != nil {
		return 0, err
	}

	var res sql.Result
	if state == ColumnPresent {
		res, err = r.db.ExecContext(ctx,
			`UPDATE financial_data
			SET total_income = ?, total_expense = ?, total_capital = ?, investment_income = ?,
				interest_rate = ?, updated_at = CURRENT_TIMESTAMP
			WHERE year_month = ?`,
			rec.TotalIncome, rec.TotalExpense, rec.TotalCapital, rec.InvestmentIncome, rec.InterestRate, rec.YearMonth)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE financial_data
			SET total_income = ?, total_expense = ?, total_capital = ?,
				interest_rate = ?, updated_at = CURRENT_TIMESTAMP
			WHERE year_month = ?`,
			rec.TotalIncome, rec.TotalExpense, rec.TotalCapital, rec.InterestRate, rec.YearMonth)
	}
	if err != nil {
		return 0, fmt.Errorf("update record %s: %w", rec.YearMonth, err)
	}
	return rowsAffected(res)
}

// DeleteRecord removes one month and returns the number of rows removed.
func (r *SQLiteRepository) DeleteRecord(ctx context.Context, yearMonth string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM financial_data WHERE year_month = ?`, yearMonth)
	if err != nil {
		return 0, fmt.Errorf("delete record %s: %w", yearMonth, err)
	}
	return rowsAffected(res)
}

func (r *SQLiteRepository) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM financial_data`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// InsertSeedRecord is a plain INSERT against the base schema; a duplicate
// month fails.
func (r *SQLiteRepository) InsertSeedRecord(ctx context.Context, rec core.FinancialRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO financial_data (year_month, total_income, total_expense, total_capital, interest_rate)
		VALUES (?, ?, ?, ?, ?)`,
		rec.YearMonth, rec.TotalIncome, rec.TotalExpense, rec.TotalCapital, rec.InterestRate)
	if err != nil {
		return fmt.Errorf("insert seed record %s: %w", rec.YearMonth, err)
	}
	return nil
}

// SetInvestmentIncome writes the backfill value for one month.
func (r *SQLiteRepository) SetInvestmentIncome(ctx context.Context, yearMonth string, amount decimal.Decimal) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE financial_data SET investment_income = ? WHERE year_month = ?`, amount, yearMonth)
	if err != nil {
		return 0, fmt.Errorf("set investment income for %s: %w", yearMonth, err)
	}
	return rowsAffected(res)
}

// InvestmentSample returns the first limit months with their investment income.
func (r *SQLiteRepository) InvestmentSample(ctx context.Context, limit int) ([]core.InvestmentIncomeSample, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT year_month, investment_income FROM financial_data ORDER BY year_month LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query investment sample: %w", err)
	}
	defer rows.Close()

	sample := make([]core.InvestmentIncomeSample, 0, limit)
	for rows.Next() {
		var s core.InvestmentIncomeSample
		if err := rows.Scan(&s.YearMonth, realAmount{&s.InvestmentIncome}); err != nil {
			return nil, fmt.Errorf("scan investment sample: %w", err)
		}
		sample = append(sample, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate investment sample: %w", err)
	}
	return sample, nil
}

// realAmount scans a REAL column into a decimal. SQLite keeps out-of-range
// values as infinity, which has no decimal form.
type realAmount struct {
	dst *decimal.Decimal
}

func (a realAmount) Scan(src any) error {
	var f sql.NullFloat64
	if err := f.Scan(src); err != nil {
		return err
	}
	if math.IsInf(f.Float64, 0) || math.IsNaN(f.Float64) {
		return fmt.Errorf("non-finite amount %v", f.Float64)
	}
	*a.dst = decimal.NewFromFloat(f.Float64)
	return nil
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
}

// parseTimestamp normalizes what the driver returns for a DATETIME column.
// CURRENT_TIMESTAMP values are UTC.
func parseTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t.UTC(), nil
	case []byte:
		return parseTimestampString(string(t))
	case string:
		return parseTimestampString(t)
	case int64:
		return time.Unix(t, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func parseTimestampString(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
