package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vsinha/rebalance/pkg/domain/entities"
	"github.com/vsinha/rebalance/pkg/domain/repositories"
)

// PlanRepository stores the production plan in SQLite
type PlanRepository struct {
	db *sql.DB
}

// Verify interface compliance
var _ repositories.PlanRepository = (*PlanRepository)(nil)

// New opens a SQLite plan store. Call Migrate before first use.
func New(path string) (*PlanRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open plan database %s: %w", path, err)
	}

	// A single connection serializes writers and keeps :memory: databases alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &PlanRepository{db: db}, nil
}

// Open opens and migrates a SQLite plan store
func Open(ctx context.Context, path string) (*PlanRepository, error) {
	repo, err := New(path)
	if err != nil {
		return nil, err
	}
	if err := repo.Migrate(ctx); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to migrate plan database: %w", err)
	}
	return repo, nil
}

// Close closes the database connection.
func (r *PlanRepository) Close() error {
	return r.db.Close()
}

// Migrate runs database migrations.
func (r *PlanRepository) Migrate(ctx context.Context) error {
	return Migrate(ctx, r.db)
}

// LoadEntries upserts plan entries in one transaction
func (r *PlanRepository) LoadEntries(entries []*entities.PlanEntry) error {
	return r.LoadEntriesContext(context.Background(), entries)
}

// LoadEntriesContext is LoadEntries with a caller-supplied context
func (r *PlanRepository) LoadEntriesContext(ctx context.Context, entries []*entities.PlanEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO production_plan (plan_date, line, product_name, qty_0, qty_1, plt, is_workday)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (plan_date, line, product_name) DO UPDATE SET
			qty_0 = excluded.qty_0,
			qty_1 = excluded.qty_1,
			plt = excluded.plt,
			is_workday = excluded.is_workday
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx,
			e.Date.Format(entities.DateLayout), string(e.Line), string(e.Item),
			int64(e.DemandQty), int64(e.ActualQty), int64(e.PalletSize),
			workdayValue(e.Workday))
		if err != nil {
			return fmt.Errorf("failed to store plan entry %s/%s: %w", e.Location(), e.Item, err)
		}
	}

	return tx.Commit()
}

// Snapshot returns the entries in range ordered by date, line and item
func (r *PlanRepository) Snapshot(ctx context.Context, dateRange entities.DateRange) ([]*entities.PlanEntry, error) {
	query := `SELECT plan_date, line, product_name, qty_0, qty_1, plt, is_workday FROM production_plan`

	var where []string
	var args []interface{}
	if !dateRange.From.IsZero() {
		where = append(where, "plan_date >= ?")
		args = append(args, entities.Day(dateRange.From).Format(entities.DateLayout))
	}
	if !dateRange.To.IsZero() {
		where = append(where, "plan_date <= ?")
		args = append(args, entities.Day(dateRange.To).Format(entities.DateLayout))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY plan_date, line, product_name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*entities.PlanEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// IsWorkday returns Workday if any row on the date is flagged as one,
// NonWorkday if only closed flags exist, and WorkdayUnknown otherwise
func (r *PlanRepository) IsWorkday(ctx context.Context, date time.Time) (entities.WorkdayFlag, error) {
	var flag sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(is_workday) FROM production_plan WHERE plan_date = ?`,
		entities.Day(date).Format(entities.DateLayout),
	).Scan(&flag)
	if err != nil {
		return entities.WorkdayUnknown, err
	}
	return workdayFlag(flag), nil
}

// Count returns the number of stored plan rows
func (r *PlanRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM production_plan`).Scan(&n)
	return n, err
}

func scanEntry(rows *sql.Rows) (*entities.PlanEntry, error) {
	var (
		date, line, item    string
		demand, actual, plt int64
		workday             sql.NullInt64
	)
	if err := rows.Scan(&date, &line, &item, &demand, &actual, &plt, &workday); err != nil {
		return nil, err
	}

	planDate, err := entities.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("stored plan row %s/%s/%s: %w", date, line, item, err)
	}

	return entities.NewPlanEntry(
		planDate,
		entities.LineID(line),
		entities.ItemName(item),
		entities.Quantity(demand), entities.Quantity(actual), entities.Quantity(plt),
		workdayFlag(workday),
	)
}

func workdayValue(flag entities.WorkdayFlag) sql.NullInt64 {
	switch flag {
	case entities.Workday:
		return sql.NullInt64{Int64: 1, Valid: true}
	case entities.NonWorkday:
		return sql.NullInt64{Int64: 0, Valid: true}
	default:
		return sql.NullInt64{}
	}
}

func workdayFlag(v sql.NullInt64) entities.WorkdayFlag {
	if !v.Valid {
		return entities.WorkdayUnknown
	}
	return entities.WorkdayFlagFromBool(v.Int64 != 0)
}
