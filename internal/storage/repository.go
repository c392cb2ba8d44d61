// Package storage is the SQLite backend. Fee records are soft deleted and
// versioned so the export worker can mirror every change.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"schoolsite/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states of a fee record.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) stamp() int64 {
	return r.now().UTC().Unix()
}

const feeColumns = `id, class_name, category, admission_fee, monthly_fee, other_charges,
	description, is_active, version, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFee(s rowScanner, extra ...any) (core.FeeRecord, error) {
	var (
		f                 core.FeeRecord
		adm, mon, oth     int64
		active, updatedAt int64
	)
	dest := append([]any{&f.ID, &f.ClassName, &f.Category, &adm, &mon, &oth,
		&f.Description, &active, &f.Version, &updatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		return core.FeeRecord{}, err
	}
	f.AdmissionFee = core.Amount(adm)
	f.MonthlyFee = core.Amount(mon)
	f.OtherCharges = core.Amount(oth)
	f.IsActive = active != 0
	f.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return f, nil
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// ListFees implements ports.FeeRepository.
func (r *SQLiteRepository) ListFees(ctx context.Context) ([]core.FeeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+feeColumns+` FROM fee_records WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list fees: %w", err)
	}
	defer rows.Close()

	var out []core.FeeRecord
	for rows.Next() {
		f, err := scanFee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fee: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetFee implements ports.FeeRepository.
func (r *SQLiteRepository) GetFee(ctx context.Context, id int64) (core.FeeRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+feeColumns+` FROM fee_records WHERE id = ? AND deleted_at IS NULL`, id)
	f, err := scanFee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FeeRecord{}, core.ErrNotFound
	}
	if err != nil {
		return core.FeeRecord{}, fmt.Errorf("get fee %d: %w", id, err)
	}
	return f, nil
}

// CreateFee implements ports.FeeRepository.
func (r *SQLiteRepository) CreateFee(ctx context.Context, f core.FeeRecord) (core.FeeRecord, error) {
	if err := f.Validate(); err != nil {
		return core.FeeRecord{}, err
	}
	now := r.stamp()
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO fee_records (class_name, category, admission_fee, monthly_fee, other_charges,
			description, is_active, version, sync_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?)
		RETURNING `+feeColumns,
		f.ClassName, f.Category, f.AdmissionFee.Int64(), f.MonthlyFee.Int64(), f.OtherCharges.Int64(),
		f.Description, boolInt(f.IsActive), SyncPending, now, now)
	created, err := scanFee(row)
	if err != nil {
		return core.FeeRecord{}, fmt.Errorf("create fee: %w", err)
	}

	slog.InfoContext(ctx, "Fee record saved to SQLite",
		"id", created.ID,
		"class_name", created.ClassName,
		"category", created.Category)
	return created, nil
}

// UpdateFee implements ports.FeeRepository.
func (r *SQLiteRepository) UpdateFee(ctx context.Context, f core.FeeRecord) (core.FeeRecord, error) {
	if err := f.Validate(); err != nil {
		return core.FeeRecord{}, err
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE fee_records
		SET class_name = ?, category = ?, admission_fee = ?, monthly_fee = ?, other_charges = ?,
			description = ?, is_active = ?, version = version + 1, sync_status = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
		RETURNING `+feeColumns,
		f.ClassName, f.Category, f.AdmissionFee.Int64(), f.MonthlyFee.Int64(), f.OtherCharges.Int64(),
		f.Description, boolInt(f.IsActive), SyncPending, r.stamp(), f.ID)
	updated, err := scanFee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FeeRecord{}, core.ErrNotFound
	}
	if err != nil {
		return core.FeeRecord{}, fmt.Errorf("update fee %d: %w", f.ID, err)
	}
	return updated, nil
}

// DeleteFee soft deletes the record and queues the removal for export.
func (r *SQLiteRepository) DeleteFee(ctx context.Context, id int64) error {
	now := r.stamp()
	res, err := r.db.ExecContext(ctx, `
		UPDATE fee_records
		SET deleted_at = ?, updated_at = ?, version = version + 1, sync_status = ?
		WHERE id = ? AND deleted_at IS NULL`,
		now, now, SyncPending, id)
	if err != nil {
		return fmt.Errorf("delete fee %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Fee record soft deleted", "id", id)
	return nil
}

// CountFees returns the number of live fee records.
func (r *SQLiteRepository) CountFees(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fee_records WHERE deleted_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count fees: %w", err)
	}
	return n, nil
}
