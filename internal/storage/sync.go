package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"schoolsite/internal/core"
	"schoolsite/internal/ports"
)

func scanChange(s rowScanner) (ports.FeeChange, error) {
	var deletedAt sql.NullInt64
	f, err := scanFee(s, &deletedAt)
	if err != nil {
		return ports.FeeChange{}, err
	}
	return ports.FeeChange{Record: f, Deleted: deletedAt.Valid, UpdatedAt: f.UpdatedAt}, nil
}

// ListPendingFeeSync implements ports.FeeSyncStore. Deleted records are
// included so their rows can be cleared.
func (r *SQLiteRepository) ListPendingFeeSync(ctx context.Context, limit int) ([]ports.FeeChange, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+feeColumns+`, deleted_at
		FROM fee_records
		WHERE sync_status = ?
		ORDER BY updated_at, id
		LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending fee sync: %w", err)
	}
	defer rows.Close()

	var out []ports.FeeChange
	for rows.Next() {
		c, err := scanChange(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending fee: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetFeeChange implements ports.FeeSyncStore.
func (r *SQLiteRepository) GetFeeChange(ctx context.Context, id int64) (ports.FeeChange, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+feeColumns+`, deleted_at FROM fee_records WHERE id = ?`, id)
	c, err := scanChange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.FeeChange{}, core.ErrNotFound
	}
	if err != nil {
		return ports.FeeChange{}, fmt.Errorf("get fee change %d: %w", id, err)
	}
	return c, nil
}

// MarkFeeSynced implements ports.FeeSyncStore.
func (r *SQLiteRepository) MarkFeeSynced(ctx context.Context, id, version int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE fee_records SET sync_status = ?, synced_at = ?
		WHERE id = ? AND version = ?`,
		SyncSynced, r.stamp(), id, version)
	if err != nil {
		return fmt.Errorf("mark fee synced: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		slog.InfoContext(ctx, "Fee record changed during sync, left pending", "id", id, "version", version)
		return nil
	}
	slog.InfoContext(ctx, "Fee record marked as synced", "id", id, "version", version)
	return nil
}

// MarkFeeSyncError implements ports.FeeSyncStore.
func (r *SQLiteRepository) MarkFeeSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE fee_records SET sync_status = ? WHERE id = ?`, SyncError, id); err != nil {
		return fmt.Errorf("mark fee sync error: %w", err)
	}
	slog.WarnContext(ctx, "Fee record marked with sync error", "id", id)
	return nil
}

// RequeueFeeSyncErrors puts failed records back to pending and returns how
// many were reset.
func (r *SQLiteRepository) RequeueFeeSyncErrors(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE fee_records SET sync_status = ? WHERE sync_status = ?`, SyncPending, SyncError)
	if err != nil {
		return 0, fmt.Errorf("requeue fee sync errors: %w", err)
	}
	return res.RowsAffected()
}
