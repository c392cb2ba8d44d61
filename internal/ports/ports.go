// Package ports declares the storage and export boundaries the rest of the
// application is written against.
package ports

import (
	"context"
	"time"

	"schoolsite/internal/core"
)

type (
	// FeeRepository persists the base fields of fee records. Derived amounts
	// are never stored; implementations return them as zero.
	FeeRepository interface {
		ListFees(ctx context.Context) ([]core.FeeRecord, error)
		// GetFee returns core.ErrNotFound for unknown or deleted ids.
		GetFee(ctx context.Context, id int64) (core.FeeRecord, error)
		// CreateFee assigns the id and version and returns the stored record.
		CreateFee(ctx context.Context, r core.FeeRecord) (core.FeeRecord, error)
		// UpdateFee replaces the base fields of r.ID and bumps its version.
		UpdateFee(ctx context.Context, r core.FeeRecord) (core.FeeRecord, error)
		DeleteFee(ctx context.Context, id int64) error
	}

	AlumniRepository interface {
		ListAlumni(ctx context.Context) ([]core.Alumnus, error)
		CreateAlumnus(ctx context.Context, a core.Alumnus) (core.Alumnus, error)
		DeleteAlumnus(ctx context.Context, id int64) error
	}

	GalleryRepository interface {
		ListGallery(ctx context.Context) ([]core.GalleryImage, error)
		CreateGalleryImage(ctx context.Context, g core.GalleryImage) (core.GalleryImage, error)
		DeleteGalleryImage(ctx context.Context, id int64) error
	}

	// Pinger reports whether a backing store is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// FeeSyncStore is the view of storage the export worker needs.
	FeeSyncStore interface {
		// ListPendingFeeSync returns at most limit changes not yet exported,
		// oldest first.
		ListPendingFeeSync(ctx context.Context, limit int) ([]FeeChange, error)
		// GetFeeChange loads a record even if it has been deleted.
		GetFeeChange(ctx context.Context, id int64) (FeeChange, error)
		// MarkFeeSynced records a successful export of version. A newer
		// version keeps the record pending.
		MarkFeeSynced(ctx context.Context, id, version int64) error
		MarkFeeSyncError(ctx context.Context, id int64) error
	}

	// FeeSheetWriter mirrors fee records into an external spreadsheet.
	FeeSheetWriter interface {
		// UpsertFee writes r's row and returns its 1-based sheet row.
		UpsertFee(ctx context.Context, r core.FeeRecord) (row int, err error)
		// DeleteFee clears the row for id. A missing row is not an error.
		DeleteFee(ctx context.Context, id int64) error
	}
)

// FeeChange is a stored fee record together with its export state.
type FeeChange struct {
	Record    core.FeeRecord
	Deleted   bool
	UpdatedAt time.Time
}
