package worker

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolsite/internal/amqp"
	"schoolsite/internal/core"
	applog "schoolsite/internal/log"
	"schoolsite/internal/ports"
)

type fakeStore struct {
	changes map[int64]ports.FeeChange
	getErr  error
	synced  map[int64]int64
	errored []int64
}

func newFakeStore(changes ...ports.FeeChange) *fakeStore {
	s := &fakeStore{changes: map[int64]ports.FeeChange{}, synced: map[int64]int64{}}
	for _, c := range changes {
		s.changes[c.Record.ID] = c
	}
	return s
}

func (s *fakeStore) ListPendingFeeSync(context.Context, int) ([]ports.FeeChange, error) {
	return nil, nil
}

func (s *fakeStore) GetFeeChange(_ context.Context, id int64) (ports.FeeChange, error) {
	if s.getErr != nil {
		return ports.FeeChange{}, s.getErr
	}
	c, ok := s.changes[id]
	if !ok {
		return ports.FeeChange{}, core.ErrNotFound
	}
	return c, nil
}

func (s *fakeStore) MarkFeeSynced(_ context.Context, id, version int64) error {
	s.synced[id] = version
	return nil
}

func (s *fakeStore) MarkFeeSyncError(_ context.Context, id int64) error {
	s.errored = append(s.errored, id)
	return nil
}

type fakeSheet struct {
	rows    map[int64]core.FeeRecord
	cleared []int64
	err     error
}

func (f *fakeSheet) UpsertFee(_ context.Context, r core.FeeRecord) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.rows == nil {
		f.rows = map[int64]core.FeeRecord{}
	}
	f.rows[r.ID] = r
	return len(f.rows) + 1, nil
}

func (f *fakeSheet) DeleteFee(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.cleared = append(f.cleared, id)
	delete(f.rows, id)
	return nil
}

func quiet() *applog.Logger { return applog.New(applog.Config{Output: io.Discard}) }

func change(id, version int64, deleted bool) ports.FeeChange {
	return ports.FeeChange{
		Record:  core.FeeRecord{ID: id, ClassName: "Class 9", MonthlyFee: 8000, Version: version, IsActive: true},
		Deleted: deleted,
	}
}

func TestHandleFeeSync(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(change(1, 3, false))
	sheet := &fakeSheet{}
	w := NewSyncWorker(store, sheet, quiet())

	require.NoError(t, w.HandleFeeSync(ctx, amqp.NewFeeSyncMessage(1, 2)))
	assert.Contains(t, sheet.rows, int64(1))
	assert.Equal(t, int64(3), store.synced[1], "the stored version is the one marked")

	require.NoError(t, w.HandleFeeSync(ctx, amqp.NewFeeSyncMessage(99, 1)), "unknown ids are dropped")
	assert.NotContains(t, sheet.rows, int64(99))
}

func TestHandleFeeSync_SheetFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(change(1, 1, false))
	sheet := &fakeSheet{err: errors.New("quota")}
	w := NewSyncWorker(store, sheet, quiet())

	err := w.HandleFeeSync(ctx, amqp.NewFeeSyncMessage(1, 1))
	require.Error(t, err)
	assert.Equal(t, []int64{1}, store.errored)
	assert.Empty(t, store.synced)
}

func TestHandleFeeSync_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("database is locked")
	w := NewSyncWorker(store, &fakeSheet{}, quiet())

	assert.Error(t, w.HandleFeeSync(context.Background(), amqp.NewFeeSyncMessage(1, 1)))
}

func TestHandleFeeDelete(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(change(4, 2, true))
	sheet := &fakeSheet{}
	w := NewSyncWorker(store, sheet, quiet())

	require.NoError(t, w.HandleFeeDelete(ctx, amqp.NewFeeDeleteMessage(4)))
	assert.Equal(t, []int64{4}, sheet.cleared)
	assert.Equal(t, int64(2), store.synced[4])

	require.NoError(t, w.HandleFeeDelete(ctx, amqp.NewFeeDeleteMessage(77)))
	assert.Equal(t, []int64{4, 77}, sheet.cleared, "unknown ids still clear their row")
}

func TestExportChange_UsesDerivedAmounts(t *testing.T) {
	store := newFakeStore()
	sheet := &fakeSheet{}
	w := NewSyncWorker(store, sheet, quiet())

	c := change(5, 1, false)
	c.Record.TotalAnnual = 1
	require.NoError(t, w.ExportChange(context.Background(), c))
	assert.Equal(t, int64(1), store.synced[5])
}
