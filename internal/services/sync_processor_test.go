package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"schoolsite/internal/core"
	"schoolsite/internal/ports"
)

type fakeSyncStore struct {
	pending []ports.FeeChange
	err     error
	limits  []int
}

func (s *fakeSyncStore) ListPendingFeeSync(_ context.Context, limit int) ([]ports.FeeChange, error) {
	s.limits = append(s.limits, limit)
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.pending) {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *fakeSyncStore) GetFeeChange(context.Context, int64) (ports.FeeChange, error) {
	return ports.FeeChange{}, core.ErrNotFound
}
func (s *fakeSyncStore) MarkFeeSynced(context.Context, int64, int64) error { return nil }
func (s *fakeSyncStore) MarkFeeSyncError(context.Context, int64) error { return nil }

type fakeExporter struct {
	mu   sync.Mutex
	seen []int64
	fail map[int64]bool
}

func (e *fakeExporter) ExportChange(_ context.Context, c ports.FeeChange) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seen = append(e.seen, c.Record.ID)
	if e.fail[c.Record.ID] {
		return errors.New("sheet unavailable")
	}
	return nil
}

func (e *fakeExporter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.seen)
}

func changes(ids ...int64) []ports.FeeChange {
	out := make([]ports.FeeChange, len(ids))
	for i, id := range ids {
		out[i] = ports.FeeChange{Record: core.FeeRecord{ID: id}}
	}
	return out
}

func TestNewSyncProcessorDefaults(t *testing.T) {
	p := NewSyncProcessor(nil, nil, SyncProcessorConfig{})
	if p.config.PollInterval != 30*time.Second || p.config.BatchSize != 10 {
		t.Fatalf("unexpected defaults: %+v", p.config)
	}
	if p.IsRunning() {
		t.Fatal("processor should not be running initially")
	}
}

func TestSyncProcessor_ProcessBatch(t *testing.T) {
	store := &fakeSyncStore{pending: changes(1, 2, 3, 4)}
	exp := &fakeExporter{fail: map[int64]bool{2: true}}
	p := NewSyncProcessor(store, exp, SyncProcessorConfig{BatchSize: 3, PollInterval: time.Hour})

	if got := p.ProcessBatch(context.Background()); got != 2 {
		t.Fatalf("ProcessBatch = %d, want 2", got)
	}
	if len(exp.seen) != 3 {
		t.Fatalf("exported %v, want the first three", exp.seen)
	}
	if store.limits[0] != 3 {
		t.Fatalf("limit = %d, want 3", store.limits[0])
	}
}

func TestSyncProcessor_ListError(t *testing.T) {
	store := &fakeSyncStore{err: errors.New("db locked")}
	exp := &fakeExporter{}
	p := NewSyncProcessor(store, exp, DefaultSyncProcessorConfig())
	if got := p.ProcessBatch(context.Background()); got != 0 || exp.count() != 0 {
		t.Fatalf("ProcessBatch = %d, exported %d", got, exp.count())
	}
}

func TestSyncProcessor_RunStopsOnCancel(t *testing.T) {
	store := &fakeSyncStore{pending: changes(1)}
	exp := &fakeExporter{}
	p := NewSyncProcessor(store, exp, SyncProcessorConfig{PollInterval: 10 * time.Millisecond, BatchSize: 5})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for exp.count() < 2 {
		select {
		case <-deadline:
			t.Fatal("processor did not sweep repeatedly")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := p.Run(ctx); !errors.Is(err, errAlreadyRunning) {
		t.Fatalf("second Run = %v, want errAlreadyRunning", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	if p.IsRunning() {
		t.Fatal("processor should not be running after stop")
	}
}
