package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"schoolsite/internal/ports"
)

// ChangeExporter pushes one stored fee change to the spreadsheet and records
// the outcome.
type ChangeExporter interface {
	ExportChange(ctx context.Context, c ports.FeeChange) error
}

type SyncProcessorConfig struct {
	// PollInterval is how often pending records are swept (default 30s).
	PollInterval time.Duration
	// BatchSize caps the records exported per sweep (default 10).
	BatchSize int
}

func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{PollInterval: 30 * time.Second, BatchSize: 10}
}

// SyncProcessor periodically exports fee records still marked pending. It
// catches changes whose queue message was lost or never published.
type SyncProcessor struct {
	store    ports.FeeSyncStore
	exporter ChangeExporter
	config   SyncProcessorConfig

	mu      sync.Mutex
	running bool
}

func NewSyncProcessor(store ports.FeeSyncStore, exporter ChangeExporter, config SyncProcessorConfig) *SyncProcessor {
	def := DefaultSyncProcessorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = def.BatchSize
	}
	return &SyncProcessor{store: store, exporter: exporter, config: config}
}

var errAlreadyRunning = errors.New("sync processor is already running")

// Run sweeps once immediately and then every PollInterval until ctx is done.
// It returns nil on cancellation.
func (p *SyncProcessor) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errAlreadyRunning
	}
	p.running = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	slog.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.ProcessBatch(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Sync processor stopped")
			return nil
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// ProcessBatch exports one batch of pending changes and returns how many
// succeeded.
func (p *SyncProcessor) ProcessBatch(ctx context.Context) int {
	changes, err := p.store.ListPendingFeeSync(ctx, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list pending fee records", "error", err)
		return 0
	}
	if len(changes) == 0 {
		return 0
	}
	slog.DebugContext(ctx, "Sweeping pending fee records", "count", len(changes))

	ok := 0
	for _, c := range changes {
		if ctx.Err() != nil {
			break
		}
		if err := p.exporter.ExportChange(ctx, c); err != nil {
			slog.WarnContext(ctx, "Sweep export failed", "id", c.Record.ID, "error", err)
			continue
		}
		ok++
	}
	return ok
}
