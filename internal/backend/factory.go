package backend

import (
	"context"
	"errors"
	"fmt"

	"schoolsite/internal/amqp"
	applog "schoolsite/internal/log"
	"schoolsite/internal/memory"
	"schoolsite/internal/storage"
)

type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var res *BackendResult
	switch config.Type {
	case SQLiteBackend:
		repo, err := f.createSQLite(ctx, config)
		if err != nil {
			return nil, err
		}
		res = &BackendResult{Backend: repo, Cleanup: repo.Close}
	case MemoryBackend:
		store, err := memory.NewFromDir(config.SeedDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load memory backend seed: %w", err)
		}
		f.logger.Info("Initialized memory backend", "seed_dir", config.SeedDir)
		res = &BackendResult{Backend: store}
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	f.attachPublisher(res, config)
	return res, nil
}

func (f *DefaultFactory) createSQLite(ctx context.Context, config Config) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	n, err := seedIfEmpty(ctx, repo, config.SeedDir)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("failed to seed SQLite database: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath, "seeded", n)
	return repo, nil
}

// seedIfEmpty loads the seed into a database without fee records and
// returns how many rows it wrote.
func seedIfEmpty(ctx context.Context, repo *storage.SQLiteRepository, dir string) (int, error) {
	count, err := repo.CountFees(ctx)
	if err != nil || count > 0 {
		return 0, err
	}
	seed, err := memory.LoadSeed(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range seed.Fees {
		if _, err := repo.CreateFee(ctx, r); err != nil {
			return n, fmt.Errorf("fee %q: %w", r.ClassName, err)
		}
		n++
	}
	for _, a := range seed.Alumni {
		if _, err := repo.CreateAlumnus(ctx, a); err != nil {
			return n, fmt.Errorf("alumnus %q: %w", a.Name, err)
		}
		n++
	}
	for _, g := range seed.Gallery {
		if _, err := repo.CreateGalleryImage(ctx, g); err != nil {
			return n, fmt.Errorf("gallery image %q: %w", g.Title, err)
		}
		n++
	}
	return n, nil
}

// attachPublisher connects to the broker when one is configured. A broker
// that is down at startup disables publishing instead of failing; the sync
// sweep covers the gap.
func (f *DefaultFactory) attachPublisher(res *BackendResult, config Config) {
	if config.AMQPURL == "" {
		return
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without sync", applog.FieldError, err)
		return
	}
	f.logger.Info("Initialized AMQP client", "exchange", config.AMQPExchange, "queue", config.AMQPQueue)

	res.Publisher = client
	prev := res.Cleanup
	res.Cleanup = func() error {
		err := client.Close()
		if prev != nil {
			err = errors.Join(err, prev())
		}
		return err
	}
}
