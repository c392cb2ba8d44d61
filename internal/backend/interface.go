// Package backend selects and builds the storage behind the API server.
package backend

import (
	"context"

	"schoolsite/internal/ports"
	"schoolsite/internal/services"
)

// Backend is everything the API server needs from storage.
type Backend interface {
	ports.FeeRepository
	ports.AlumniRepository
	ports.GalleryRepository
	ports.Pinger
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult is a ready backend plus its optional publisher.
type BackendResult struct {
	Backend Backend
	// Publisher is nil when no AMQP broker is configured.
	Publisher services.Publisher
	Cleanup   CleanupFunc
}

// Close runs Cleanup if set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// SeedDir holds optional fees.json, alumni.json and gallery.json. The
	// memory backend always loads it; SQLite uses it only for an empty
	// database.
	SeedDir string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
