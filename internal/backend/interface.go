// Package backend builds the document store selected by configuration.
package backend

import (
	"context"
	"time"

	"pantry/internal/store"
)

// Backend is the document store handed to the inventory service.
type Backend = store.Store

// CleanupFunc represents a cleanup function for resources.
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function.
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite mirror
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Remote document store
	RemoteBaseURL string
	RemoteRepo    string
	RemotePath    string
	RemoteToken   string
	CacheTTL      time.Duration

	// Memory backend seed (legacy spreadsheet export, optional)
	LegacySeedPath string
}

// BackendType represents the type of backend.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	RemoteBackend BackendType = "remote"
)

// String implements fmt.Stringer.
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid.
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, RemoteBackend:
		return true
	default:
		return false
	}
}
