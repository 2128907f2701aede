package backend

import (
	"context"
	"fmt"
	"log/slog"

	"pantry/internal/amqp"
	"pantry/internal/services"
	"pantry/internal/store"
	"pantry/internal/store/memory"
	"pantry/internal/store/remote"
	"pantry/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case RemoteBackend:
		return f.createRemoteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// createSQLiteBackend wires the local-first mirror: every save lands in the
// revision journal and a sync message goes out for the push worker.
func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	// An empty journal starts from the remote document when one is
	// configured, so a fresh mirror does not wipe shared state.
	var seed store.Loader
	if config.RemoteRepo != "" && config.RemoteToken != "" {
		seed, err = f.remoteClient(config)
		if err != nil {
			f.logger.Warn("Remote seed unavailable, starting from defaults", "error", err)
			seed = nil
		}
	}

	mirror := services.NewMirrorService(repo, amqpClient, seed)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil,
		"remote_seed", seed != nil)

	return &BackendResult{
		Backend: mirror,
		Cleanup: mirror.Close,
	}, nil
}

// createRemoteBackend talks straight to the shared document with a short
// read cache in front.
func (f *DefaultFactory) createRemoteBackend(config Config) (*BackendResult, error) {
	client, err := f.remoteClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize remote store: %w", err)
	}

	var backend Backend = client
	if config.CacheTTL > 0 {
		backend = store.NewCached(client, config.CacheTTL)
	}

	f.logger.Info("Initialized remote backend",
		"repo", config.RemoteRepo,
		"path", config.RemotePath,
		"cache_ttl", config.CacheTTL)

	return &BackendResult{
		Backend: backend,
		Cleanup: nil,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	st := memory.NewFromFile(config.LegacySeedPath)

	f.logger.Info("Initialized memory backend", "seed", config.LegacySeedPath)

	return &BackendResult{
		Backend: st,
		Cleanup: nil,
	}, nil
}

func (f *DefaultFactory) remoteClient(config Config) (*remote.Client, error) {
	return remote.NewClient(remote.Config{
		BaseURL: config.RemoteBaseURL,
		Repo:    config.RemoteRepo,
		Path:    config.RemotePath,
		Token:   config.RemoteToken,
	})
}
