package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pantry/internal/amqp"
	"pantry/internal/core"
	"pantry/internal/storage"
	"pantry/internal/store"
)

// MirrorService is the local-first document store: saves land in the SQLite
// journal immediately and a sync message is published for the worker to
// push the revision to the remote store. Publish failures never fail the
// request; the startup drain picks the revision up later.
type MirrorService struct {
	repo       *storage.SQLiteRepository
	amqpClient *amqp.Client
	seed       store.Loader // optional, consulted when the journal is empty
}

func NewMirrorService(repo *storage.SQLiteRepository, amqpClient *amqp.Client, seed store.Loader) *MirrorService {
	return &MirrorService{
		repo:       repo,
		amqpClient: amqpClient,
		seed:       seed,
	}
}

// Load implements store.Loader from the local journal. An empty journal
// falls back to the seed loader, then to the default document.
func (s *MirrorService) Load(ctx context.Context) (core.Document, error) {
	doc, err := s.repo.LatestDocument(ctx)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, storage.ErrNoRevisions) {
		return core.Document{}, fmt.Errorf("load mirrored document: %w", err)
	}

	if s.seed != nil {
		seeded, err := s.seed.Load(ctx)
		if err == nil {
			slog.InfoContext(ctx, "Journal empty, seeded from upstream store")
			return seeded, nil
		}
		slog.WarnContext(ctx, "Seed load failed, using defaults", "error", err)
	}
	return core.DefaultDocument(int(time.Now().Month())), nil
}

// Save implements store.Saver: journal locally, then publish.
func (s *MirrorService) Save(ctx context.Context, doc core.Document) error {
	revision, err := s.repo.AppendRevision(ctx, doc)
	if err != nil {
		return fmt.Errorf("journal document: %w", err)
	}

	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message", "revision", revision)
		return nil
	}
	if err := s.amqpClient.PublishDocumentSync(ctx, revision); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"revision", revision, "error", err)
		// Saved locally; the worker's pending scan will catch up.
	}
	return nil
}

// Close closes both the journal and the AMQP connection.
func (s *MirrorService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close mirror service: %v", errs)
	}

	return nil
}
