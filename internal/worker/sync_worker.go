package worker

import (
	"context"
	"fmt"
	"log/slog"

	"pantry/internal/amqp"
	"pantry/internal/storage"
	"pantry/internal/store"
)

// journalKeep bounds how many synced revisions stay in the local journal.
const journalKeep = 50

// SyncWorker pushes journaled document revisions from the local SQLite
// mirror to the remote store.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	remote    store.Saver
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, remote store.Saver, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		remote:    remote,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single revision sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.DocumentSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "revision", msg.Revision)

	rev, err := w.storage.GetRevision(ctx, msg.Revision)
	if err != nil {
		return fmt.Errorf("get revision from journal: %w", err)
	}
	if rev.Synced {
		// A newer snapshot already covered this one.
		slog.DebugContext(ctx, "Revision already synced, skipping", "revision", msg.Revision)
		return nil
	}

	return w.pushRevision(ctx, rev)
}

// ProcessPendingRevisions drains revisions that never got a message.
// Backup mechanism in case AMQP deliveries are lost; the whole-document
// model means only the newest pending snapshot actually needs to land.
func (w *SyncWorker) ProcessPendingRevisions(ctx context.Context) error {
	pending, err := w.storage.GetPendingRevisions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending revisions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending revisions", "count", len(pending))

	// Newest last wins; pushing it marks the older ones synced as well.
	newest := pending[len(pending)-1]
	rev, err := w.storage.GetRevision(ctx, newest)
	if err != nil {
		return fmt.Errorf("get newest pending revision: %w", err)
	}
	if err := w.pushRevision(ctx, rev); err != nil {
		return err
	}

	if _, err := w.storage.PruneSynced(ctx, journalKeep); err != nil {
		slog.WarnContext(ctx, "Journal prune failed", "error", err)
	}
	return nil
}

// StartupSyncCheck drains anything missed while the worker was down.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingRevisions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending revisions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending revisions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending revisions on startup, processing...",
		"count", len(pending))
	return w.ProcessPendingRevisions(ctx)
}

func (w *SyncWorker) pushRevision(ctx context.Context, rev *storage.Revision) error {
	if err := w.remote.Save(ctx, rev.Document); err != nil {
		if markErr := w.storage.MarkSyncError(ctx, rev.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "revision", rev.ID, "error", markErr)
		}
		return fmt.Errorf("push revision to remote store: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, rev.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "revision", rev.ID, "error", err)
		// The push itself worked; don't fail the message.
	}

	slog.InfoContext(ctx, "Successfully pushed revision",
		"revision", rev.ID,
		"items", len(rev.Document.Inventory))
	return nil
}
