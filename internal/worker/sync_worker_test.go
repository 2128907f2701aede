package worker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"pantry/internal/amqp"
	"pantry/internal/core"
	"pantry/internal/storage"
)

type fakeRemote struct {
	mu    sync.Mutex
	saved []core.Document
	fail  bool
}

func (f *fakeRemote) Save(_ context.Context, doc core.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("remote unavailable")
	}
	f.saved = append(f.saved, doc)
	return nil
}

func newTestWorker(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *fakeRemote) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	remote := &fakeRemote{}
	return NewSyncWorker(repo, remote, 10), repo, remote
}

func TestHandleSyncMessagePushesRevision(t *testing.T) {
	w, repo, remote := newTestWorker(t)
	ctx := context.Background()

	doc := core.DefaultDocument(5)
	doc.Points = 321
	id, _ := repo.AppendRevision(ctx, doc)

	if err := w.HandleSyncMessage(ctx, amqp.NewDocumentSyncMessage(id)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(remote.saved) != 1 || remote.saved[0].Points != 321 {
		t.Fatalf("remote saves = %+v", remote.saved)
	}

	// Redelivery of an already-synced revision is a no-op.
	if err := w.HandleSyncMessage(ctx, amqp.NewDocumentSyncMessage(id)); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if len(remote.saved) != 1 {
		t.Fatal("redelivery must not push again")
	}
}

func TestHandleSyncMessageUnknownRevision(t *testing.T) {
	w, _, _ := newTestWorker(t)
	if err := w.HandleSyncMessage(context.Background(), amqp.NewDocumentSyncMessage(99)); err == nil {
		t.Fatal("expected error for unknown revision")
	}
}

func TestHandleSyncMessageRemoteFailure(t *testing.T) {
	w, repo, remote := newTestWorker(t)
	ctx := context.Background()
	remote.fail = true

	id, _ := repo.AppendRevision(ctx, core.DefaultDocument(5))
	if err := w.HandleSyncMessage(ctx, amqp.NewDocumentSyncMessage(id)); err == nil {
		t.Fatal("expected error so the delivery is requeued")
	}

	rev, _ := repo.GetRevision(ctx, id)
	if !rev.SyncError {
		t.Fatal("failed push must flag the revision")
	}
}

func TestProcessPendingPushesOnlyNewest(t *testing.T) {
	w, repo, remote := newTestWorker(t)
	ctx := context.Background()

	old := core.DefaultDocument(5)
	old.Points = 1
	repo.AppendRevision(ctx, old)

	newer := core.DefaultDocument(5)
	newer.Points = 2
	repo.AppendRevision(ctx, newer)

	if err := w.ProcessPendingRevisions(ctx); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if len(remote.saved) != 1 || remote.saved[0].Points != 2 {
		t.Fatalf("only the newest snapshot should land, got %+v", remote.saved)
	}

	pending, _ := repo.GetPendingRevisions(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("pending = %v, want none", pending)
	}
}

func TestStartupSyncCheckEmptyJournal(t *testing.T) {
	w, _, remote := newTestWorker(t)
	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	if len(remote.saved) != 0 {
		t.Fatal("nothing to push on empty journal")
	}
}
