// Package storage keeps a local SQLite mirror of the inventory document:
// every save appends a revision row, and a journal of unsynced revisions
// feeds the worker that pushes them to the remote store.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pantry/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

// ErrNoRevisions is returned when the mirror holds no document yet.
var ErrNoRevisions = errors.New("no document revisions stored")

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Revision is one journaled document snapshot.
type Revision struct {
	ID        int64
	Document  core.Document
	CreatedAt time.Time
	Synced    bool
	SyncError bool
}

// AppendRevision stores a full document snapshot and returns its revision id.
func (r *SQLiteRepository) AppendRevision(ctx context.Context, doc core.Document) (int64, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("encode document: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO document_revisions (payload, created_at) VALUES (?, ?)`,
		string(payload), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("insert revision: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("revision id: %w", err)
	}

	slog.InfoContext(ctx, "Document revision journaled",
		"revision", id,
		"items", len(doc.Inventory),
		"points", doc.Points)
	return id, nil
}

// LatestDocument returns the most recent snapshot.
func (r *SQLiteRepository) LatestDocument(ctx context.Context) (core.Document, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM document_revisions ORDER BY id DESC LIMIT 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Document{}, ErrNoRevisions
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("select latest revision: %w", err)
	}

	var doc core.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return core.Document{}, fmt.Errorf("decode revision payload: %w", err)
	}
	return doc, nil
}

// GetRevision fetches one journaled snapshot by id.
func (r *SQLiteRepository) GetRevision(ctx context.Context, id int64) (*Revision, error) {
	var (
		rev     Revision
		payload string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, payload, created_at, synced, sync_error FROM document_revisions WHERE id = ?`, id).
		Scan(&rev.ID, &payload, &rev.CreatedAt, &rev.Synced, &rev.SyncError)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("revision %d: %w", id, ErrNoRevisions)
	}
	if err != nil {
		return nil, fmt.Errorf("select revision: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &rev.Document); err != nil {
		return nil, fmt.Errorf("decode revision payload: %w", err)
	}
	return &rev, nil
}

// GetPendingRevisions lists unsynced revisions, oldest first. Used both by
// the message handler fallback and the startup drain.
func (r *SQLiteRepository) GetPendingRevisions(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM document_revisions WHERE synced = 0 ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending revisions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending revision: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkSynced marks a revision and every older one as synced: the document
// is whole, so pushing a newer snapshot supersedes the older ones.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE document_revisions SET synced = 1, sync_error = 0 WHERE id <= ?`, id)
	if err != nil {
		return fmt.Errorf("mark revision synced: %w", err)
	}
	slog.InfoContext(ctx, "Revision marked as synced", "revision", id)
	return nil
}

// MarkSyncError flags a revision that failed to push.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE document_revisions SET sync_error = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark revision sync error: %w", err)
	}
	slog.WarnContext(ctx, "Revision marked with sync error", "revision", id)
	return nil
}

// PruneSynced drops synced revisions beyond the newest keep rows, bounding
// the journal.
func (r *SQLiteRepository) PruneSynced(ctx context.Context, keep int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM document_revisions
		WHERE synced = 1
		  AND id NOT IN (SELECT id FROM document_revisions ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune synced revisions: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		slog.InfoContext(ctx, "Pruned synced revisions", "removed", n)
	}
	return n, nil
}
