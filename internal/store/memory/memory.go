// Package memory holds the document in process memory. Used for tests and
// for running without any remote store configured.
package memory

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"pantry/internal/core"
	"pantry/internal/store/legacycsv"
)

type Store struct {
	mu  sync.Mutex
	doc core.Document
}

func New(doc core.Document) *Store {
	return &Store{doc: doc.Clone()}
}

// NewFromFile seeds the store from a legacy spreadsheet export when one is
// present, falling back to the default document.
func NewFromFile(path string) *Store {
	month := int(time.Now().Month())
	if path != "" {
		if f, err := os.Open(path); err == nil {
			defer f.Close()
			if doc, err := legacycsv.Import(f, month); err == nil {
				slog.Info("Seeded memory store from legacy export", "path", path, "items", len(doc.Inventory))
				return New(doc)
			} else {
				slog.Warn("Legacy export unreadable, using defaults", "path", path, "error", err)
			}
		}
	}
	return New(core.DefaultDocument(month))
}

func (s *Store) Load(_ context.Context) (core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone(), nil
}

func (s *Store) Save(_ context.Context, doc core.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	return nil
}
