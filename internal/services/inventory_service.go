// Package services orchestrates model operations over the document store.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"pantry/internal/core"
	"pantry/internal/store"
	"pantry/internal/store/legacycsv"
)

// InventoryService is the single logical actor that edits the document.
// Every operation is a whole-document read-modify-write: load, run the
// monthly sweep, apply the edit, persist, summarize. The mutex serializes
// concurrent HTTP requests within this process; cross-process races are
// handled by the store's compare-and-swap.
type InventoryService struct {
	mu    sync.Mutex
	store store.Store
	now   func() time.Time
}

func NewInventoryService(st store.Store) *InventoryService {
	return &InventoryService{
		store: st,
		now:   time.Now,
	}
}

// View is what every operation hands back to the caller: the full document
// plus the recomputed budget summary.
type View struct {
	Document core.Document `json:"document"`
	Summary  core.Summary  `json:"summary"`
	Warning  string        `json:"warning,omitempty"`
}

func (s *InventoryService) view(doc core.Document, warning string) View {
	return View{
		Document: doc,
		Summary:  doc.Summarize(s.now()),
		Warning:  warning,
	}
}

// Get loads the current state. A store failure degrades to the default
// document with a warning instead of failing, so the caller stays usable.
func (s *InventoryService) Get(ctx context.Context) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadSwept(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Document load failed, serving defaults", "error", err)
		return s.view(core.DefaultDocument(int(s.now().Month())), "inventory store unreachable, showing defaults")
	}
	return s.view(doc, "")
}

// loadSwept loads the document and applies the once-per-month reset before
// anything else sees it. The sweep is persisted immediately; it is
// idempotent, so losing the save to a race is harmless.
func (s *InventoryService) loadSwept(ctx context.Context) (core.Document, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return core.Document{}, fmt.Errorf("load document: %w", err)
	}
	month := int(s.now().Month())
	changed, err := doc.MonthlyReset(month)
	if err != nil {
		return core.Document{}, fmt.Errorf("monthly reset: %w", err)
	}
	if changed {
		slog.InfoContext(ctx, "Monthly reset applied", "month", month)
		if err := s.store.Save(ctx, doc); err != nil {
			slog.WarnContext(ctx, "Failed to persist monthly reset", "error", err)
		}
	}
	return doc, nil
}

// mutate runs one model operation inside a load-edit-save cycle. A rejected
// edit leaves the store untouched.
func (s *InventoryService) mutate(ctx context.Context, op string, fn func(doc *core.Document) error) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadSwept(ctx)
	if err != nil {
		return View{}, err
	}
	if err := fn(&doc); err != nil {
		return View{}, err
	}
	if err := s.store.Save(ctx, doc); err != nil {
		return View{}, fmt.Errorf("save document: %w", err)
	}
	slog.InfoContext(ctx, "Document updated", "operation", op, "items", len(doc.Inventory))
	return s.view(doc, ""), nil
}

func (s *InventoryService) ToggleToBuy(ctx context.Context, id string) (View, error) {
	return s.mutate(ctx, "toggle_to_buy", func(doc *core.Document) error {
		return doc.ToggleToBuy(id)
	})
}

func (s *InventoryService) SetQuantity(ctx context.Context, id string, q int) (View, error) {
	return s.mutate(ctx, "set_quantity", func(doc *core.Document) error {
		return doc.SetQuantity(id, q)
	})
}

func (s *InventoryService) SetTotalPrice(ctx context.Context, id string, total int64) (View, error) {
	return s.mutate(ctx, "set_total_price", func(doc *core.Document) error {
		return doc.SetTotalPrice(id, total)
	})
}

func (s *InventoryService) CompletePurchase(ctx context.Context) (View, error) {
	return s.mutate(ctx, "complete_purchase", func(doc *core.Document) error {
		doc.CompletePurchase()
		return nil
	})
}

func (s *InventoryService) AddItem(ctx context.Context, name, realName, cat string) (View, error) {
	return s.mutate(ctx, "add_item", func(doc *core.Document) error {
		_, err := doc.AddItem(name, realName, cat)
		return err
	})
}

func (s *InventoryService) RemoveItem(ctx context.Context, id string) (View, error) {
	return s.mutate(ctx, "remove_item", func(doc *core.Document) error {
		return doc.RemoveItem(id)
	})
}

func (s *InventoryService) EditItem(ctx context.Context, id, name, realName, cat string) (View, error) {
	return s.mutate(ctx, "edit_item", func(doc *core.Document) error {
		return doc.EditItem(id, name, realName, cat)
	})
}

func (s *InventoryService) AddCategory(ctx context.Context, name string) (View, error) {
	return s.mutate(ctx, "add_category", func(doc *core.Document) error {
		return doc.AddCategory(name)
	})
}

func (s *InventoryService) RemoveCategory(ctx context.Context, name string) (View, error) {
	return s.mutate(ctx, "remove_category", func(doc *core.Document) error {
		return doc.RemoveCategory(name)
	})
}

func (s *InventoryService) UpdatePoints(ctx context.Context, points int64) (View, error) {
	return s.mutate(ctx, "update_points", func(doc *core.Document) error {
		return doc.UpdatePoints(points)
	})
}

// ImportLegacy replaces the whole document with a legacy spreadsheet export.
func (s *InventoryService) ImportLegacy(ctx context.Context, r io.Reader) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := legacycsv.Import(r, int(s.now().Month()))
	if err != nil {
		return View{}, err
	}
	if err := s.store.Save(ctx, doc); err != nil {
		return View{}, fmt.Errorf("save imported document: %w", err)
	}
	slog.InfoContext(ctx, "Legacy export imported", "items", len(doc.Inventory))
	return s.view(doc, ""), nil
}
