package core

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

type (
	// Item is one tracked household product. Prices are integer points:
	// LastPrice is the durable unit price recorded at the last purchase,
	// CurrentPrice is the transient session TOTAL (unit × quantity) while
	// the item sits on the buy list.
	Item struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		RealName     string `json:"real_name,omitempty"`
		Cat          string `json:"cat"`
		ToBuy        bool   `json:"to_buy"`
		LastPrice    int64  `json:"last_price"`
		CurrentPrice *int64 `json:"current_price,omitempty"`
		Quantity     int    `json:"quantity"`
	}

	// Document is the root aggregate and the unit of persistence: the whole
	// document is read and rewritten on every change.
	Document struct {
		Inventory  []Item   `json:"inventory"`
		Categories []string `json:"categories"`
		Points     int64    `json:"points"`
		LastMonth  int      `json:"last_month"`
	}
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrCategoryInUse     = errors.New("category still referenced by items")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInvalidPrice      = errors.New("price must be zero or positive")
	ErrInvalidPoints     = errors.New("points must be zero or positive")
	ErrEmptyName         = errors.New("empty item name")
	ErrInvalidMonth      = errors.New("month must be between 1 and 12")
)

// NewItem creates an at-rest item with a fresh stable identifier.
func NewItem(name, realName, cat string) Item {
	return Item{
		ID:       uuid.NewString(),
		Name:     name,
		RealName: realName,
		Cat:      cat,
		Quantity: 1,
	}
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if i.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if i.LastPrice < 0 {
		return ErrInvalidPrice
	}
	if i.CurrentPrice != nil && *i.CurrentPrice < 0 {
		return ErrInvalidPrice
	}
	// Session fields only carry state while the item is on the buy list.
	if !i.ToBuy && (i.CurrentPrice != nil || i.Quantity != 1) {
		return errors.New("session fields set on an at-rest item")
	}
	return nil
}

// DisplayName returns the name shown to the user, preferring the real
// product name when one is recorded.
func (i Item) DisplayName() string {
	if i.RealName != "" {
		return i.RealName
	}
	return i.Name
}

func (d Document) Validate() error {
	cats := make(map[string]struct{}, len(d.Categories))
	for _, c := range d.Categories {
		if strings.TrimSpace(c) == "" {
			return errors.New("empty category name")
		}
		if _, ok := cats[c]; ok {
			return ErrDuplicateCategory
		}
		cats[c] = struct{}{}
	}
	for _, it := range d.Inventory {
		if err := it.Validate(); err != nil {
			return err
		}
		if _, ok := cats[it.Cat]; !ok {
			return ErrUnknownCategory
		}
	}
	if d.Points < 0 {
		return ErrInvalidPoints
	}
	if d.LastMonth < 1 || d.LastMonth > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// HasCategory reports whether name is part of the document's category set.
func (d Document) HasCategory(name string) bool {
	for _, c := range d.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Find returns a pointer into the inventory slice for the given item ID.
func (d *Document) Find(id string) (*Item, error) {
	for idx := range d.Inventory {
		if d.Inventory[idx].ID == id {
			return &d.Inventory[idx], nil
		}
	}
	return nil, ErrItemNotFound
}

// Clone returns a deep copy so callers can hand the document across
// goroutine or cache boundaries without sharing slices.
func (d Document) Clone() Document {
	out := d
	out.Inventory = make([]Item, len(d.Inventory))
	for i, it := range d.Inventory {
		if it.CurrentPrice != nil {
			p := *it.CurrentPrice
			it.CurrentPrice = &p
		}
		out.Inventory[i] = it
	}
	out.Categories = append([]string(nil), d.Categories...)
	return out
}

// Normalize repairs out-of-range fields on documents loaded from outside
// (hand-edited files, legacy exports) instead of rejecting them.
func (d *Document) Normalize(currentMonth int) {
	for i := range d.Inventory {
		it := &d.Inventory[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		if it.LastPrice < 0 {
			it.LastPrice = 0
		}
		if it.CurrentPrice != nil && *it.CurrentPrice < 0 {
			it.CurrentPrice = nil
		}
		if !it.ToBuy {
			it.CurrentPrice = nil
			it.Quantity = 1
		}
		if !d.HasCategory(it.Cat) {
			d.Categories = append(d.Categories, it.Cat)
		}
	}
	if d.Points < 0 {
		d.Points = 0
	}
	if d.LastMonth < 1 || d.LastMonth > 12 {
		d.LastMonth = currentMonth
	}
}

// DefaultDocument is the hard-coded seed used when the remote file is
// missing or unreadable. Household staples grouped by room.
func DefaultDocument(currentMonth int) Document {
	seed := []struct{ name, cat string }{
		{"Laundry detergent", "Laundry"},
		{"Fabric softener", "Laundry"},
		{"Dish soap", "Kitchen"},
		{"Dishwasher tablets", "Kitchen"},
		{"Bath cleaner", "Bath"},
		{"Shampoo", "Bath"},
		{"Toilet paper", "Toilet"},
		{"Tissues", "Living"},
		{"Diapers", "Consumables"},
	}
	doc := Document{
		Categories: []string{"Laundry", "Kitchen", "Bath", "Toilet", "Living", "Consumables"},
		LastMonth:  currentMonth,
	}
	for _, s := range seed {
		doc.Inventory = append(doc.Inventory, NewItem(s.name, "", s.cat))
	}
	return doc
}
