package core

import "strings"

// Model operations. Each one mutates the document in place and returns a
// domain error on rejection; on error the document is left untouched.

// ToggleToBuy flips the buy flag. Turning the flag off discards the session
// price and resets the quantity; the durable last price is kept as the
// anchor for the next session.
func (d *Document) ToggleToBuy(id string) error {
	it, err := d.Find(id)
	if err != nil {
		return err
	}
	it.ToBuy = !it.ToBuy
	if !it.ToBuy {
		it.CurrentPrice = nil
		it.Quantity = 1
	}
	return nil
}

// SetQuantity changes the quantity while preserving the unit price the user
// has been viewing: the previous session total (or, when unset, the durable
// unit price taken over the previous quantity) is divided back to a unit
// price and re-multiplied.
func (d *Document) SetQuantity(id string, q int) error {
	if q < 1 {
		return ErrInvalidQuantity
	}
	it, err := d.Find(id)
	if err != nil {
		return err
	}
	base := it.LastPrice
	if it.CurrentPrice != nil {
		base = *it.CurrentPrice
	}
	unit := base / int64(it.Quantity)
	total := unit * int64(q)
	it.Quantity = q
	it.CurrentPrice = &total
	it.ToBuy = true
	return nil
}

// SetTotalPrice overrides the session total directly. Quantity is untouched.
func (d *Document) SetTotalPrice(id string, total int64) error {
	if total < 0 {
		return ErrInvalidPrice
	}
	it, err := d.Find(id)
	if err != nil {
		return err
	}
	it.CurrentPrice = &total
	it.ToBuy = true
	return nil
}

// CompletePurchase commits the session back into durable state: every item
// on the buy list gets its last price rewritten from the session total
// (divided back to a unit price), then all session fields are cleared.
// Items not on the buy list are never altered.
func (d *Document) CompletePurchase() {
	for i := range d.Inventory {
		it := &d.Inventory[i]
		if !it.ToBuy {
			continue
		}
		if it.CurrentPrice != nil {
			it.LastPrice = *it.CurrentPrice / int64(it.Quantity)
		}
		it.ToBuy = false
		it.CurrentPrice = nil
		it.Quantity = 1
	}
}

// AddItem appends a new at-rest item. The category must already exist.
func (d *Document) AddItem(name, realName, cat string) (Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, ErrEmptyName
	}
	if !d.HasCategory(cat) {
		return Item{}, ErrUnknownCategory
	}
	it := NewItem(name, strings.TrimSpace(realName), cat)
	d.Inventory = append(d.Inventory, it)
	return it, nil
}

// RemoveItem deletes an item outright. No cascading effects.
func (d *Document) RemoveItem(id string) error {
	for idx := range d.Inventory {
		if d.Inventory[idx].ID == id {
			d.Inventory = append(d.Inventory[:idx], d.Inventory[idx+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

// EditItem renames an item and/or moves it to another existing category.
func (d *Document) EditItem(id, name, realName, cat string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if !d.HasCategory(cat) {
		return ErrUnknownCategory
	}
	it, err := d.Find(id)
	if err != nil {
		return err
	}
	it.Name = name
	it.RealName = strings.TrimSpace(realName)
	it.Cat = cat
	return nil
}

// AddCategory appends a new category name.
func (d *Document) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if d.HasCategory(name) {
		return ErrDuplicateCategory
	}
	d.Categories = append(d.Categories, name)
	return nil
}

// RemoveCategory deletes a category. Rejected while any item references it,
// leaving the document unchanged.
func (d *Document) RemoveCategory(name string) error {
	for _, it := range d.Inventory {
		if it.Cat == name {
			return ErrCategoryInUse
		}
	}
	for idx, c := range d.Categories {
		if c == name {
			d.Categories = append(d.Categories[:idx], d.Categories[idx+1:]...)
			return nil
		}
	}
	return ErrUnknownCategory
}

// UpdatePoints replaces the stored points balance.
func (d *Document) UpdatePoints(points int64) error {
	if points < 0 {
		return ErrInvalidPoints
	}
	d.Points = points
	return nil
}

// MonthlyReset clears all in-progress purchase state once per calendar
// month. Idempotent: calling it again within the same month is a no-op.
// Returns true when a sweep actually ran.
func (d *Document) MonthlyReset(currentMonth int) (bool, error) {
	if currentMonth < 1 || currentMonth > 12 {
		return false, ErrInvalidMonth
	}
	if d.LastMonth == currentMonth {
		return false, nil
	}
	for i := range d.Inventory {
		it := &d.Inventory[i]
		it.ToBuy = false
		it.CurrentPrice = nil
		it.Quantity = 1
	}
	d.LastMonth = currentMonth
	return true, nil
}
