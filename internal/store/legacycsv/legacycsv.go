// Package legacycsv imports the tabular spreadsheet-export variant of the
// inventory: named columns, TRUE/FALSE boolean literals, loose typing.
// Read-only: there is no export back to this format.
package legacycsv

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"pantry/internal/core"
)

// row mirrors one spreadsheet line. Prices arrive as plain integers,
// stock as the literal strings "TRUE"/"FALSE".
type row struct {
	Name       string `csv:"name"`
	Cat        string `csv:"cat"`
	Stock      string `csv:"stock"`
	Price      int64  `csv:"price"`
	LastBought string `csv:"date"`
}

// Import parses a legacy export into a document. Rows without a name are
// skipped; an in-stock item is at rest, an out-of-stock one lands on the
// buy list. The result is normalized, never rejected.
func Import(r io.Reader, currentMonth int) (core.Document, error) {
	var rows []row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return core.Document{}, fmt.Errorf("parse legacy export: %w", err)
	}
	if len(rows) == 0 {
		return core.Document{}, fmt.Errorf("legacy export has no rows")
	}

	doc := core.Document{LastMonth: currentMonth}
	for _, rw := range rows {
		name := strings.TrimSpace(rw.Name)
		if name == "" {
			continue
		}
		cat := strings.TrimSpace(rw.Cat)
		if cat == "" {
			cat = "Uncategorized"
		}
		if !doc.HasCategory(cat) {
			doc.Categories = append(doc.Categories, cat)
		}
		it := core.NewItem(name, "", cat)
		it.LastPrice = rw.Price
		it.ToBuy = !parseBool(rw.Stock)
		doc.Inventory = append(doc.Inventory, it)
	}
	doc.Normalize(currentMonth)
	return doc, nil
}

// parseBool accepts the spreadsheet literals. Anything unrecognized counts
// as in stock, the conservative reading.
func parseBool(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FALSE", "0", "NO":
		return false
	default:
		return true
	}
}
