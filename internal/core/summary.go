package core

import "time"

// ShoppingDay is the day of the month when points are worth 1.5x.
const ShoppingDay = 20

// Summary carries the derived budget numbers for the current session.
// Never persisted; recomputed after every edit.
type Summary struct {
	Points          int64 `json:"points"`
	Limit           int64 `json:"limit"`
	TotalSpent      int64 `json:"total_spent"`
	Remaining       int64 `json:"remaining"`
	BuyCount        int   `json:"buy_count"`
	DaysToPointsDay int   `json:"days_to_points_day"`
}

// Limit is the purchase limit: floor(points × 1.5).
func (d Document) Limit() int64 {
	return d.Points * 3 / 2
}

// TotalSpent folds over the buy list: the session total when one is set,
// otherwise last unit price × quantity.
func (d Document) TotalSpent() int64 {
	var total int64
	for _, it := range d.Inventory {
		if !it.ToBuy {
			continue
		}
		if it.CurrentPrice != nil {
			total += *it.CurrentPrice
		} else {
			total += it.LastPrice * int64(it.Quantity)
		}
	}
	return total
}

// BuyList returns the items currently marked to buy, in document order.
func (d Document) BuyList() []Item {
	var out []Item
	for _, it := range d.Inventory {
		if it.ToBuy {
			out = append(out, it)
		}
	}
	return out
}

// Summarize computes the full budget summary as of now.
// Remaining may go negative when the buy list exceeds the limit.
func (d Document) Summarize(now time.Time) Summary {
	limit := d.Limit()
	spent := d.TotalSpent()
	return Summary{
		Points:          d.Points,
		Limit:           limit,
		TotalSpent:      spent,
		Remaining:       limit - spent,
		BuyCount:        len(d.BuyList()),
		DaysToPointsDay: DaysToPointsDay(now),
	}
}

// DaysToPointsDay counts the days until the 20th of the current month,
// zero on the day itself and after it has passed.
func DaysToPointsDay(now time.Time) int {
	if now.Day() >= ShoppingDay {
		return 0
	}
	return ShoppingDay - now.Day()
}
