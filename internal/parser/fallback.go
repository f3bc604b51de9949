package parser

import (
	"fmt"
	"math"
	"regexp"

	"github.com/vsplit/vsplit/constants"
	"github.com/vsplit/vsplit/internal/entity"
)

var reNumericToken = regexp.MustCompile(`\d+(?:\.\d{1,2})?`)

// looseScan finds every numeric token in the raw text, ignoring line
// structure, and keeps values inside [min, max] up to limit entries.
func looseScan(text string, min, max float64, limit int) []float64 {
	var out []float64
	for _, tok := range reNumericToken.FindAllString(text, -1) {
		v, err := parseAmount(tok)
		if err != nil {
			continue
		}
		if v < min || v > max {
			continue
		}
		out = append(out, v)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// looseItems is the first degraded tier: when structured parsing yields too
// few items, plausible numeric tokens in [10, 2000] are promoted to generic
// items with placeholder names. IDs are assigned by the caller.
func looseItems(text string) []entity.BillItem {
	values := looseScan(text, 10, 2000, 10)
	items := make([]entity.BillItem, 0, len(values))
	for i, price := range values {
		items = append(items, entity.BillItem{
			Name:      fmt.Sprintf("Item %d", i+1),
			Quantity:  1,
			UnitPrice: price,
			LineTotal: price,
			Category:  constants.Food,
		})
	}
	return items
}

// emergencyBill is the last tier: it synthesizes a whole bill from numeric
// tokens in [20, 1000] with flat-rate tax. Returns nil when no candidate
// numbers exist, which signals total parse failure.
func emergencyBill(text string) *entity.Bill {
	values := looseScan(text, 20, 1000, 5)
	if len(values) == 0 {
		return nil
	}

	items := make([]entity.BillItem, 0, len(values))
	var subtotal float64
	for i, price := range values {
		category := constants.Food
		if i%3 == 0 {
			category = constants.Drink
		}
		items = append(items, entity.BillItem{
			ID:        i + 1,
			Name:      fmt.Sprintf("Item %d", i+1),
			Quantity:  1,
			UnitPrice: price,
			LineTotal: price,
			Category:  category,
		})
		subtotal += price
	}

	return &entity.Bill{
		RestaurantName: "Restaurant (OCR)",
		Items:          items,
		Subtotal:       subtotal,
		Tax:            math.Round(subtotal * 0.1),
		Tip:            0,
		Total:          math.Round(subtotal * 1.1),
	}
}
