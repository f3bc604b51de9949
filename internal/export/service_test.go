package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/vsplit/vsplit/constants"
	"github.com/vsplit/vsplit/internal/entity"
	"github.com/vsplit/vsplit/internal/split"
)

func TestSettlementXLSX(t *testing.T) {
	session := &entity.Session{
		ID: "ABCD2345",
		Bill: &entity.Bill{
			RestaurantName: "Cafe Madras",
			Items: []entity.BillItem{
				{ID: 1, Name: "Masala Dosa", Quantity: 1, UnitPrice: 120, LineTotal: 120, Category: constants.Food},
				{ID: 2, Name: "Filter Coffee", Quantity: 1, UnitPrice: 40, LineTotal: 40, Category: constants.Drink},
			},
			Subtotal: 160, Tax: 16, Total: 176,
		},
		Members: []entity.Member{
			{ID: "a", Name: "Asha", PaymentStatus: constants.PaymentPaid},
			{ID: "b", Name: "Ravi", PaymentStatus: constants.PaymentPending},
		},
		Selections: map[string][]int{"a": {1, 2}, "b": {1}},
	}
	alloc := split.Compute(session)

	out, err := NewService(nil).SettlementXLSX(session, alloc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Settlement")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) < 3 {
		t.Fatalf("want header plus 2 member rows, got %d rows", len(rows))
	}
	if rows[0][0] != "Member" || rows[0][5] != "Total Owed" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "Asha" || rows[2][0] != "Ravi" {
		t.Fatalf("member rows out of order: %v / %v", rows[1], rows[2])
	}
	if rows[1][6] != "paid" || rows[2][6] != "pending" {
		t.Fatalf("payment status column wrong: %v / %v", rows[1], rows[2])
	}
}
