package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/vsplit/vsplit/constants"
)

const sampleReceipt = `Sample Restaurant
Pizza Margherita 299.00
Caesar Salad 199.00
Cold Drink x1 89.00
Subtotal 587.00
Tax 59.00
Total 646.00`

func newTestParser() *Parser {
	p := New(nil)
	p.now = func() time.Time { return time.Date(2025, 9, 11, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestParseSampleReceipt(t *testing.T) {
	bill := newTestParser().Parse(sampleReceipt, 90)
	if bill == nil {
		t.Fatal("expected a bill")
	}

	if len(bill.Items) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(bill.Items), bill.Items)
	}
	wantNames := []string{"Pizza Margherita", "Caesar Salad", "Cold Drink"}
	wantTotals := []float64{299.00, 199.00, 89.00}
	for i, it := range bill.Items {
		if it.Name != wantNames[i] {
			t.Errorf("item %d name = %q, want %q", i, it.Name, wantNames[i])
		}
		if it.LineTotal != wantTotals[i] {
			t.Errorf("item %d line total = %v, want %v", i, it.LineTotal, wantTotals[i])
		}
		if it.ID != i+1 {
			t.Errorf("item %d id = %d, want %d", i, it.ID, i+1)
		}
	}
	if bill.Items[2].Category != constants.Drink {
		t.Errorf("Cold Drink category = %q, want drink", bill.Items[2].Category)
	}

	if bill.Subtotal != 587.00 || bill.Tax != 59.00 || bill.Tip != 0 || bill.Total != 646.00 {
		t.Errorf("totals = %v/%v/%v/%v, want 587/59/0/646",
			bill.Subtotal, bill.Tax, bill.Tip, bill.Total)
	}
	if bill.RestaurantName != "Sample Restaurant" {
		t.Errorf("restaurant = %q, want Sample Restaurant", bill.RestaurantName)
	}
}

func TestParseIdempotent(t *testing.T) {
	p := newTestParser()
	a := p.Parse(sampleReceipt, 90)
	b := p.Parse(sampleReceipt, 90)
	if a == nil || b == nil {
		t.Fatal("expected bills")
	}
	if len(a.Items) != len(b.Items) {
		t.Fatalf("item counts differ: %d vs %d", len(a.Items), len(b.Items))
	}
	for i := range a.Items {
		if a.Items[i] != b.Items[i] {
			t.Errorf("item %d differs: %+v vs %+v", i, a.Items[i], b.Items[i])
		}
	}
	if a.Subtotal != b.Subtotal || a.Tax != b.Tax || a.Tip != b.Tip || a.Total != b.Total {
		t.Error("totals differ between identical parses")
	}
}

func TestParseLooseFallbackTopsUp(t *testing.T) {
	// One structured item plus stray numbers in range [10, 2000]: the loose
	// tier appends synthesized items with placeholder names.
	text := "Some Cafe\nPizza 299.00\n### 45 88"
	bill := newTestParser().Parse(text, 80)
	if bill == nil {
		t.Fatal("expected a bill")
	}
	if len(bill.Items) < 2 {
		t.Fatalf("expected loose fallback to top up items, got %d", len(bill.Items))
	}
	var sawPlaceholder bool
	for _, it := range bill.Items {
		if strings.HasPrefix(it.Name, "Item ") {
			sawPlaceholder = true
		}
	}
	if !sawPlaceholder {
		t.Fatalf("expected placeholder item names, got %+v", bill.Items)
	}
	// IDs stay unique and sequential across tiers.
	for i, it := range bill.Items {
		if it.ID != i+1 {
			t.Fatalf("item ids not sequential: %+v", bill.Items)
		}
	}
}

func TestEmergencyBill(t *testing.T) {
	bill := emergencyBill("codes 450 32 980 8 1500")
	if bill == nil {
		t.Fatal("expected emergency bill")
	}
	// 8 and 1500 fall outside [20, 1000].
	if len(bill.Items) != 3 {
		t.Fatalf("expected 3 items, got %+v", bill.Items)
	}
	// Every third item is a drink, starting with the first.
	if bill.Items[0].Category != constants.Drink ||
		bill.Items[1].Category != constants.Food ||
		bill.Items[2].Category != constants.Food {
		t.Errorf("unexpected categories: %+v", bill.Items)
	}
	wantSubtotal := 450.0 + 32.0 + 980.0
	if bill.Subtotal != wantSubtotal {
		t.Errorf("subtotal = %v, want %v", bill.Subtotal, wantSubtotal)
	}
	if bill.Tax != 146 { // round(10% of 1462)
		t.Errorf("tax = %v, want 146", bill.Tax)
	}
	if bill.Total != 1608 { // round(110% of 1462)
		t.Errorf("total = %v, want 1608", bill.Total)
	}
}

func TestEmergencyBillNoNumbers(t *testing.T) {
	if bill := emergencyBill("nothing here"); bill != nil {
		t.Fatalf("expected nil, got %+v", bill)
	}
}

func TestParseNoNumbersReturnsNil(t *testing.T) {
	if bill := newTestParser().Parse("lovely dinner, no prices here", 95); bill != nil {
		t.Fatalf("expected nil bill, got %+v", bill)
	}
}

func TestParseTotalInvariant(t *testing.T) {
	texts := []string{
		sampleReceipt,
		"Cafe\nBurger 120.00\nFries 80.00\nTax 90.00\nTotal 100.00", // stated total below sum
		"#### 450 ####",
	}
	for _, text := range texts {
		bill := newTestParser().Parse(text, 75)
		if bill == nil {
			t.Fatalf("expected bill for %q", text)
		}
		if bill.Total < bill.Subtotal+bill.Tax+bill.Tip {
			t.Errorf("invariant violated for %q: total=%v subtotal=%v tax=%v tip=%v",
				text, bill.Total, bill.Subtotal, bill.Tax, bill.Tip)
		}
	}
}

func TestExplainFailure(t *testing.T) {
	if got := ExplainFailure("   ", 90); got != constants.FailureEmptyText {
		t.Errorf("got %q, want empty-text", got)
	}
	if got := ExplainFailure("garbage", 10); got != constants.FailureLowConfidence {
		t.Errorf("got %q, want low-confidence", got)
	}
	if got := ExplainFailure("garbage", 80); got != constants.FailureNoItems {
		t.Errorf("got %q, want no-items", got)
	}
}
