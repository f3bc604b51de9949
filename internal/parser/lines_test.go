package parser

import "testing"

func TestIsNonItemLineSkips(t *testing.T) {
	skip := []string{
		"subtotal: 500",
		"total 646.00",
		"tax 59.00",
		"thank you, visit again",
		"cashier: ravi",
		"date: 12/09/2025",
		"phone: 98765 43210",
		"cash tendered 700",
		"----------------",
		"====",
		"12:45",
		"9/11",
		"ab",
	}
	for _, line := range skip {
		if !IsNonItemLine(line) {
			t.Errorf("expected skip for %q", line)
		}
	}
}

func TestIsNonItemLineKeepsItems(t *testing.T) {
	keep := []string{
		"pizza margherita 299.00",
		"caesar salad 199.00",
		"cold drink x1 89.00",
		"paneer butter masala ₹240",
	}
	for _, line := range keep {
		if IsNonItemLine(line) {
			t.Errorf("expected not-skip for %q", line)
		}
	}
}
