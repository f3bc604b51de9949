package parser

import (
	"testing"

	"github.com/vsplit/vsplit/constants"
)

func TestExtractItemName(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"2x Cold Drink 89.00", "Cold Drink"},
		{"Pizza Margherita 299.00", "Pizza Margherita"},
		{"Coke x3 90.00", "Coke"},
		{"Paneer Tikka ₹150.00", "Paneer Tikka"},
		{"Rs. 240.50 butter naan", "Butter Naan"},
		{"Idli 3 pcs 60.00", "Idli"},
		{"Masala Dosa 2 @ ₹80.00 160.00", "Masala Dosa"},
		{"chicken-65 (spicy) 220.00", "Chicken Spicy"},
	}
	for _, tt := range tests {
		if got := ExtractItemName(tt.line); got != tt.want {
			t.Errorf("ExtractItemName(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestExtractItemNameTooShort(t *testing.T) {
	for _, line := range []string{"299.00", "₹150", "a 12.00", ". 99.00"} {
		if got := ExtractItemName(line); got != "" {
			t.Errorf("ExtractItemName(%q) = %q, want rejection", line, got)
		}
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		want constants.Category
	}{
		{"Cold Drink", constants.Drink},
		{"Masala Tea", constants.Drink},
		{"Chocolate Cake", constants.Dessert},
		{"Ice Cream Sundae", constants.Dessert},
		{"Pizza Margherita", constants.Food},
		// Drink keywords win over dessert keywords.
		{"Milkshake Cake", constants.Drink},
	}
	for _, tt := range tests {
		if got := constants.Categorize(tt.name); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
