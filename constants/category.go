package constants

import "strings"

// Category classifies a bill line item for display and filtering.
type Category string

const (
	Food    Category = "food"
	Drink   Category = "drink"
	Dessert Category = "dessert"
)

var allCategories = []Category{Food, Drink, Dessert}

// drinkKeywords and dessertKeywords drive name-based categorization.
// Drink is checked before dessert; anything else is food.
var drinkKeywords = []string{
	"drink", "soda", "coke", "pepsi", "sprite", "juice", "water",
	"coffee", "tea", "beer", "wine", "cocktail", "smoothie", "shake", "lemonade",
}

var dessertKeywords = []string{
	"dessert", "cake", "ice cream", "pie", "cookie", "brownie",
	"pudding", "sundae", "parfait",
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Categorize maps an item name to a category by keyword membership.
func Categorize(name string) Category {
	lower := strings.ToLower(name)
	for _, kw := range drinkKeywords {
		if strings.Contains(lower, kw) {
			return Drink
		}
	}
	for _, kw := range dessertKeywords {
		if strings.Contains(lower, kw) {
			return Dessert
		}
	}
	return Food
}

// taxKeywords identify tax-like line items during member selection.
// Tax items are exempt from per-quantity selection caps.
var taxKeywords = []string{"tax", "gst", "cgst", "sgst", "igst", "taxes"}

// IsTaxLike reports whether an item name or category marks a tax line.
func IsTaxLike(name string, category Category) bool {
	ln := strings.ToLower(name)
	lc := strings.ToLower(string(category))
	for _, kw := range taxKeywords {
		if strings.Contains(ln, kw) || strings.Contains(lc, kw) {
			return true
		}
	}
	return false
}
