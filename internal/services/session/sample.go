package session

import (
	"time"

	"github.com/vsplit/vsplit/constants"
	"github.com/vsplit/vsplit/internal/entity"
)

// SampleBill is the built-in demo bill, offered when a scan fails or when a
// client wants to explore the flow without a receipt.
func SampleBill() *entity.Bill {
	return &entity.Bill{
		RestaurantName: "Sample Restaurant",
		Date:           time.Now().UTC().Format("2006-01-02"),
		BillNumber:     "SAMPLE-001",
		Items: []entity.BillItem{
			{ID: 1, Name: "Paneer Butter Masala", Quantity: 1, UnitPrice: 280, LineTotal: 280, Category: constants.Food},
			{ID: 2, Name: "Garlic Naan", Quantity: 4, UnitPrice: 60, LineTotal: 240, Category: constants.Food},
			{ID: 3, Name: "Masala Chai", Quantity: 2, UnitPrice: 40, LineTotal: 80, Category: constants.Drink},
			{ID: 4, Name: "Gulab Jamun", Quantity: 1, UnitPrice: 90, LineTotal: 90, Category: constants.Dessert},
		},
		Subtotal: 690,
		Tax:      34.5,
		Tip:      0,
		Total:    724.5,
	}
}
