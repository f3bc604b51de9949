package entity

import "github.com/vsplit/vsplit/constants"

// BillItem is one purchased line recovered from receipt text.
// LineTotal is the independently extracted charged amount; it is close to,
// but not always exactly, UnitPrice * Quantity.
type BillItem struct {
	ID        int                `json:"id"`
	Name      string             `json:"name"`
	Quantity  int                `json:"qty"`
	UnitPrice float64            `json:"unitPrice"`
	LineTotal float64            `json:"price"`
	Category  constants.Category `json:"category"`
}

// Bill is the structured representation of a parsed receipt.
// It is produced once per parse attempt and replaced wholesale on re-upload.
type Bill struct {
	RestaurantName string     `json:"restaurant"`
	Date           string     `json:"date"` // YYYY-MM-DD
	BillNumber     string     `json:"billNumber"`
	Items          []BillItem `json:"items"`
	Subtotal       float64    `json:"subtotal"`
	Tax            float64    `json:"tax"`
	Tip            float64    `json:"tip"`
	Total          float64    `json:"total"`
}

// RawOCRResult is the OCR collaborator's output: noisy multi-line text and
// a confidence score in [0,100].
type RawOCRResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}
