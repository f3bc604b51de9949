package constants

// PaymentStatus is the canonical per-member payment state.
type PaymentStatus string

// Stable values (store these exact strings in session documents).
const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// ParseFailure tags why a parse attempt produced no bill.
type ParseFailure string

const (
	FailureEmptyText     ParseFailure = "EMPTY_TEXT"     // OCR returned no usable text
	FailureLowConfidence ParseFailure = "LOW_CONFIDENCE" // confidence < 30 and nothing recovered
	FailureNoItems       ParseFailure = "NO_ITEMS"       // text present but no items or numbers found
)
