package parser

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vsplit/vsplit/constants"
	"github.com/vsplit/vsplit/internal/entity"
)

// Line total bounds for a plausible single item.
const (
	minItemPrice = 1
	maxItemPrice = 10000
)

// minStructuredItems is the threshold below which the loose fallback tier
// tops up the structured result.
const minStructuredItems = 2

var (
	reLineSplit  = regexp.MustCompile(`\r?\n`)
	reHasDigit   = regexp.MustCompile(`\d`)
	reBillNumber = regexp.MustCompile(`(?i)(?:bill|receipt|invoice)\s*(?:no|number|#)\s*[:\-]?\s*([A-Za-z0-9\-]+)`)
)

// Parser recovers a structured bill from raw OCR text. It is pure
// computation over its inputs; the clock is injectable so bill-number
// placeholders are stable in tests.
type Parser struct {
	logger *slog.Logger
	now    func() time.Time
}

func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger, now: time.Now}
}

// Parse turns raw OCR text plus a confidence score in [0,100] into a bill.
// It never panics outward; any internal failure degrades through the
// fallback tiers. Returns nil only when every tier is exhausted.
func (p *Parser) Parse(text string, confidence float64) (bill *entity.Bill) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("parser.recovered", "panic", r)
			bill = p.finishEmergency(text)
		}
	}()

	bill = p.parseStructured(text)
	if bill == nil {
		bill = p.finishEmergency(text)
	}
	if bill == nil {
		p.logger.Warn("parser.exhausted", "confidence", confidence, "text_bytes", len(text))
		return nil
	}
	p.logger.Info("parser.ok",
		"items", len(bill.Items),
		"subtotal", bill.Subtotal,
		"total", bill.Total,
		"confidence", confidence,
	)
	return bill
}

// ExplainFailure classifies why parsing produced no bill, for user-facing
// error messages.
func ExplainFailure(text string, confidence float64) constants.ParseFailure {
	if strings.TrimSpace(text) == "" {
		return constants.FailureEmptyText
	}
	if confidence < 30 {
		return constants.FailureLowConfidence
	}
	return constants.FailureNoItems
}

// parseStructured drives the per-line pipeline: classify, extract prices,
// resolve quantity, normalize the name, and accumulate totals; then
// reconciles missing totals and tops up from the loose tier when needed.
func (p *Parser) parseStructured(text string) *entity.Bill {
	var lines []string
	for _, ln := range reLineSplit.Split(text, -1) {
		if len(strings.TrimSpace(ln)) > 1 {
			lines = append(lines, ln)
		}
	}

	var items []entity.BillItem
	var subtotal, tax, tip, total float64
	itemID := 1

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		lowerLine := strings.ToLower(line)

		// Totals are captured independently of item parsing: the keyword
		// lines that carry them are exactly the ones the classifier skips.
		ExtractTotals(line, func(kind TotalKind, value float64) {
			switch kind {
			case KindSubtotal:
				subtotal = value
			case KindTax:
				tax = value
			case KindTip:
				tip = value
			case KindTotal:
				total = value
			}
		})

		if IsNonItemLine(lowerLine) {
			continue
		}

		prices := ExtractPrices(line)
		if len(prices) == 0 {
			continue
		}
		linePrice := maxPrice(prices)
		if linePrice <= minItemPrice || linePrice > maxItemPrice {
			continue
		}

		qty := ResolveQuantity(line)
		name := ExtractItemName(line)
		if name == "" {
			continue
		}

		items = append(items, entity.BillItem{
			ID:        itemID,
			Name:      name,
			Quantity:  qty,
			UnitPrice: round2(linePrice / float64(qty)),
			LineTotal: round2(linePrice),
			Category:  constants.Categorize(name),
		})
		itemID++
	}

	// Reconcile: too few structured items means the loose tier tops up the
	// result with synthesized generic items.
	if len(items) < minStructuredItems {
		p.logger.Debug("parser.fallback.loose", "structured_items", len(items))
		for _, it := range looseItems(text) {
			it.ID = itemID
			itemID++
			items = append(items, it)
		}
	}
	if subtotal == 0 && len(items) > 0 {
		for _, it := range items {
			subtotal += it.UnitPrice * float64(it.Quantity)
		}
	}
	if total == 0 {
		total = subtotal + tax + tip
	}

	if len(items) == 0 {
		return nil
	}

	return &entity.Bill{
		RestaurantName: p.restaurantName(text),
		Date:           p.now().UTC().Format("2006-01-02"),
		BillNumber:     p.billNumber(text, "OCR"),
		Items:          items,
		Subtotal:       math.Max(subtotal, 0),
		Tax:            math.Max(tax, 0),
		Tip:            math.Max(tip, 0),
		Total:          math.Max(total, math.Max(subtotal, 0)+math.Max(tax, 0)+math.Max(tip, 0)),
	}
}

// finishEmergency runs the last fallback tier and stamps the synthesized
// bill with date and a placeholder bill number.
func (p *Parser) finishEmergency(text string) *entity.Bill {
	bill := emergencyBill(text)
	if bill == nil {
		return nil
	}
	p.logger.Warn("parser.fallback.emergency", "items", len(bill.Items))
	bill.Date = p.now().UTC().Format("2006-01-02")
	bill.BillNumber = fmt.Sprintf("OCR-EMERGENCY-%d", p.now().UnixMilli())
	// Independent rounding of tax and total can undershoot the sum.
	bill.Total = math.Max(bill.Total, bill.Subtotal+bill.Tax+bill.Tip)
	return bill
}

// restaurantName is best-effort: the first of the first five lines that
// looks like a venue name rather than an address, number, or header.
func (p *Parser) restaurantName(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, ln := range lines {
		trimmed := strings.TrimSpace(ln)
		if len(trimmed) > 3 && len(trimmed) < 50 &&
			!reHasDigit.MatchString(trimmed) &&
			!strings.Contains(strings.ToLower(trimmed), "bill") {
			return trimmed
		}
	}
	return "Restaurant"
}

func (p *Parser) billNumber(text, prefix string) string {
	if m := reBillNumber.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return fmt.Sprintf("%s-%d", prefix, p.now().UnixMilli())
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
