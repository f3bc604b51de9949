package parser

import (
	"regexp"
	"strconv"
)

// TotalKind tags which running total a keyword match feeds.
type TotalKind string

const (
	KindSubtotal TotalKind = "subtotal"
	KindTax      TotalKind = "tax"
	KindTip      TotalKind = "tip"
	KindTotal    TotalKind = "total"
)

// The four keyword families are matched independently; a single line can
// feed several kinds. Note "subtotal" also matches the total pattern — the
// assembler relies on later total lines overwriting it.
var totalRules = []struct {
	Kind TotalKind
	Re   *regexp.Regexp
}{
	{Kind: KindSubtotal, Re: regexp.MustCompile(`(?i)(?:sub\s*total|subtotal)\s*[:\-]?\s*₹?\s*([\d.]+)`)},
	{Kind: KindTax, Re: regexp.MustCompile(`(?i)(?:tax|vat|gst)\s*[:\-]?\s*₹?\s*([\d.]+)`)},
	{Kind: KindTip, Re: regexp.MustCompile(`(?i)(?:tip|service)\s*[:\-]?\s*₹?\s*([\d.]+)`)},
	{Kind: KindTotal, Re: regexp.MustCompile(`(?i)(?:total|grand\s*total)\s*[:\-]?\s*₹?\s*([\d.]+)`)},
}

// ExtractTotals applies the totals keyword patterns to one line and invokes
// emit for every non-negative value found. Callers accumulate with
// last-write-wins semantics across the whole document.
func ExtractTotals(line string, emit func(kind TotalKind, value float64)) {
	for _, rule := range totalRules {
		m := rule.Re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v < 0 {
			continue
		}
		emit(rule.Kind, v)
	}
}
