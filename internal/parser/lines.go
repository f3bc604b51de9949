package parser

import "regexp"

// skipRule marks a line as non-item by prefix or structure. The table is
// matched against the lowercased trimmed line before any price extraction.
type skipRule struct {
	Tag string
	Re  *regexp.Regexp
}

var skipRules = []skipRule{
	{Tag: "greeting", Re: regexp.MustCompile(`^(thank you|thanks|welcome|visit again)`)},
	{Tag: "staff", Re: regexp.MustCompile(`^(cashier|server|table|order)`)},
	{Tag: "header", Re: regexp.MustCompile(`^(date|time|bill|receipt|invoice)`)},
	{Tag: "contact", Re: regexp.MustCompile(`^(address|phone|email|website)`)},
	{Tag: "subtotal", Re: regexp.MustCompile(`^(subtotal|sub total|total|grand total)`)},
	{Tag: "tax", Re: regexp.MustCompile(`^(tax|vat|gst|service|tip)`)},
	{Tag: "payment", Re: regexp.MustCompile(`^(cash|card|payment|change)`)},
	{Tag: "separator", Re: regexp.MustCompile(`^[-=*_#]{3,}`)},
	{Tag: "bare-time", Re: regexp.MustCompile(`^\d{1,2}:\d{2}`)},
	{Tag: "bare-date", Re: regexp.MustCompile(`^\d{1,2}/\d{1,2}`)},
}

// IsNonItemLine reports whether a lowercased trimmed line should be rejected
// as an item candidate. Lines shorter than 3 characters never carry an item.
func IsNonItemLine(lowerLine string) bool {
	if len(lowerLine) < 3 {
		return true
	}
	for _, rule := range skipRules {
		if rule.Re.MatchString(lowerLine) {
			return true
		}
	}
	return false
}
