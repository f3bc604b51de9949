package parser

import (
	"regexp"
	"strconv"
)

// Quantity conventions seen on receipts, in priority order. The first rule
// that matches wins: an explicit qty keyword beats an x-multiplier, which
// beats a pcs/nos unit, which beats a bare integer preceding a decimal price.
var quantityRules = []struct {
	Tag string
	Re  *regexp.Regexp
}{
	{Tag: "qty-keyword", Re: regexp.MustCompile(`(?i)(?:qty|quantity)[\s:]*([0-9]+)`)},
	{Tag: "x-multiplier", Re: regexp.MustCompile(`(?i)x\s?([0-9]+)`)},
	{Tag: "pcs-unit", Re: regexp.MustCompile(`(?i)([0-9]+)\s*(?:pcs?|nos?)`)},
	{Tag: "leading-integer", Re: regexp.MustCompile(`([0-9]+)\s+[0-9]+\.[0-9]{2}`)},
}

// ResolveQuantity infers the unit count from a line's competing textual
// conventions. Defaults to 1 when no convention matches or the matched value
// is not a positive integer.
func ResolveQuantity(line string) int {
	for _, rule := range quantityRules {
		m := rule.Re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		qty, err := strconv.Atoi(m[1])
		if err != nil || qty < 1 {
			return 1
		}
		return qty
	}
	return 1
}
