package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// priceRule is one pattern family for currency-formatted amounts on a line.
// Families are applied in order; Token rules match whole whitespace-separated
// tokens instead of scanning the line, which keeps the bare-number catch-all
// bounded by whitespace and line edges.
type priceRule struct {
	Tag   string
	Re    *regexp.Regexp
	Token bool
}

var priceRules = []priceRule{
	{Tag: "symbol-prefix", Re: regexp.MustCompile(`₹\s*(\d+(?:\.\d{1,2})?)`)},
	{Tag: "rs-prefix", Re: regexp.MustCompile(`(?i)Rs\.?\s*(\d+(?:\.\d{1,2})?)`)},
	{Tag: "inr-prefix", Re: regexp.MustCompile(`(?i)INR\s*(\d+(?:\.\d{1,2})?)`)},
	{Tag: "symbol-suffix", Re: regexp.MustCompile(`(\d+(?:\.\d{1,2})?)\s*₹`)},
	{Tag: "bare-number", Re: regexp.MustCompile(`^(\d{2,4}(?:\.\d{1,2})?)$`), Token: true},
}

// ExtractPrices scans one line for currency-formatted amounts using the
// ordered pattern families and returns the distinct positive candidates in
// first-seen order. It never fails; an unparseable line yields nil.
func ExtractPrices(line string) []float64 {
	var prices []float64
	seen := make(map[float64]struct{})

	add := func(raw string) {
		v, err := strconv.ParseFloat(stripNonNumeric(raw), 64)
		if err != nil || v <= 0 {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		prices = append(prices, v)
	}

	for _, rule := range priceRules {
		if rule.Token {
			for _, tok := range strings.Fields(line) {
				if m := rule.Re.FindStringSubmatch(tok); m != nil {
					add(m[1])
				}
			}
			continue
		}
		for _, m := range rule.Re.FindAllStringSubmatch(line, -1) {
			add(m[1])
		}
	}
	return prices
}

// maxPrice picks the charged amount from a line's candidates. The largest
// number on an item line is empirically the line total rather than a
// quantity or code; this tie-break is kept as-is even though it can misfire
// on lines with several real multi-digit numbers.
func maxPrice(prices []float64) float64 {
	var max float64
	for _, p := range prices {
		if p > max {
			max = p
		}
	}
	return max
}

var reNonNumeric = regexp.MustCompile(`[^\d.]`)

func stripNonNumeric(s string) string {
	return reNonNumeric.ReplaceAllString(s, "")
}
