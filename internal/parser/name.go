package parser

import (
	"regexp"
	"strings"
	"unicode"
)

// minNameLength disqualifies a line as an item when the residue after
// stripping prices and quantity markers is shorter than this.
const minNameLength = 2

// Price substrings are removed first, then quantity markers, then any bare
// numeric tokens left over, so a marker like "2x" does not leave a dangling
// digit in the name.
var (
	namePriceStrips = []*regexp.Regexp{
		regexp.MustCompile(`₹\s*[\d.]+`),
		regexp.MustCompile(`(?i)Rs\.?\s*[\d.]+`),
		regexp.MustCompile(`(?i)INR\s*[\d.]+`),
		regexp.MustCompile(`[\d.]+\s*₹`),
	}
	nameQtyStrips = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:qty|quantity)[:\s]*\d+`),
		regexp.MustCompile(`(?i)\b\d+\s*(?:pcs?|nos?)\b`),
		regexp.MustCompile(`(?i)\d+\s*@\s*₹?\s*\d+(?:\.\d+)?`),
		regexp.MustCompile(`(?i)\b\d+\s*x\b`),
		regexp.MustCompile(`(?i)\bx\s*\d+\b`),
	}
	reBareNumber  = regexp.MustCompile(`\b[\d.]+\b`)
	rePunctuation = regexp.MustCompile(`[^\w\s]`)
	reWhitespace  = regexp.MustCompile(`\s+`)
)

// ExtractItemName strips price and quantity tokens from a line and recovers
// a human-readable item label with each word capitalized. Returns "" when
// nothing readable remains.
func ExtractItemName(line string) string {
	name := line
	for _, re := range namePriceStrips {
		name = re.ReplaceAllString(name, "")
	}
	for _, re := range nameQtyStrips {
		name = re.ReplaceAllString(name, "")
	}
	name = reBareNumber.ReplaceAllString(name, "")
	name = rePunctuation.ReplaceAllString(name, " ")
	name = reWhitespace.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	if len(name) < minNameLength {
		return ""
	}
	return capitalizeWords(name)
}

// capitalizeWords uppercases the first letter of each word, leaving the rest
// of the word untouched.
func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
