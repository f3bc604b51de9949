package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`)
	reCurr   = regexp.MustCompile(`\binr\b|\brs\.?\s|[₹]`)
	reAmount = regexp.MustCompile(`\b\d{1,3}(,\d{3})*(\.\d{2})\b|\b\d+\.\d{2}\b`)
)

// heuristicConfidence scores recognized text 0..100 from receipt artifacts:
// date-ish, currency-ish, and amount-ish tokens each add weight.
func heuristicConfidence(txt string) float64 {
	txtL := strings.ToLower(txt)
	score := 20.0 // base
	if reDate.MatchString(txtL) {
		score += 20
	}
	if reCurr.MatchString(txtL) {
		score += 15
	}
	if reAmount.MatchString(txtL) {
		score += 15
	}
	if len(txt) > 120 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}
