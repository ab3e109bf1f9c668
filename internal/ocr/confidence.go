package ocr

import (
	"regexp"
	"strings"
)

var (
	reOrderHint  = regexp.MustCompile(`(?i)order\s*#`)
	reSerialHint = regexp.MustCompile(`(?i)serial`)
	reZipHint    = regexp.MustCompile(`\b[A-Z]{2}\s+\d{5}\b`)
	reDateHint   = regexp.MustCompile(`\b\d{1,2}/\d{1,2}\b`)
)

// heuristicConfidence scores OCR text (0..100) by the bill-of-lading landmarks it contains.
func heuristicConfidence(txt string) float64 {
	score := 20.0
	if reOrderHint.MatchString(txt) {
		score += 20
	}
	if reSerialHint.MatchString(txt) {
		score += 15
	}
	if reZipHint.MatchString(txt) {
		score += 15
	}
	if reDateHint.MatchString(txt) {
		score += 10
	}
	if len(strings.Fields(txt)) >= 50 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}
