package mapping

import (
	"regexp"
	"strings"
)

var (
	reNonZip   = regexp.MustCompile(`[^\d-]`)
	reNonDigit = regexp.MustCompile(`\D`)
)

// Normalize returns a formatted copy for submission. Applying it twice gives the same result
// as applying it once.
func Normalize(rec *JobRecord) *JobRecord {
	out := rec.Clone()
	for _, p := range out.fields() {
		*p = strings.TrimSpace(*p)
	}
	out.Zip = reNonZip.ReplaceAllString(out.Zip, "")
	out.Phone = normalizePhone(out.Phone)
	out.StateID = strings.ToUpper(out.StateID)
	return out
}

// normalizePhone keeps digits only and formats the first ten as NNN-NNN-NNNN; a leading US
// country code is dropped and any further digits are kept as-is.
func normalizePhone(phone string) string {
	digits := reNonDigit.ReplaceAllString(phone, "")
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) < 10 {
		return digits
	}
	return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
}
