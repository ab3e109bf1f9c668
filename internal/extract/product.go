package extract

import (
	"regexp"
	"strings"
)

// Brand followed by model words, terminated by the serial number on the asset line.
var reAssetProduct = regexp.MustCompile(
	`(?is)Asset\s+Serial\s+Number.*?\b(Konica|Canon|Ricoh|HP|Xerox|Sharp|Kyocera|Lexmark|Toshiba|Brother)\s+([A-Za-z0-9 ]+?)\s+[A-Z]{3}\d`)

func extractProduct(text string) string {
	m := reAssetProduct.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1] + " " + strings.TrimSpace(m[2]))
}
