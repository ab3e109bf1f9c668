package extract

import (
	"regexp"
	"strings"
)

var (
	reOriginBlock  = regexp.MustCompile(`(?s)DESTINATION:\s+(.*?)\s+Asset`)
	reCityStateZip = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*),?\s+([A-Z]{2})\s+(\d{5}(?:-\d{4})?)\b`)
	reFirstDigit   = regexp.MustCompile(`\d`)
)

type originParty struct {
	Company string
	Address string
	Suite   string
	City    string
	State   string
	Zip     string
}

// parseOrigin reads the pickup party out of the two-column ORIGIN/DESTINATION header. The
// text layer flattens both columns into the segment between "DESTINATION:" and "Asset"; the
// origin party comes first and ends at its city/state/zip, the destination party follows.
// Sub-patterns only ever see that origin slice so destination and billing addresses are
// never picked up.
func (e *Extractor) parseOrigin(text string) (originParty, bool) {
	m := reOriginBlock.FindStringSubmatch(text)
	if m == nil {
		return originParty{}, false
	}
	block := m[1]

	var out originParty
	origin := block
	if loc := reCityStateZip.FindStringSubmatchIndex(block); loc != nil {
		origin = block[:loc[1]]
		out.City = strings.TrimSpace(block[loc[2]:loc[3]])
		out.State = block[loc[4]:loc[5]]
		out.Zip = block[loc[6]:loc[7]]
	}

	lead := origin
	if idx := reFirstDigit.FindStringIndex(origin); idx != nil {
		lead = origin[:idx[0]]
	}
	out.Company, _ = e.lib.ExtractField(strings.TrimSpace(lead), e.lib.OriginCompany, false)
	out.Address, _ = e.lib.ExtractField(origin, e.lib.OriginAddress, false)
	out.Suite, _ = e.lib.ExtractField(origin, e.lib.OriginSuite, false)

	// Street words ahead of the city ("Main Street Salt Lake City") belong to the address.
	if out.Address != "" {
		if i := strings.Index(origin, out.Address); i >= 0 {
			rest := origin[i+len(out.Address):]
			if m := reCityStateZip.FindStringSubmatch(rest); m != nil {
				out.City = strings.TrimSpace(m[1])
			}
		}
	}
	return out, true
}
