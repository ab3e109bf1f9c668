package constants

import (
	"strings"
)

// ClientType is the customer family a document belongs to, detected from keywords.
type ClientType string

const (
	ClientPacific ClientType = "PACIFIC"
	ClientTTR     ClientType = "TTR"
	ClientValley  ClientType = "VALLEY"
	ClientCanon   ClientType = "CANON"
	ClientRicoh   ClientType = "RICOH"
	ClientGeneric ClientType = "GENERIC"
)

// ClientPriority is the detection order; the first category with a keyword hit wins.
var ClientPriority = []ClientType{
	ClientPacific,
	ClientTTR,
	ClientValley,
	ClientCanon,
	ClientRicoh,
}

// Client codes accepted by the record store's _kf_client_code_id field.
const (
	ClientCodeTTRUtah     = "TTR-u"
	ClientCodeTTRMountain = "TTR-m"
	ClientCodeValley      = "VALLEY"
	ClientCodeCanon       = "CANON"
	ClientCodeRicoh       = "RICOH"
	ClientCodeWBT         = "WBT"
)

// clientCodeKeywords is checked in order; the record store has no lookup layout for codes.
var clientCodeKeywords = []struct {
	code     string
	keywords []string
}{
	{ClientCodeTTRUtah, []string{"ttr", "transport", "utah"}},
	{ClientCodeTTRMountain, []string{"mountain", "montana"}},
	{ClientCodeValley, []string{"valley", "valley office"}},
	{ClientCodeCanon, []string{"canon", "imagerunner"}},
	{ClientCodeRicoh, []string{"ricoh", "lanier", "savin"}},
	{ClientCodeWBT, []string{"wbt", "west business"}},
}

// CanonicalizeClientCode maps free text (a client label or customer name) to a client code.
func CanonicalizeClientCode(input string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}
	for _, c := range clientCodeKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(normalized, kw) {
				return c.code, true
			}
		}
	}
	return "", false
}

// ClientCodeFor returns the code implied by a detected client type, if any.
func ClientCodeFor(ct ClientType) (string, bool) {
	switch ct {
	case ClientTTR:
		return ClientCodeTTRUtah, true
	case ClientValley:
		return ClientCodeValley, true
	case ClientCanon:
		return ClientCodeCanon, true
	case ClientRicoh:
		return ClientCodeRicoh, true
	default:
		return "", false
	}
}
