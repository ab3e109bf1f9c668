package extract

import (
	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/patterns"
)

func (e *Extractor) detectClient(text string) constants.ClientType {
	sets := map[constants.ClientType]patterns.Set{
		constants.ClientPacific: e.lib.ClientPacific,
		constants.ClientTTR:     e.lib.ClientTTR,
		constants.ClientValley:  e.lib.ClientValley,
		constants.ClientCanon:   e.lib.ClientCanon,
		constants.ClientRicoh:   e.lib.ClientRicoh,
	}
	for _, ct := range constants.ClientPriority {
		if e.lib.Matches(text, sets[ct]) {
			return ct
		}
	}
	return constants.ClientGeneric
}
