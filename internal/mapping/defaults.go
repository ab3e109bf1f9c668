package mapping

import (
	"strconv"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/common"
)

// Fixed classification values every job is created with.
const (
	DefaultClientID       = "1247"
	DefaultClientClassID  = "110.1"
	DefaultDisposition    = "Standard"
	DefaultNotificationID = "Yes"
	DefaultPieceTotal     = "1"
)

// Defaults is the immutable set of fallback values threaded into a Mapper.
type Defaults struct {
	JobStatus      string
	BillingStatus  string
	ClientCode     string
	ClientID       string
	ClientClassID  string
	Disposition    string
	NotificationID string
	MarketID       string
	LocationLoad   string
	PeopleRequired string
	PieceTotal     string
	Flag           string
}

func DefaultsFromConfig(cfg common.DefaultsConfig) Defaults {
	return Defaults{
		JobStatus:      constants.JobStatusEntered,
		BillingStatus:  constants.BillingStatusInitial,
		ClientCode:     cfg.ClientCode,
		ClientID:       DefaultClientID,
		ClientClassID:  DefaultClientClassID,
		Disposition:    DefaultDisposition,
		NotificationID: DefaultNotificationID,
		MarketID:       cfg.MarketID,
		LocationLoad:   cfg.LocationLoad,
		PeopleRequired: strconv.Itoa(cfg.PeopleRequired),
		PieceTotal:     DefaultPieceTotal,
		Flag:           constants.FlagNo,
	}
}
