package mapping

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/extract"
)

const requestedDuePrefix = "Requested due date:"

// Mapper converts extracted records into record-store jobs.
type Mapper struct {
	defaults Defaults
	logger   *slog.Logger
}

func NewMapper(defaults Defaults, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{defaults: defaults, logger: logger}
}

func (m *Mapper) Defaults() Defaults { return m.defaults }

// Map uses each extracted value when present and the configured default otherwise.
// Classification and foreign-key fields are always populated.
func (m *Mapper) Map(raw extract.RawRecord) *JobRecord {
	d := m.defaults
	rec := &JobRecord{
		JobStatus:           d.JobStatus,
		JobType:             or(string(raw.JobType), string(constants.JobTypeDelivery)),
		ClientCodeID:        or(resolveClientCode(raw), d.ClientCode),
		ClientID:            d.ClientID,
		ClientClassID:       d.ClientClassID,
		Disposition:         d.Disposition,
		NotificationID:      d.NotificationID,
		MarketID:            d.MarketID,
		ClientOrderNumber:   raw.OrderNumber,
		ClientOrderNumber2:  raw.TrackingNumber,
		LocationLoad:        d.LocationLoad,
		Customer:            raw.CustomerName,
		Address:             raw.Address,
		Address2:            raw.Suite,
		Zip:                 raw.ZipCode,
		CityID:              raw.City,
		StateID:             raw.State,
		Contact:             formatContact(raw),
		Phone:               raw.Phone,
		ProductSerialNumber: raw.SerialNumber,
		ProductDescription:  raw.ProductDescription,
		PieceTotal:          or(raw.Quantity, d.PieceTotal),
		NotesCallAhead:      raw.CallAhead,
		NotesDriver:         raw.SpecialInstructions,
		PeopleRequired:      d.PeopleRequired,
		AdditionalUnit:      d.Flag,
		SameDay:             d.Flag,
		SameDayReturn:       d.Flag,
		Staging:             d.Flag,
		NamedInsurance:      d.Flag,
		BillingStatus:       d.BillingStatus,
	}
	SetRequestedDueDate(rec, raw.DueDate)

	if missing := missingForeignKeys(rec); len(missing) > 0 {
		m.logger.Warn("mapped job has empty foreign keys", "fields", missing)
	}
	return rec
}

// SetRequestedDueDate records the due date in notes_schedule, replacing an earlier
// requested-due-date line instead of adding a second one.
func SetRequestedDueDate(rec *JobRecord, due string) {
	due = strings.TrimSpace(due)
	if due == "" {
		return
	}
	line := requestedDuePrefix + " " + due
	if strings.TrimSpace(rec.NotesSchedule) == "" {
		rec.NotesSchedule = line
		return
	}
	lines := strings.Split(rec.NotesSchedule, "\n")
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), requestedDuePrefix) {
			lines[i] = line
			rec.NotesSchedule = strings.Join(lines, "\n")
			return
		}
	}
	rec.NotesSchedule += "\n" + line
}

func resolveClientCode(raw extract.RawRecord) string {
	if code, ok := constants.ClientCodeFor(raw.ClientType); ok {
		return code
	}
	if code, ok := constants.CanonicalizeClientCode(raw.CustomerName); ok {
		return code
	}
	return ""
}

func formatContact(raw extract.RawRecord) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{raw.ContactName, raw.Phone, raw.Email} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func missingForeignKeys(rec *JobRecord) []string {
	var missing []string
	for _, f := range ForeignKeyFields {
		if v, _ := rec.Get(f); strings.TrimSpace(v) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func or(v, fallback string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}
