package mapping

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/bol-intake/internal/common"
)

// RequiredFields must be non-blank before a job can be submitted.
var RequiredFields = []string{
	FieldClientOrderNumber,
	FieldJobType,
	FieldAddress,
	FieldZip,
	FieldCustomer,
}

// ForeignKeyFields are the classification keys the record store rejects a job without.
var ForeignKeyFields = []string{
	FieldClientCodeID,
	FieldClientID,
	FieldClientClassID,
	FieldDisposition,
	FieldNotificationID,
	FieldMarketID,
}

var (
	reZip   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	rePhone = regexp.MustCompile(`^(?:\+?1[-.\s]?)?(?:\(\d{3}\)|\d{3})[-.\s]?\d{3}[-.\s]?\d{4}$`)
)

// Result holds every violation found, not just the first.
type Result struct {
	Valid  bool
	Errors []common.ValidationError
}

// Err is nil for a valid result and wraps common.ErrValidation otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(r.Messages(), "; "))
}

// Messages returns each violation as "field message".
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Error())
	}
	return out
}

func Validate(rec *JobRecord) Result {
	v := common.NewValidator()
	for _, f := range RequiredFields {
		val, _ := rec.Get(f)
		v.Field(f, val, common.Required)
	}
	for _, f := range ForeignKeyFields {
		val, _ := rec.Get(f)
		v.Field(f, val, common.Required)
	}
	v.Field(FieldJobStatus, rec.JobStatus, common.Required)
	// Shapes are checked on trimmed values; Normalize trims before submission.
	v.Field(FieldZip, strings.TrimSpace(rec.Zip), common.MatchesPattern(reZip, "must be 5 digits with an optional 4-digit extension"))
	v.Field(FieldPhone, strings.TrimSpace(rec.Phone), common.MatchesPattern(rePhone, "must be a 10-digit phone number"))
	v.Field(FieldClientOrderNumber, rec.ClientOrderNumber, common.MaxLength(50))
	return Result{Valid: !v.HasErrors(), Errors: v.Errors()}
}
