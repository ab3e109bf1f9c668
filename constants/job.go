package constants

// JobType is the record store's job_type value.
type JobType string

const (
	JobTypeDelivery JobType = "Delivery"
	JobTypePickup   JobType = "Pickup"
)

// Fixed job defaults written on every new record.
const (
	JobStatusEntered     = "Entered"
	BillingStatusInitial = "Initial"
	FlagNo               = "NO"
)

// AutoEnterFields are filled in by the record store on create and must never be sent.
var AutoEnterFields = []string{
	"job_date",
	"date_received",
	"due_date",
	"timestamp_create",
	"timestamp_mod",
	"account_create",
	"account_mod",
}
