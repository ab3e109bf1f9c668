package mapping

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned by Get/Set for names that are not record-store fields.
var ErrUnknownField = errors.New("unknown job record field")

// JobRecord is a job in the record store's field vocabulary. All values are strings; the
// store coerces numbers itself.
type JobRecord struct {
	JobStatus           string `json:"job_status"`
	JobType             string `json:"job_type"`
	ClientCodeID        string `json:"_kf_client_code_id"`
	ClientID            string `json:"_kf_client_id"`
	ClientClassID       string `json:"_kf_client_class_id"`
	Disposition         string `json:"_kf_disposition"`
	NotificationID      string `json:"_kf_notification_id"`
	MarketID            string `json:"_kf_market_id"`
	ClientOrderNumber   string `json:"client_order_number"`
	ClientOrderNumber2  string `json:"client_order_number_2"`
	LocationLoad        string `json:"location_load"`
	LocationReturn      string `json:"location_return"`
	Customer            string `json:"Customer_C1"`
	Address             string `json:"address_C1"`
	Address2            string `json:"address2_C1"`
	Zip                 string `json:"zip_C1"`
	CityID              string `json:"_kf_city_id"`
	StateID             string `json:"_kf_state_id"`
	Contact             string `json:"contact_C1"`
	Phone               string `json:"phone_C1"`
	ProductSerialNumber string `json:"product_serial_number"`
	ProductDescription  string `json:"description_product"`
	ProductType         string `json:"product_type"`
	PieceTotal          string `json:"piece_total"`
	NotesCallAhead      string `json:"notes_call_ahead"`
	NotesDriver         string `json:"notes_driver"`
	NotesJob            string `json:"notes_job"`
	NotesSchedule       string `json:"notes_schedule"`
	PeopleRequired      string `json:"people_required"`
	AdditionalUnit      string `json:"Additional_unit"`
	SameDay             string `json:"same_day"`
	SameDayReturn       string `json:"same_day_return"`
	Staging             string `json:"staging"`
	NamedInsurance      string `json:"named_insurance"`
	BillingStatus       string `json:"billing_status"`
}

// Field names as the record store knows them.
const (
	FieldJobStatus          = "job_status"
	FieldJobType            = "job_type"
	FieldClientCodeID       = "_kf_client_code_id"
	FieldClientID           = "_kf_client_id"
	FieldClientClassID      = "_kf_client_class_id"
	FieldDisposition        = "_kf_disposition"
	FieldNotificationID     = "_kf_notification_id"
	FieldMarketID           = "_kf_market_id"
	FieldClientOrderNumber  = "client_order_number"
	FieldClientOrderNumber2 = "client_order_number_2"
	FieldLocationLoad       = "location_load"
	FieldLocationReturn     = "location_return"
	FieldCustomer           = "Customer_C1"
	FieldAddress            = "address_C1"
	FieldAddress2           = "address2_C1"
	FieldZip                = "zip_C1"
	FieldCityID             = "_kf_city_id"
	FieldStateID            = "_kf_state_id"
	FieldContact            = "contact_C1"
	FieldPhone              = "phone_C1"
	FieldSerialNumber       = "product_serial_number"
	FieldProductDescription = "description_product"
	FieldProductType        = "product_type"
	FieldPieceTotal         = "piece_total"
	FieldNotesCallAhead     = "notes_call_ahead"
	FieldNotesDriver        = "notes_driver"
	FieldNotesJob           = "notes_job"
	FieldNotesSchedule      = "notes_schedule"
	FieldPeopleRequired     = "people_required"
	FieldAdditionalUnit     = "Additional_unit"
	FieldSameDay            = "same_day"
	FieldSameDayReturn      = "same_day_return"
	FieldStaging            = "staging"
	FieldNamedInsurance     = "named_insurance"
	FieldBillingStatus      = "billing_status"
)

// FieldNames lists every JobRecord field in payload order.
var FieldNames = []string{
	FieldJobStatus, FieldJobType,
	FieldClientCodeID, FieldClientID, FieldClientClassID,
	FieldDisposition, FieldNotificationID, FieldMarketID,
	FieldClientOrderNumber, FieldClientOrderNumber2,
	FieldLocationLoad, FieldLocationReturn,
	FieldCustomer, FieldAddress, FieldAddress2, FieldZip, FieldCityID, FieldStateID,
	FieldContact, FieldPhone,
	FieldSerialNumber, FieldProductDescription, FieldProductType, FieldPieceTotal,
	FieldNotesCallAhead, FieldNotesDriver, FieldNotesJob, FieldNotesSchedule,
	FieldPeopleRequired,
	FieldAdditionalUnit, FieldSameDay, FieldSameDayReturn, FieldStaging, FieldNamedInsurance,
	FieldBillingStatus,
}

func (r *JobRecord) fields() map[string]*string {
	return map[string]*string{
		FieldJobStatus:          &r.JobStatus,
		FieldJobType:            &r.JobType,
		FieldClientCodeID:       &r.ClientCodeID,
		FieldClientID:           &r.ClientID,
		FieldClientClassID:      &r.ClientClassID,
		FieldDisposition:        &r.Disposition,
		FieldNotificationID:     &r.NotificationID,
		FieldMarketID:           &r.MarketID,
		FieldClientOrderNumber:  &r.ClientOrderNumber,
		FieldClientOrderNumber2: &r.ClientOrderNumber2,
		FieldLocationLoad:       &r.LocationLoad,
		FieldLocationReturn:     &r.LocationReturn,
		FieldCustomer:           &r.Customer,
		FieldAddress:            &r.Address,
		FieldAddress2:           &r.Address2,
		FieldZip:                &r.Zip,
		FieldCityID:             &r.CityID,
		FieldStateID:            &r.StateID,
		FieldContact:            &r.Contact,
		FieldPhone:              &r.Phone,
		FieldSerialNumber:       &r.ProductSerialNumber,
		FieldProductDescription: &r.ProductDescription,
		FieldProductType:        &r.ProductType,
		FieldPieceTotal:         &r.PieceTotal,
		FieldNotesCallAhead:     &r.NotesCallAhead,
		FieldNotesDriver:        &r.NotesDriver,
		FieldNotesJob:           &r.NotesJob,
		FieldNotesSchedule:      &r.NotesSchedule,
		FieldPeopleRequired:     &r.PeopleRequired,
		FieldAdditionalUnit:     &r.AdditionalUnit,
		FieldSameDay:            &r.SameDay,
		FieldSameDayReturn:      &r.SameDayReturn,
		FieldStaging:            &r.Staging,
		FieldNamedInsurance:     &r.NamedInsurance,
		FieldBillingStatus:      &r.BillingStatus,
	}
}

func (r *JobRecord) Get(name string) (string, error) {
	p, ok := r.fields()[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return *p, nil
}

func (r *JobRecord) Set(name, value string) error {
	p, ok := r.fields()[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	*p = value
	return nil
}

// FieldData is the flat create payload body: every field, empty values included.
func (r *JobRecord) FieldData() map[string]string {
	out := make(map[string]string, len(FieldNames))
	for name, p := range r.fields() {
		out[name] = *p
	}
	return out
}

// Clone returns an independent copy.
func (r *JobRecord) Clone() *JobRecord {
	c := *r
	return &c
}
