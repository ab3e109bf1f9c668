package extract

import (
	"fmt"

	"github.com/joseph-ayodele/bol-intake/constants"
)

// RawRecord is everything pulled out of one document's text. An empty string means the field
// was not found; it is built once by Extractor.Extract and not modified afterwards.
type RawRecord struct {
	OrderNumber         string               `json:"orderNumber"`
	TrackingNumber      string               `json:"trackingNumber"`
	SerialNumber        string               `json:"serialNumber"`
	AllSerialNumbers    []string             `json:"allSerialNumbers"`
	CustomerName        string               `json:"customerName"`
	Address             string               `json:"address"`
	Suite               string               `json:"suite"`
	City                string               `json:"city"`
	State               string               `json:"state"`
	ZipCode             string               `json:"zipCode"`
	Phone               string               `json:"phone"`
	Email               string               `json:"email"`
	ContactName         string               `json:"contactName"`
	DueDate             string               `json:"dueDate"`
	ProductDescription  string               `json:"productDescription"`
	Quantity            string               `json:"quantity"`
	Weight              string               `json:"weight"`
	CallAhead           string               `json:"callAhead"`
	SpecialInstructions string               `json:"specialInstructions"`
	JobType             constants.JobType    `json:"jobType"`
	ClientType          constants.ClientType `json:"clientType"`
	Confidence          int                  `json:"confidence"`
}

// FieldNames lists the single-valued fields readable through Field, in display order.
var FieldNames = []string{
	"orderNumber", "trackingNumber", "serialNumber",
	"customerName", "address", "suite", "city", "state", "zipCode",
	"phone", "email", "contactName", "dueDate",
	"productDescription", "quantity", "weight", "callAhead", "specialInstructions",
	"jobType", "clientType",
}

// Field returns a single-valued field by its semantic name.
func (r RawRecord) Field(name string) (string, error) {
	switch name {
	case "orderNumber":
		return r.OrderNumber, nil
	case "trackingNumber":
		return r.TrackingNumber, nil
	case "serialNumber":
		return r.SerialNumber, nil
	case "customerName":
		return r.CustomerName, nil
	case "address":
		return r.Address, nil
	case "suite":
		return r.Suite, nil
	case "city":
		return r.City, nil
	case "state":
		return r.State, nil
	case "zipCode":
		return r.ZipCode, nil
	case "phone":
		return r.Phone, nil
	case "email":
		return r.Email, nil
	case "contactName":
		return r.ContactName, nil
	case "dueDate", "date":
		return r.DueDate, nil
	case "productDescription":
		return r.ProductDescription, nil
	case "quantity":
		return r.Quantity, nil
	case "weight":
		return r.Weight, nil
	case "callAhead":
		return r.CallAhead, nil
	case "specialInstructions":
		return r.SpecialInstructions, nil
	case "jobType":
		return string(r.JobType), nil
	case "clientType":
		return string(r.ClientType), nil
	default:
		return "", fmt.Errorf("unknown extracted field %q", name)
	}
}
