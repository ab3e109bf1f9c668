// Package patterns holds the ordered text patterns used to pull bill-of-lading fields out of
// raw document text, and the engine that applies them.
package patterns

import (
	"regexp"
	"sync"
)

// Pattern is one named alternative in a Set. When the expression has a capturing group the
// first group is the value, otherwise the whole match is.
type Pattern struct {
	Name string
	Re   *regexp.Regexp
}

// Set is an ordered list of alternatives for one field. Order is part of the contract:
// single-value extraction takes the first pattern that yields an accepted match.
type Set []*Pattern

func p(name, expr string) *Pattern {
	return &Pattern{Name: name, Re: regexp.MustCompile(expr)}
}

// Library holds one Set per semantic field. It is never mutated after construction.
type Library struct {
	OrderNumber         Set
	TrackingNumber      Set
	SerialNumber        Set
	Phone               Set
	Email               Set
	ContactName         Set
	DueDate             Set
	Quantity            Set
	Weight              Set
	CallAhead           Set
	SpecialInstructions Set

	// Applied to the isolated origin block only.
	OriginCompany Set
	OriginAddress Set
	OriginSuite   Set

	// Keyword sets for client detection, keyed by the detected category.
	ClientPacific Set
	ClientTTR     Set
	ClientValley  Set
	ClientCanon   Set
	ClientRicoh   Set

	// Legal lists the shipping-terms boilerplate detectors.
	Legal Set
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
)

// Default returns the shared library. Safe for concurrent use.
func Default() *Library {
	defaultOnce.Do(func() { defaultLib = newLibrary() })
	return defaultLib
}

func newLibrary() *Library {
	return &Library{
		OrderNumber: Set{
			p("bol_order", `(?i)Order\s*#:\s+(\d{6,10})\b`),
			p("labelled_order", `(?i)(?:client\s*order|order\s*#|purchase\s*order|po\s*#)\s*[:\-#]?\s*([A-Z0-9\-]{6,20})`),
		},
		TrackingNumber: Set{
			p("carrier_mc", `(?i)Carrier's\s+No\.\s+MC#\s*(\d+)`),
			p("labelled_tracking", `(?i)(?:tracking|shipment|manifest|pro)\s*(?:#|no\.?|number)?\s*[:#]\s*([A-Z0-9\-]{6,20})`),
		},
		SerialNumber: Set{
			p("labelled_serial", `(?i)(?:serial\s*(?:number|#|no)?|s/n|unit\s*#?)\s*[:\-]?\s*([A-Z]{2,4}\d{5,12}[A-Z0-9]*)`),
			p("bare_serial", `(?i)\b[A-Z]{2,4}\d{5,10}[A-Z0-9]{0,5}\b`),
		},
		Phone: Set{
			p("dashed_phone", `\b(\d{3}[-.\s]?\d{3}[-.\s]?\d{4})\b`),
			p("area_code_phone", `(\(\d{3}\)\s*\d{3}[-.\s]?\d{4})\b`),
		},
		Email: Set{
			p("email", `[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
		},
		ContactName: Set{
			p("ttr_contact", `(?i:TTR\s+Contact):\s+([A-Z][a-z]+\s+[A-Z][a-z]+)`),
			p("attention", `(?i:contact|attn|attention)\s*[:\-]?\s*([A-Z][a-z]+\s+[A-Z][a-z]+)`),
		},
		DueDate: Set{
			p("deliver_window", `(?i)Deliver:\s+\d{1,2}/\d{1,2}\s*-\s*(\d{1,2}/\d{1,2})`),
			p("due_date", `(?i)(?:due|delivery)\s*date\s*[:\-]?\s*(\d{1,2}/\d{1,2}(?:/\d{2,4})?)`),
		},
		Quantity: Set{
			p("qty", `(?i)\bQty\s*[:\-]?\s+(\d+)\b`),
			p("pieces", `(?i)\b(\d+)\s+(?:PCS|pieces|units|PC)\b`),
		},
		Weight: Set{
			p("lbs", `(?i)\b(\d{2,4})\s+lbs?\b`),
			p("labelled_weight", `(?i)weight\s*[:\-]?\s*(\d+(?:\.\d+)?)`),
		},
		CallAhead: Set{
			p("prior_notice", `(?i)(\d+\s*(?:hour|hr|minute|min)s?\s*(?:prior|ahead|notice))`),
			p("call_ahead", `(?i)(call\s*(?:ahead|before|upon\s*arrival))`),
			p("notice_window", `(?i)(24\s*hr|same\s*day|1\s*hour)\s*(?:call|notice)`),
			p("min_prior", `(?i)(\d+\s+Min\s+Prior)`),
		},
		SpecialInstructions: Set{
			p("labelled_notes", `(?i)(?:notes?|instructions?|special\s+handling|requirements?)\s*[:\-]\s*([A-Za-z0-9 \-,.]{10,200})`),
			p("site_keywords", `(?i)\b(liftgate|stairs|no\s+dock|loading\s+dock|freight\s+elevator)\b`),
		},
		OriginCompany: Set{
			p("suffixed_company", `^([A-Z][A-Za-z0-9&.,'\- ]*\b(?:Automation|Office|Services|Solutions|Systems|Industries|Imaging|LLC|Inc|Corp|Ltd|Co)\b\.?)`),
		},
		OriginAddress: Set{
			p("grid_address", `(?i)(\d{3,5}\s+(?:North|South|East|West|N|S|E|W)\.?\s+\d{3,5}\s+(?:North|South|East|West|N|S|E|W)\b\.?)`),
			p("street_address", `(?i)(\d{1,6}\s+(?:(?:North|South|East|West|N|S|E|W)\.?\s+)?[A-Za-z0-9]+(?:\s+[A-Za-z0-9]+){0,3}\s+(?:Street|St|Avenue|Ave|Road|Rd|Drive|Dr|Lane|Ln|Way|Blvd|Parkway|Pkwy|Circle|Cir|Court|Ct)\b\.?)`),
		},
		OriginSuite: Set{
			p("suite", `(?i)\b((?:Suite|Ste)\.?\s+[A-Z0-9\-]+)`),
		},
		ClientPacific: Set{p("pacific_office", `(?i)pacific\s*office`)},
		ClientTTR: Set{
			p("ttr", `(?i)\bttr\b`),
			p("texas_truck_rental", `(?i)texas\s*truck\s*rental`),
		},
		ClientValley: Set{p("valley", `(?i)valley`)},
		ClientCanon: Set{
			p("canon", `(?i)canon`),
			p("imagerunner", `(?i)imagerunner`),
		},
		ClientRicoh: Set{p("ricoh", `(?i)ricoh|lanier|savin`)},
		Legal: Set{
			p("subject_to_individually", `(?i)received.*subject\s+to\s+individually`),
			p("rates_or_contracts", `(?i)rates\s+or\s+contracts\s+that\s+have\s+been\s+agreed`),
			p("classifications_and_rules", `(?i)classifications\s+and\s+rules`),
			p("otherwise_to_the_rates", `(?i)otherwise\s+to\s+the\s+rates`),
		},
	}
}

// Names lists the pattern names of a set in trial order.
func (s Set) Names() []string {
	out := make([]string, len(s))
	for i, pat := range s {
		out[i] = pat.Name
	}
	return out
}
