package extract

import (
	"regexp"
	"strconv"
	"time"

	"github.com/joseph-ayodele/bol-intake/constants"
)

var reLoadDate = regexp.MustCompile(`Load:\s+(\d{1,2})/(\d{1,2})`)

// inferJobType classifies by the "Load: M/D" date: a load date still ahead of today means
// the unit has yet to be picked up. No load date means Delivery.
func inferJobType(text string, today time.Time) constants.JobType {
	m := reLoadDate.FindStringSubmatch(text)
	if m == nil {
		return constants.JobTypeDelivery
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return constants.JobTypeDelivery
	}
	if loadDateIsUpcoming(month, day, today) {
		return constants.JobTypePickup
	}
	return constants.JobTypeDelivery
}

// loadDateIsUpcoming compares month/day only. Documents carry no year, so the load date is
// assumed to fall in today's calendar year: near a year boundary a January load date read in
// December counts as past.
func loadDateIsUpcoming(month, day int, today time.Time) bool {
	tm := int(today.Month())
	return month > tm || (month == tm && day >= today.Day())
}
