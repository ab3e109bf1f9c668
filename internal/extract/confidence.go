package extract

// MaxConfidence is the sum of all field weights.
const MaxConfidence = 100

var confidenceWeights = []struct {
	field  string
	points int
}{
	{"orderNumber", 20},
	{"address", 15},
	{"serialNumber", 15},
	{"zipCode", 10},
	{"customerName", 10},
	{"productDescription", 10},
	{"phone", 10},
	{"email", 5},
	{"date", 5},
}

// Score is a 0–100 completeness signal for review prioritisation: the weights of the fields
// that were found. "Not found" and "Number" are known false positives and never count.
func Score(r RawRecord) int {
	score := 0
	for _, w := range confidenceWeights {
		v, err := r.Field(w.field)
		if err != nil || v == "" || v == "Not found" || v == "Number" {
			continue
		}
		score += w.points
	}
	if score > MaxConfidence {
		score = MaxConfidence
	}
	return score
}
