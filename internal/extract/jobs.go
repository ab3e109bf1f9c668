package extract

// SplitBySerial returns one record per serial number, each carrying that serial. A record
// without serial numbers is returned as the single job.
func SplitBySerial(r RawRecord) []RawRecord {
	if len(r.AllSerialNumbers) == 0 {
		return []RawRecord{r}
	}
	out := make([]RawRecord, 0, len(r.AllSerialNumbers))
	for _, sn := range r.AllSerialNumbers {
		if sn == "" {
			continue
		}
		job := r
		job.SerialNumber = sn
		job.AllSerialNumbers = append([]string(nil), r.AllSerialNumbers...)
		out = append(out, job)
	}
	return out
}
