package attendance

import "math"

// Stats are counts by status plus the attendance percentage over a record
// set. The same fold serves per-session, per-student-overall and
// per-student-per-course scopes; only the record filter differs.
type Stats struct {
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Late       int     `json:"late"`
	Excused    int     `json:"excused"`
	Percentage float64 `json:"percentage"`
}

// Summarize folds records into Stats.
//
// Percentage is round(100*(present+late)/max(total,1), 1). An empty record
// set therefore yields 0, not "undefined": unmarked students simply do not
// appear in the counts.
func Summarize(records []Record) Stats {
	var st Stats
	for _, rec := range records {
		st.Total++
		switch rec.Status {
		case StatusPresent:
			st.Present++
		case StatusAbsent:
			st.Absent++
		case StatusLate:
			st.Late++
		case StatusExcused:
			st.Excused++
		}
	}
	denom := st.Total
	if denom == 0 {
		denom = 1
	}
	st.Percentage = round1(100 * float64(st.Present+st.Late) / float64(denom))
	return st
}

// round1 rounds half-up to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
