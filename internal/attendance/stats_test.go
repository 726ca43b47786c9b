package attendance

import "testing"

func TestSummarize_EmptyIsZeroNotUndefined(t *testing.T) {
	st := Summarize(nil)
	want := Stats{Total: 0, Present: 0, Absent: 0, Late: 0, Excused: 0, Percentage: 0}
	if st != want {
		t.Fatalf("got %+v, want %+v", st, want)
	}
}

func TestSummarize_PresentAndLateCountTowardPercentage(t *testing.T) {
	recs := []Record{
		{Status: StatusPresent},
		{Status: StatusPresent},
		{Status: StatusAbsent},
		{Status: StatusLate},
	}
	st := Summarize(recs)
	if st.Total != 4 || st.Present != 2 || st.Absent != 1 || st.Late != 1 || st.Excused != 0 {
		t.Fatalf("bad counts: %+v", st)
	}
	if st.Percentage != 75.0 {
		t.Fatalf("percentage = %v, want 75.0", st.Percentage)
	}
}

func TestSummarize_ExcusedIsCountedButNotCredited(t *testing.T) {
	recs := []Record{
		{Status: StatusPresent},
		{Status: StatusPresent},
		{Status: StatusExcused},
	}
	st := Summarize(recs)
	if st.Excused != 1 {
		t.Fatalf("excused = %d, want 1", st.Excused)
	}
	if st.Percentage != 66.7 {
		t.Fatalf("percentage = %v, want 66.7", st.Percentage)
	}
}

func TestSummarize_RoundsHalfUpToOneDecimal(t *testing.T) {
	// 1 of 16 credited: 6.25% rounds up to 6.3.
	recs := []Record{{Status: StatusPresent}}
	for i := 0; i < 15; i++ {
		recs = append(recs, Record{Status: StatusAbsent})
	}
	st := Summarize(recs)
	if st.Percentage != 6.3 {
		t.Fatalf("percentage = %v, want 6.3", st.Percentage)
	}

	// 1 of 3: 33.333... truncates down to 33.3.
	st = Summarize([]Record{
		{Status: StatusPresent},
		{Status: StatusAbsent},
		{Status: StatusAbsent},
	})
	if st.Percentage != 33.3 {
		t.Fatalf("percentage = %v, want 33.3", st.Percentage)
	}
}

func TestCheckEligibility(t *testing.T) {
	session := activeSession("s1", "c1")
	enrolled := []string{"a", "b"}

	if err := CheckEligibility(session, enrolled, "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckEligibility(session, enrolled, "z"); err != ErrStudentNotEnrolled {
		t.Fatalf("got %v, want ErrStudentNotEnrolled", err)
	}

	session.IsActive = false
	if err := CheckEligibility(session, enrolled, "a"); err != ErrSessionNotActive {
		t.Fatalf("got %v, want ErrSessionNotActive", err)
	}
	// The session gate wins even for unknown students.
	if err := CheckEligibility(session, enrolled, "z"); err != ErrSessionNotActive {
		t.Fatalf("got %v, want ErrSessionNotActive", err)
	}
}
