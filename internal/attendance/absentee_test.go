package attendance

import (
	"context"
	"testing"
)

func newTestResolver() (*Resolver, *Service, *memRecords, *memRoster) {
	records := newMemRecords()
	roster := &memRoster{
		enrolled: map[string][]string{"c1": {"a", "b"}},
		active:   []string{"a", "b"},
	}
	ledger := NewService(records, roster)
	return NewResolver(records, roster, ledger), ledger, records, roster
}

func TestUnmarkedIsDistinctFromAbsent(t *testing.T) {
	resolver, ledger, _, _ := newTestResolver()
	ctx := context.Background()
	session := activeSession("s1", "c1")

	if _, err := ledger.Mark(ctx, session, "a", StatusPresent, MethodManual, nil, Extra{}); err != nil {
		t.Fatalf("mark: %v", err)
	}

	unmarked, err := resolver.Unmarked(ctx, session)
	if err != nil {
		t.Fatalf("unmarked: %v", err)
	}
	if len(unmarked) != 1 || unmarked[0] != "b" {
		t.Fatalf("unmarked = %v, want [b]", unmarked)
	}

	// b has no record yet, so it does not appear in the stats counts.
	recs, _ := ledger.SessionRecords(ctx, session.ID)
	st := Summarize(recs)
	if st.Total != 1 || st.Absent != 0 {
		t.Fatalf("unmarked student leaked into stats: %+v", st)
	}
}

func TestAutoMarkAbsent_TopUpThenScenarioStats(t *testing.T) {
	resolver, ledger, _, _ := newTestResolver()
	ctx := context.Background()
	session := activeSession("s1", "c1")

	if _, err := ledger.Mark(ctx, session, "a", StatusPresent, MethodManual, nil, Extra{}); err != nil {
		t.Fatalf("mark: %v", err)
	}

	count, err := resolver.AutoMarkAbsent(ctx, session, nil)
	if err != nil {
		t.Fatalf("auto-mark: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	recs, _ := ledger.SessionRecords(ctx, session.ID)
	st := Summarize(recs)
	want := Stats{Total: 2, Present: 1, Absent: 1, Late: 0, Excused: 0, Percentage: 50.0}
	if st != want {
		t.Fatalf("stats = %+v, want %+v", st, want)
	}

	for _, rec := range recs {
		if rec.StudentID != "b" {
			continue
		}
		if rec.Status != StatusAbsent || rec.Method != MethodManual || rec.Notes != autoAbsentNote {
			t.Fatalf("auto-marked record wrong: %+v", rec)
		}
	}
}

func TestAutoMarkAbsent_SecondRunMarksNothing(t *testing.T) {
	resolver, ledger, records, _ := newTestResolver()
	ctx := context.Background()
	session := activeSession("s1", "c1")

	if _, err := ledger.Mark(ctx, session, "a", StatusLate, MethodManual, nil, Extra{}); err != nil {
		t.Fatalf("mark: %v", err)
	}

	first, err := resolver.AutoMarkAbsent(ctx, session, nil)
	if err != nil {
		t.Fatalf("first auto-mark: %v", err)
	}
	second, err := resolver.AutoMarkAbsent(ctx, session, nil)
	if err != nil {
		t.Fatalf("second auto-mark: %v", err)
	}
	if first != 1 || second != 0 {
		t.Fatalf("counts = %d,%d, want 1,0", first, second)
	}

	// The top-up never resyncs: a's late mark is untouched.
	recs, _ := records.BySession(ctx, session.ID)
	if len(recs) != 2 {
		t.Fatalf("row count = %d, want 2", len(recs))
	}
	for _, rec := range recs {
		if rec.StudentID == "a" && rec.Status != StatusLate {
			t.Fatalf("existing mark changed: %+v", rec)
		}
	}
}

func TestLowAttendance_ExcludesStudentsWithNoHistory(t *testing.T) {
	resolver, ledger, records, roster := newTestResolver()
	ctx := context.Background()
	roster.enrolled["c1"] = []string{"a", "b", "ghost"}
	roster.active = []string{"a", "b", "ghost"}

	// a: 1 of 4 credited (25%). b: 4 of 4 (100%). ghost: no records at all.
	for i, status := range []Status{StatusPresent, StatusAbsent, StatusAbsent, StatusAbsent} {
		session := activeSession("s"+string(rune('1'+i)), "c1")
		records.sessionCourse[session.ID] = "c1"
		if _, err := ledger.Mark(ctx, session, "a", status, MethodManual, nil, Extra{}); err != nil {
			t.Fatalf("mark a: %v", err)
		}
		if _, err := ledger.Mark(ctx, session, "b", StatusPresent, MethodManual, nil, Extra{}); err != nil {
			t.Fatalf("mark b: %v", err)
		}
	}

	low, err := resolver.LowAttendance(ctx, "", 75.0)
	if err != nil {
		t.Fatalf("low attendance: %v", err)
	}
	if len(low) != 1 {
		t.Fatalf("entries = %+v, want exactly one", low)
	}
	if low[0].StudentID != "a" || low[0].Percentage != 25.0 {
		t.Fatalf("entry = %+v, want a at 25.0", low[0])
	}

	// Even an absurdly high threshold never pulls in zero-record students.
	low, err = resolver.LowAttendance(ctx, "", 100.0)
	if err != nil {
		t.Fatalf("low attendance: %v", err)
	}
	for _, entry := range low {
		if entry.StudentID == "ghost" {
			t.Fatal("student with no history appeared on the low-attendance list")
		}
	}
}

func TestLowAttendance_CourseScopeFiltersRecords(t *testing.T) {
	resolver, ledger, records, roster := newTestResolver()
	ctx := context.Background()
	roster.enrolled["c2"] = []string{"a"}

	s1 := activeSession("s1", "c1")
	s2 := activeSession("s2", "c2")
	records.sessionCourse["s1"] = "c1"
	records.sessionCourse["s2"] = "c2"

	// Absent in c1, present in c2: low overall for c1, fine for c2.
	if _, err := ledger.Mark(ctx, s1, "a", StatusAbsent, MethodManual, nil, Extra{}); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if _, err := ledger.Mark(ctx, s2, "a", StatusPresent, MethodManual, nil, Extra{}); err != nil {
		t.Fatalf("mark: %v", err)
	}

	low, err := resolver.LowAttendance(ctx, "c2", 75.0)
	if err != nil {
		t.Fatalf("low attendance: %v", err)
	}
	if len(low) != 0 {
		t.Fatalf("c2 scope should be clean, got %+v", low)
	}

	low, err = resolver.LowAttendance(ctx, "c1", 75.0)
	if err != nil {
		t.Fatalf("low attendance: %v", err)
	}
	if len(low) != 1 || low[0].Percentage != 0.0 {
		t.Fatalf("c1 scope = %+v, want a at 0.0", low)
	}
}
