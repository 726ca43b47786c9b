package attendance

import (
	"context"
	"fmt"
	"log"
)

// autoAbsentNote marks records the resolver created rather than a person.
const autoAbsentNote = "Auto-marked as absent"

// Resolver computes the complement of "enrolled" minus "marked" for a
// session and drives the bulk absent top-up. An enrolled student with no
// record is "unmarked", which is distinct from "absent": unmarked students
// never show up in stats until a record exists.
type Resolver struct {
	records RecordStore
	roster  Roster
	ledger  *Service
}

// NewResolver creates a resolver over the same stores as the ledger.
func NewResolver(records RecordStore, roster Roster, ledger *Service) *Resolver {
	return &Resolver{records: records, roster: roster, ledger: ledger}
}

// Unmarked returns the ids of active enrolled students with no record in
// the session, in roster order.
func (r *Resolver) Unmarked(ctx context.Context, session Session) ([]string, error) {
	enrolled, err := r.roster.EnrolledStudentIDs(ctx, session.CourseID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	recs, err := r.records.BySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	marked := make(map[string]bool, len(recs))
	for _, rec := range recs {
		marked[rec.StudentID] = true
	}
	var unmarked []string
	for _, id := range enrolled {
		if !marked[id] {
			unmarked = append(unmarked, id)
		}
	}
	return unmarked, nil
}

// AutoMarkAbsent marks every unmarked student absent and returns how many
// were marked. Already-marked students are untouched regardless of status,
// so a second run is a no-op. Per-student failures are logged and skipped;
// the batch continues.
//
// The verification method is always manual, even when invoked from the
// face-recognition flow. Kept for behavioral parity with the system this
// replaces.
func (r *Resolver) AutoMarkAbsent(ctx context.Context, session Session, actor *string) (int, error) {
	unmarked, err := r.Unmarked(ctx, session)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, studentID := range unmarked {
		_, err := r.ledger.Mark(ctx, session, studentID, StatusAbsent, MethodManual, actor, Extra{Notes: autoAbsentNote})
		if err != nil {
			log.Printf("auto-mark absent failed for student %s in session %s: %v", studentID, session.ID, err)
			continue
		}
		count++
	}
	return count, nil
}

// LowEntry pairs a student with their attendance percentage.
type LowEntry struct {
	StudentID  string  `json:"student_id"`
	Percentage float64 `json:"percentage"`
	Stats      Stats   `json:"stats"`
}

// LowAttendance returns students whose percentage is below threshold,
// scoped to one course when courseID is non-empty. Students with zero
// records are excluded entirely: no history never means low attendance.
func (r *Resolver) LowAttendance(ctx context.Context, courseID string, threshold float64) ([]LowEntry, error) {
	var ids []string
	var err error
	if courseID != "" {
		ids, err = r.roster.EnrolledStudentIDs(ctx, courseID)
	} else {
		ids, err = r.roster.ActiveStudentIDs(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}

	var low []LowEntry
	for _, id := range ids {
		recs, err := r.records.ByStudent(ctx, id, courseID)
		if err != nil {
			return nil, fmt.Errorf("load records for %s: %w", id, err)
		}
		st := Summarize(recs)
		if st.Total > 0 && st.Percentage < threshold {
			low = append(low, LowEntry{StudentID: id, Percentage: st.Percentage, Stats: st})
		}
	}
	return low, nil
}
