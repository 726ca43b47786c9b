package attendance

import (
	"context"
	"fmt"
	"time"
)

// memRecords is an in-memory RecordStore with the same upsert semantics
// the Postgres unique constraint provides.
type memRecords struct {
	rows          map[string]Record // keyed session|student
	sessionCourse map[string]string
	seq           int
}

func newMemRecords() *memRecords {
	return &memRecords{
		rows:          make(map[string]Record),
		sessionCourse: make(map[string]string),
	}
}

func (m *memRecords) Upsert(_ context.Context, rec Record) (Record, bool, Status, error) {
	key := rec.SessionID + "|" + rec.StudentID
	now := time.Now().UTC()
	if old, ok := m.rows[key]; ok {
		prev := old.Status
		rec.ID = old.ID
		rec.MarkedAt = old.MarkedAt
		rec.UpdatedAt = now
		m.rows[key] = rec
		return rec, false, prev, nil
	}
	if rec.ID == "" {
		m.seq++
		rec.ID = fmt.Sprintf("rec-%d", m.seq)
	}
	rec.MarkedAt = now
	rec.UpdatedAt = now
	m.rows[key] = rec
	return rec, true, "", nil
}

func (m *memRecords) BySession(_ context.Context, sessionID string) ([]Record, error) {
	var out []Record
	for _, rec := range m.rows {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memRecords) ByStudent(_ context.Context, studentID, courseID string) ([]Record, error) {
	var out []Record
	for _, rec := range m.rows {
		if rec.StudentID != studentID {
			continue
		}
		if courseID != "" && m.sessionCourse[rec.SessionID] != courseID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// memRoster is an in-memory Roster.
type memRoster struct {
	enrolled map[string][]string // courseID -> student ids
	active   []string
}

func (m *memRoster) EnrolledStudentIDs(_ context.Context, courseID string) ([]string, error) {
	return m.enrolled[courseID], nil
}

func (m *memRoster) ActiveStudentIDs(_ context.Context) ([]string, error) {
	return m.active, nil
}

func activeSession(id, courseID string) Session {
	return Session{
		ID:        id,
		CourseID:  courseID,
		Date:      time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		IsActive:  true,
	}
}
