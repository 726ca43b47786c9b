package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status of a single attendance fact.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

// ValidStatus reports whether s is one of the four known statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Method records how a mark was verified.
type Method string

const (
	MethodManual Method = "manual"
	MethodFace   Method = "face_recognition"
	MethodMobile Method = "mobile_gps"
	MethodQR     Method = "qr_scan"
)

// SessionType tags how a session collects marks.
type SessionType string

const (
	SessionManual SessionType = "manual"
	SessionFace   SessionType = "face_recognition"
	SessionMobile SessionType = "mobile"
	SessionQR     SessionType = "qr_code"
)

// Session is a single scheduled class meeting.
type Session struct {
	ID          string      `json:"id"`
	CourseID    string      `json:"course_id"`
	FacultyID   *string     `json:"faculty_id,omitempty"`
	Date        time.Time   `json:"date"`
	StartTime   string      `json:"start_time"`
	EndTime     *string     `json:"end_time,omitempty"`
	SessionType SessionType `json:"session_type"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Record is one attendance fact. At most one exists per (session, student);
// re-marking updates the row in place.
type Record struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	StudentID      string    `json:"student_id"`
	Status         Status    `json:"status"`
	Method         Method    `json:"verification_method"`
	MarkedAt       time.Time `json:"marked_at"`
	MarkedBy       *string   `json:"marked_by,omitempty"`
	FaceConfidence *float64  `json:"face_confidence,omitempty"`
	LocationLat    *float64  `json:"location_lat,omitempty"`
	LocationLng    *float64  `json:"location_lng,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Extra carries the optional fields of a mark attempt.
type Extra struct {
	FaceConfidence *float64
	LocationLat    *float64
	LocationLng    *float64
	Notes          string
}

// MarkResult is the outcome of a single mark. Previous is empty when the
// record was freshly created, so callers can detect a transition into
// absent without re-querying.
type MarkResult struct {
	Record   Record `json:"record"`
	Created  bool   `json:"created"`
	Previous Status `json:"previous_status,omitempty"`
}

// RecordStore is the persistence the ledger needs. Upsert must be atomic
// per (session, student); the Postgres implementation rides the unique
// constraint, the last writer wins.
type RecordStore interface {
	Upsert(ctx context.Context, rec Record) (saved Record, created bool, prev Status, err error)
	BySession(ctx context.Context, sessionID string) ([]Record, error)
	ByStudent(ctx context.Context, studentID, courseID string) ([]Record, error)
}

// Roster exposes the enrollment views the core needs.
type Roster interface {
	EnrolledStudentIDs(ctx context.Context, courseID string) ([]string, error)
	ActiveStudentIDs(ctx context.Context) ([]string, error)
}

// Service is the attendance ledger: the gate-then-upsert path every mark
// goes through. It writes nothing but the ledger row; notification
// dispatch is composed by the caller.
type Service struct {
	records RecordStore
	roster  Roster
}

// NewService creates a ledger backed by the given stores.
func NewService(records RecordStore, roster Roster) *Service {
	return &Service{records: records, roster: roster}
}

// Mark records or updates attendance for one student in one session.
func (s *Service) Mark(ctx context.Context, session Session, studentID string, status Status, method Method, actor *string, extra Extra) (MarkResult, error) {
	if !ValidStatus(status) {
		return MarkResult{}, fmt.Errorf("invalid status %q", status)
	}
	enrolled, err := s.roster.EnrolledStudentIDs(ctx, session.CourseID)
	if err != nil {
		return MarkResult{}, fmt.Errorf("load roster: %w", err)
	}
	if err := CheckEligibility(session, enrolled, studentID); err != nil {
		return MarkResult{}, err
	}

	rec := Record{
		SessionID:      session.ID,
		StudentID:      studentID,
		Status:         status,
		Method:         method,
		MarkedBy:       actor,
		FaceConfidence: extra.FaceConfidence,
		LocationLat:    extra.LocationLat,
		LocationLng:    extra.LocationLng,
		Notes:          extra.Notes,
	}
	saved, created, prev, err := s.records.Upsert(ctx, rec)
	if err != nil {
		return MarkResult{}, fmt.Errorf("upsert record: %w", err)
	}
	marksTotal.WithLabelValues(string(status), string(method)).Inc()
	return MarkResult{Record: saved, Created: created, Previous: prev}, nil
}

// BulkItem is one entry of a bulk mark request.
type BulkItem struct {
	StudentID string `json:"student_id"`
	Status    Status `json:"status"`
	Method    Method `json:"verification_method,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// BulkError itemizes a failed entry; the rest of the batch proceeds.
type BulkError struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"error"`
}

// BulkMark marks many students sequentially, collecting per-item failures
// instead of aborting the batch. The session-active check still applies to
// every item.
func (s *Service) BulkMark(ctx context.Context, session Session, items []BulkItem, actor *string) ([]MarkResult, []BulkError) {
	var results []MarkResult
	var failures []BulkError
	for _, item := range items {
		status := item.Status
		if status == "" {
			status = StatusPresent
		}
		method := item.Method
		if method == "" {
			method = MethodManual
		}
		res, err := s.Mark(ctx, session, item.StudentID, status, method, actor, Extra{Notes: item.Notes})
		if err != nil {
			failures = append(failures, BulkError{StudentID: item.StudentID, Reason: err.Error()})
			continue
		}
		results = append(results, res)
	}
	return results, failures
}

// SessionRecords returns all records of a session.
func (s *Service) SessionRecords(ctx context.Context, sessionID string) ([]Record, error) {
	return s.records.BySession(ctx, sessionID)
}

// StudentRecords returns a student's records, optionally filtered to one course.
func (s *Service) StudentRecords(ctx context.Context, studentID, courseID string) ([]Record, error) {
	return s.records.ByStudent(ctx, studentID, courseID)
}

// IsNotFound reports whether err is a missing-row failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
