package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists sessions and attendance records in Postgres. It
// implements RecordStore.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateSession inserts a new session with a fresh UUID.
func (r *Repository) CreateSession(ctx context.Context, s *Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.SessionType == "" {
		s.SessionType = SessionManual
	}
	if s.Date.IsZero() {
		s.Date = time.Now().UTC()
	}
	s.IsActive = true
	s.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_sessions (id, course_id, faculty_id, session_date, start_time, end_time, session_type, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,TRUE,$8)
	`, s.ID, s.CourseID, s.FacultyID, s.Date, s.StartTime, s.EndTime, s.SessionType, s.CreatedAt)
	return err
}

// Session returns one session by id.
func (r *Repository) Session(ctx context.Context, id string) (Session, error) {
	var s Session
	err := r.db.QueryRowContext(ctx, `
		SELECT id, course_id, faculty_id, session_date, start_time, end_time, session_type, is_active, created_at
		FROM attendance_sessions WHERE id = $1
	`, id).Scan(&s.ID, &s.CourseID, &s.FacultyID, &s.Date, &s.StartTime, &s.EndTime, &s.SessionType, &s.IsActive, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return s, err
}

// DeactivateSession stops a session from accepting new marks.
func (r *Repository) DeactivateSession(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE attendance_sessions SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SessionsByCourse lists recent sessions of a course.
func (r *Repository) SessionsByCourse(ctx context.Context, courseID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, course_id, faculty_id, session_date, start_time, end_time, session_type, is_active, created_at
		FROM attendance_sessions
		WHERE course_id = $1
		ORDER BY session_date DESC, start_time DESC
		LIMIT $2
	`, courseID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.CourseID, &s.FacultyID, &s.Date, &s.StartTime, &s.EndTime, &s.SessionType, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Upsert writes a record atomically keyed by (session_id, student_id). On
// conflict the existing row is overwritten in place and its previous
// status returned; row identity and marked_at are preserved.
func (r *Repository) Upsert(ctx context.Context, rec Record) (Record, bool, Status, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	var inserted bool
	var prev sql.NullString
	err := r.db.QueryRowContext(ctx, `
		WITH prev AS (
			SELECT status FROM attendance_records
			WHERE session_id = $2 AND student_id = $3
		)
		INSERT INTO attendance_records AS a
			(id, session_id, student_id, status, verification_method, marked_by,
			 face_confidence, location_lat, location_lng, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (session_id, student_id) DO UPDATE SET
			status = EXCLUDED.status,
			verification_method = EXCLUDED.verification_method,
			marked_by = EXCLUDED.marked_by,
			face_confidence = EXCLUDED.face_confidence,
			location_lat = EXCLUDED.location_lat,
			location_lng = EXCLUDED.location_lng,
			notes = EXCLUDED.notes,
			updated_at = NOW()
		RETURNING a.id, a.marked_at, a.updated_at, (xmax = 0), (SELECT status FROM prev)
	`, rec.ID, rec.SessionID, rec.StudentID, rec.Status, rec.Method, rec.MarkedBy,
		rec.FaceConfidence, rec.LocationLat, rec.LocationLng, rec.Notes).
		Scan(&rec.ID, &rec.MarkedAt, &rec.UpdatedAt, &inserted, &prev)
	if err != nil {
		return Record{}, false, "", err
	}
	var prevStatus Status
	if prev.Valid {
		prevStatus = Status(prev.String)
	}
	return rec, inserted, prevStatus, nil
}

const recordCols = `id, session_id, student_id, status, verification_method, marked_at,
	marked_by, face_confidence, location_lat, location_lng, notes, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.Status, &rec.Method,
		&rec.MarkedAt, &rec.MarkedBy, &rec.FaceConfidence, &rec.LocationLat,
		&rec.LocationLng, &rec.Notes, &rec.UpdatedAt)
	return rec, err
}

// BySession returns all records of a session.
func (r *Repository) BySession(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordCols+` FROM attendance_records
		WHERE session_id = $1
		ORDER BY marked_at DESC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ByStudent returns a student's records, restricted to one course when
// courseID is non-empty.
func (r *Repository) ByStudent(ctx context.Context, studentID, courseID string) ([]Record, error) {
	query := `
		SELECT ` + prefixRecordCols() + `
		FROM attendance_records ar
		JOIN attendance_sessions s ON s.id = ar.session_id
		WHERE ar.student_id = $1`
	args := []any{studentID}
	if courseID != "" {
		query += ` AND s.course_id = $2`
		args = append(args, courseID)
	}
	query += ` ORDER BY s.session_date DESC, ar.marked_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Record returns one record by id.
func (r *Repository) Record(ctx context.Context, id string) (Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordCols+` FROM attendance_records WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func collectRecords(rows *sql.Rows) ([]Record, error) {
	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func prefixRecordCols() string {
	out := ""
	cols := []string{"id", "session_id", "student_id", "status", "verification_method",
		"marked_at", "marked_by", "face_confidence", "location_lat", "location_lng",
		"notes", "updated_at"}
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += "ar." + c
	}
	return out
}
