package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// Repository persists roster data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const studentCols = `id, student_id, roll_number, first_name, last_name, email, phone,
	department, semester, section, face_encoding, parent_id, is_active, created_at, updated_at`

func scanStudent(row interface{ Scan(...any) error }) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.StudentID, &s.RollNumber, &s.FirstName, &s.LastName,
		&s.Email, &s.Phone, &s.Department, &s.Semester, &s.Section,
		&s.FaceEncoding, &s.ParentID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// CreateStudent inserts a new student.
func (r *Repository) CreateStudent(ctx context.Context, s *Student) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Semester <= 0 {
		s.Semester = 1
	}
	if s.Section == "" {
		s.Section = "A"
	}
	now := time.Now().UTC()
	s.IsActive = true
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (id, student_id, roll_number, first_name, last_name, email, phone,
			department, semester, section, parent_id, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,TRUE,$12,$12)
	`, s.ID, s.StudentID, s.RollNumber, s.FirstName, s.LastName, s.Email, s.Phone,
		s.Department, s.Semester, s.Section, s.ParentID, now)
	return err
}

// Student returns one student by id.
func (r *Repository) Student(ctx context.Context, id string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE id = $1`, id)
	s, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	return s, err
}

// DeactivateStudent soft-deletes a student.
func (r *Repository) DeactivateStudent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE students SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFaceEncoding stores the opaque encoding produced by the biometric oracle.
func (r *Repository) SetFaceEncoding(ctx context.Context, id string, encoding []byte) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE students SET face_encoding = $2, updated_at = NOW() WHERE id = $1`, id, encoding)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ActiveStudentIDs lists all active students, for the low-attendance sweep.
func (r *Repository) ActiveStudentIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM students WHERE is_active ORDER BY roll_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Parent returns one parent by id.
func (r *Repository) Parent(ctx context.Context, id string) (Parent, error) {
	var p Parent
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, relationship, created_at FROM parents WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Relationship, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Parent{}, ErrNotFound
	}
	return p, err
}

// CreateParent inserts a new parent.
func (r *Repository) CreateParent(ctx context.Context, p *Parent) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO parents (id, name, email, phone, relationship, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, p.ID, p.Name, p.Email, p.Phone, p.Relationship, p.CreatedAt)
	return err
}

// Faculty returns one faculty member by id.
func (r *Repository) Faculty(ctx context.Context, id string) (Faculty, error) {
	var f Faculty
	err := r.db.QueryRowContext(ctx, `
		SELECT id, employee_id, name, email, department, is_active, created_at
		FROM faculty WHERE id = $1
	`, id).Scan(&f.ID, &f.EmployeeID, &f.Name, &f.Email, &f.Department, &f.IsActive, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Faculty{}, ErrNotFound
	}
	return f, err
}

// CreateFaculty inserts a new faculty member.
func (r *Repository) CreateFaculty(ctx context.Context, f *Faculty) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.IsActive = true
	f.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO faculty (id, employee_id, name, email, department, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5,TRUE,$6)
	`, f.ID, f.EmployeeID, f.Name, f.Email, f.Department, f.CreatedAt)
	return err
}

// CreateCourse inserts a new course.
func (r *Repository) CreateCourse(ctx context.Context, c *Course) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Semester <= 0 {
		c.Semester = 1
	}
	if c.Credits <= 0 {
		c.Credits = 3
	}
	c.IsActive = true
	c.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO courses (id, code, name, department, faculty_id, semester, credits, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,TRUE,$8)
	`, c.ID, c.Code, c.Name, c.Department, c.FacultyID, c.Semester, c.Credits, c.CreatedAt)
	return err
}

// Course returns one course by id.
func (r *Repository) Course(ctx context.Context, id string) (Course, error) {
	var c Course
	err := r.db.QueryRowContext(ctx, `
		SELECT id, code, name, department, faculty_id, semester, credits, is_active, created_at
		FROM courses WHERE id = $1
	`, id).Scan(&c.ID, &c.Code, &c.Name, &c.Department, &c.FacultyID, &c.Semester, &c.Credits, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, ErrNotFound
	}
	return c, err
}

// CoursesForStudent lists the active courses a student is enrolled in.
func (r *Repository) CoursesForStudent(ctx context.Context, studentID string) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.code, c.name, c.department, c.faculty_id, c.semester, c.credits, c.is_active, c.created_at
		FROM course_students cs
		JOIN courses c ON c.id = cs.course_id
		WHERE cs.student_id = $1 AND c.is_active
		ORDER BY c.code
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var courses []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Department, &c.FacultyID, &c.Semester, &c.Credits, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// ReplaceEnrollment clears and re-adds the course's student set. No
// enrollment history is kept.
func (r *Repository) ReplaceEnrollment(ctx context.Context, courseID string, studentIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM course_students WHERE course_id = $1`, courseID); err != nil {
		return err
	}
	for _, sid := range studentIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO course_students (course_id, student_id)
			VALUES ($1, $2)
			ON CONFLICT (course_id, student_id) DO NOTHING
		`, courseID, sid); err != nil {
			return fmt.Errorf("enroll %s: %w", sid, err)
		}
	}
	return tx.Commit()
}

// EnrolledStudentIDs lists active students on the course roster.
func (r *Repository) EnrolledStudentIDs(ctx context.Context, courseID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id
		FROM course_students cs
		JOIN students s ON s.id = cs.student_id
		WHERE cs.course_id = $1 AND s.is_active
		ORDER BY s.roll_number
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// EnrolledStudents lists active enrolled students with full rows, used as
// the candidate set for face identification.
func (r *Repository) EnrolledStudents(ctx context.Context, courseID string) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+prefixCols("s", studentCols)+`
		FROM course_students cs
		JOIN students s ON s.id = cs.student_id
		WHERE cs.course_id = $1 AND s.is_active
		ORDER BY s.roll_number
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var students []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func prefixCols(alias, cols string) string {
	out := alias + "."
	for _, ch := range cols {
		if ch == ',' {
			out += ", " + alias + "."
			continue
		}
		if ch == ' ' || ch == '\n' || ch == '\t' {
			continue
		}
		out += string(ch)
	}
	return out
}
