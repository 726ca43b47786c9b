package roster

import "time"

// Student is a registered student. Deactivation is a soft delete; the row
// and its attendance history stay.
type Student struct {
	ID           string     `json:"id"`
	StudentID    string     `json:"student_id"`
	RollNumber   string     `json:"roll_number"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Department   string     `json:"department,omitempty"`
	Semester     int        `json:"semester"`
	Section      string     `json:"section"`
	FaceEncoding []byte     `json:"-"`
	ParentID     *string    `json:"parent_id,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// FullName joins first and last name for notification copy.
func (s Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// Parent receives copies of absence and low-attendance alerts.
type Parent struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Relationship string    `json:"relationship"`
	CreatedAt    time.Time `json:"created_at"`
}

// Faculty owns courses and sessions. Courses survive faculty removal.
type Faculty struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Department string    `json:"department,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Course groups enrolled students for attendance tracking. Enrollment is a
// set with no history; it may be replaced wholesale.
type Course struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Department string    `json:"department,omitempty"`
	FacultyID  *string   `json:"faculty_id,omitempty"`
	Semester   int       `json:"semester"`
	Credits    int       `json:"credits"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}
