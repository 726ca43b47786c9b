package attendance

import "errors"

// Typed failures surfaced to callers; the HTTP layer maps them to status
// codes. Channel delivery failures never appear here — notification
// dispatch must not block marking.
var (
	ErrSessionNotActive   = errors.New("attendance session is not active")
	ErrStudentNotEnrolled = errors.New("student is not enrolled in this course")
	ErrNotFound           = errors.New("not found")
)
