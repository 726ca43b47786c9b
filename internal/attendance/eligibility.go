package attendance

// CheckEligibility decides whether a mark attempt is permitted. It has no
// side effects and is called before every mark, single or bulk. The
// session gate is checked first so a closed session reports the same
// reason for every student.
func CheckEligibility(session Session, enrolledIDs []string, studentID string) error {
	if !session.IsActive {
		return ErrSessionNotActive
	}
	for _, id := range enrolledIDs {
		if id == studentID {
			return nil
		}
	}
	return ErrStudentNotEnrolled
}
