package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"campusattend/internal/attendance"
	"campusattend/internal/roster"
)

// Store is the persistence the dispatcher needs.
type Store interface {
	HasNotification(ctx context.Context, studentID, attendanceID string, typ Type) (bool, error)
	CreateNotification(ctx context.Context, n *Notification) error
	UpdateSendState(ctx context.Context, n *Notification) error
	CreateParentNotification(ctx context.Context, pn *ParentNotification) error
	UpdateParentSendState(ctx context.Context, pn *ParentNotification) error
	AppendLog(ctx context.Context, l *Log) error
}

// Directory resolves the people and courses referenced by alerts.
type Directory interface {
	Student(ctx context.Context, id string) (roster.Student, error)
	Parent(ctx context.Context, id string) (roster.Parent, error)
	Course(ctx context.Context, id string) (roster.Course, error)
	ActiveStudentIDs(ctx context.Context) ([]string, error)
}

// RecordSource feeds the bulk and sweep paths.
type RecordSource interface {
	BySession(ctx context.Context, sessionID string) ([]attendance.Record, error)
	ByStudent(ctx context.Context, studentID, courseID string) ([]attendance.Record, error)
}

// Outcome distinguishes a created notification from a suppressed
// duplicate; neither is an error.
type Outcome struct {
	Created      bool          `json:"created"`
	Notification *Notification `json:"notification,omitempty"`
}

// Dispatcher reacts to attendance status transitions and fans alerts out
// to students and parents over the configured channels. Channel failures
// are recorded in the log and never propagated: marking attendance must
// not be blocked by delivery.
type Dispatcher struct {
	store   Store
	dir     Directory
	records RecordSource
	email   EmailSender
	sms     SMSSender
	push    PushSender
}

// NewDispatcher wires the dispatcher with its collaborators.
func NewDispatcher(store Store, dir Directory, records RecordSource, email EmailSender, sms SMSSender, push PushSender) *Dispatcher {
	return &Dispatcher{store: store, dir: dir, records: records, email: email, sms: sms, push: push}
}

// OnMark emits an absence alert for a record that entered absent. Replays
// are suppressed: one notification per (student, attendance, absence),
// ever. Non-absent records are a no-op.
func (d *Dispatcher) OnMark(ctx context.Context, session attendance.Session, rec attendance.Record) (Outcome, error) {
	if rec.Status != attendance.StatusAbsent {
		return Outcome{}, nil
	}
	exists, err := d.store.HasNotification(ctx, rec.StudentID, rec.ID, TypeAbsence)
	if err != nil {
		return Outcome{}, fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		return Outcome{Created: false}, nil
	}

	student, err := d.dir.Student(ctx, rec.StudentID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load student: %w", err)
	}
	course, err := d.dir.Course(ctx, session.CourseID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load course: %w", err)
	}

	when := session.Date.Format("January 2, 2006")
	n := &Notification{
		StudentID:    rec.StudentID,
		Type:         TypeAbsence,
		Priority:     PriorityHigh,
		Title:        fmt.Sprintf("Absence Alert: %s", course.Code),
		Message: fmt.Sprintf(
			"Dear %s,\n\nYou have been marked absent for %s - %s on %s.\n\nIf this is an error, please contact your faculty.",
			student.FirstName, course.Code, course.Name, when),
		AttendanceID: &rec.ID,
		SendEmail:    true,
		SendPush:     true,
	}
	if err := d.store.CreateNotification(ctx, n); err != nil {
		return Outcome{}, fmt.Errorf("create notification: %w", err)
	}
	notificationsCreated.WithLabelValues(string(TypeAbsence)).Inc()
	d.deliver(ctx, n, student)

	if student.ParentID != nil {
		d.notifyParent(ctx, student, TypeAbsence,
			fmt.Sprintf("Child Absence: %s", student.FullName()),
			fmt.Sprintf("Your child %s was marked absent for %s on %s.", student.FullName(), course.Code, when))
	}

	return Outcome{Created: true, Notification: n}, nil
}

// OnBulkMark emits absence alerts for every absent record in a session.
// Duplicate suppression applies per record independently. Returns how many
// alerts were created.
func (d *Dispatcher) OnBulkMark(ctx context.Context, session attendance.Session) (int, error) {
	recs, err := d.records.BySession(ctx, session.ID)
	if err != nil {
		return 0, fmt.Errorf("load records: %w", err)
	}
	created := 0
	for _, rec := range recs {
		if rec.Status != attendance.StatusAbsent {
			continue
		}
		out, err := d.OnMark(ctx, session, rec)
		if err != nil {
			log.Printf("absence alert failed for student %s: %v", rec.StudentID, err)
			continue
		}
		if out.Created {
			created++
		}
	}
	return created, nil
}

// Confirm emits a low-priority push confirmation for a present or late
// mark, used by the face-recognition flow. No dedup: each re-mark confirms
// again.
func (d *Dispatcher) Confirm(ctx context.Context, session attendance.Session, rec attendance.Record) (Outcome, error) {
	if rec.Status != attendance.StatusPresent && rec.Status != attendance.StatusLate {
		return Outcome{}, nil
	}
	student, err := d.dir.Student(ctx, rec.StudentID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load student: %w", err)
	}
	course, err := d.dir.Course(ctx, session.CourseID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load course: %w", err)
	}

	n := &Notification{
		StudentID: rec.StudentID,
		Type:      TypeMarked,
		Priority:  PriorityLow,
		Title:     fmt.Sprintf("Attendance Confirmed: %s", course.Code),
		Message: fmt.Sprintf(
			"Your attendance has been marked as %s for %s on %s.\n\nVerification method: %s",
			rec.Status, course.Code, session.Date.Format("January 2, 2006"), rec.Method),
		AttendanceID: &rec.ID,
		SendPush:     true,
	}
	if err := d.store.CreateNotification(ctx, n); err != nil {
		return Outcome{}, fmt.Errorf("create notification: %w", err)
	}
	notificationsCreated.WithLabelValues(string(TypeMarked)).Inc()
	d.deliver(ctx, n, student)
	return Outcome{Created: true, Notification: n}, nil
}

// LowAttendanceSweep warns every active student whose overall percentage
// is below threshold. Students with zero records are skipped. There is no
// dedup window across sweeps; scheduling is the only throttle. Returns the
// number of warnings created.
func (d *Dispatcher) LowAttendanceSweep(ctx context.Context, threshold float64) (int, error) {
	ids, err := d.dir.ActiveStudentIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("load students: %w", err)
	}
	warned := 0
	for _, id := range ids {
		recs, err := d.records.ByStudent(ctx, id, "")
		if err != nil {
			log.Printf("sweep: load records for %s: %v", id, err)
			continue
		}
		st := attendance.Summarize(recs)
		if st.Total == 0 || st.Percentage >= threshold {
			continue
		}
		if err := d.warnLowAttendance(ctx, id, st.Percentage, threshold); err != nil {
			log.Printf("sweep: warn %s: %v", id, err)
			continue
		}
		warned++
	}
	log.Printf("low attendance sweep complete: %d warnings", warned)
	return warned, nil
}

func (d *Dispatcher) warnLowAttendance(ctx context.Context, studentID string, percentage, threshold float64) error {
	student, err := d.dir.Student(ctx, studentID)
	if err != nil {
		return fmt.Errorf("load student: %w", err)
	}

	n := &Notification{
		StudentID: studentID,
		Type:      TypeLowAttendance,
		Priority:  PriorityUrgent,
		Title:     "Low Attendance Warning",
		Message: fmt.Sprintf(
			"Dear %s,\n\nYour current attendance is %.1f%%, which is below the required %.0f%%.\n\nPlease ensure regular attendance to avoid academic penalties.",
			student.FirstName, percentage, threshold),
		SendEmail: true,
		SendSMS:   true,
		SendPush:  true,
	}
	if err := d.store.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	notificationsCreated.WithLabelValues(string(TypeLowAttendance)).Inc()
	d.deliver(ctx, n, student)

	if student.ParentID != nil {
		d.notifyParent(ctx, student, TypeLowAttendance,
			fmt.Sprintf("Low Attendance Warning: %s", student.FullName()),
			fmt.Sprintf("Your child %s's attendance is currently at %.1f%%, below the required %.0f%%.",
				student.FullName(), percentage, threshold))
	}
	return nil
}

// deliver attempts every channel enabled on the notification. A failed
// channel is logged with its error and the remaining channels still run.
func (d *Dispatcher) deliver(ctx context.Context, n *Notification, student roster.Student) {
	if n.SendEmail {
		err := d.email.SendEmail(ctx, student.Email, n.Title, n.Message)
		d.logAttempt(ctx, &n.ID, nil, ChannelEmail, student.Email, err)
		if err == nil {
			n.EmailSent = true
		}
	}
	if n.SendSMS && student.Phone != "" {
		err := d.sms.SendSMS(ctx, student.Phone, n.Title+"\n"+n.Message)
		d.logAttempt(ctx, &n.ID, nil, ChannelSMS, student.Phone, err)
		if err == nil {
			n.SMSSent = true
		}
	}
	if n.SendPush {
		deviceRef := "device_" + student.ID
		err := d.push.SendPush(ctx, deviceRef, n.Title, n.Message)
		d.logAttempt(ctx, &n.ID, nil, ChannelPush, deviceRef, err)
		if err == nil {
			n.PushSent = true
		}
	}

	now := time.Now().UTC()
	n.IsSent = true
	n.SentAt = &now
	if err := d.store.UpdateSendState(ctx, n); err != nil {
		log.Printf("update send state for %s: %v", n.ID, err)
	}
}

func (d *Dispatcher) notifyParent(ctx context.Context, student roster.Student, typ Type, title, message string) {
	parent, err := d.dir.Parent(ctx, *student.ParentID)
	if err != nil {
		log.Printf("load parent for student %s: %v", student.ID, err)
		return
	}

	pn := &ParentNotification{
		ParentID:  parent.ID,
		StudentID: student.ID,
		Type:      typ,
		Title:     title,
		Message:   "Dear " + parent.Name + ",\n\n" + message,
	}
	if err := d.store.CreateParentNotification(ctx, pn); err != nil {
		log.Printf("create parent notification: %v", err)
		return
	}

	if err := d.email.SendEmail(ctx, parent.Email, pn.Title, pn.Message); err != nil {
		d.logAttempt(ctx, nil, &pn.ID, ChannelEmail, parent.Email, err)
	} else {
		d.logAttempt(ctx, nil, &pn.ID, ChannelEmail, parent.Email, nil)
		pn.EmailSent = true
	}
	if parent.Phone != "" {
		if err := d.sms.SendSMS(ctx, parent.Phone, pn.Title); err != nil {
			d.logAttempt(ctx, nil, &pn.ID, ChannelSMS, parent.Phone, err)
		} else {
			d.logAttempt(ctx, nil, &pn.ID, ChannelSMS, parent.Phone, nil)
			pn.SMSSent = true
		}
	}

	now := time.Now().UTC()
	pn.SentAt = &now
	if err := d.store.UpdateParentSendState(ctx, pn); err != nil {
		log.Printf("update parent send state for %s: %v", pn.ID, err)
	}
}

// logAttempt appends one audit row per channel attempt.
func (d *Dispatcher) logAttempt(ctx context.Context, notificationID, parentNotificationID *string, ch Channel, recipient string, sendErr error) {
	entry := &Log{
		NotificationID:       notificationID,
		ParentNotificationID: parentNotificationID,
		Channel:              ch,
		Recipient:            recipient,
		Status:               LogSent,
	}
	if sendErr != nil {
		entry.Status = LogFailed
		entry.ErrorMessage = sendErr.Error()
		log.Printf("channel %s delivery to %s failed: %v", ch, recipient, sendErr)
	} else {
		now := time.Now().UTC()
		entry.SentAt = &now
	}
	channelAttempts.WithLabelValues(string(ch), entry.Status).Inc()
	if err := d.store.AppendLog(ctx, entry); err != nil {
		log.Printf("append notification log: %v", err)
	}
}
