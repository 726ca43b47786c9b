package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"campusattend/internal/attendance"
	"campusattend/internal/roster"
)

// memStore is an in-memory Store keyed the same way the Postgres partial
// index enforces absence dedup.
type memStore struct {
	notifications []*Notification
	parents       []*ParentNotification
	logs          []*Log
	seq           int
}

func (m *memStore) HasNotification(_ context.Context, studentID, attendanceID string, typ Type) (bool, error) {
	for _, n := range m.notifications {
		if n.StudentID == studentID && n.Type == typ && n.AttendanceID != nil && *n.AttendanceID == attendanceID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateNotification(_ context.Context, n *Notification) error {
	m.seq++
	n.ID = fmt.Sprintf("n-%d", m.seq)
	n.CreatedAt = time.Now().UTC()
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *memStore) UpdateSendState(_ context.Context, _ *Notification) error { return nil }

func (m *memStore) CreateParentNotification(_ context.Context, pn *ParentNotification) error {
	m.seq++
	pn.ID = fmt.Sprintf("pn-%d", m.seq)
	pn.CreatedAt = time.Now().UTC()
	m.parents = append(m.parents, pn)
	return nil
}

func (m *memStore) UpdateParentSendState(_ context.Context, _ *ParentNotification) error { return nil }

func (m *memStore) AppendLog(_ context.Context, l *Log) error {
	m.logs = append(m.logs, l)
	return nil
}

func (m *memStore) logCount(status string) int {
	count := 0
	for _, l := range m.logs {
		if l.Status == status {
			count++
		}
	}
	return count
}

// memDirectory serves a fixed set of people.
type memDirectory struct {
	students map[string]roster.Student
	parents  map[string]roster.Parent
	courses  map[string]roster.Course
}

func (m *memDirectory) Student(_ context.Context, id string) (roster.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return roster.Student{}, roster.ErrNotFound
	}
	return s, nil
}

func (m *memDirectory) Parent(_ context.Context, id string) (roster.Parent, error) {
	p, ok := m.parents[id]
	if !ok {
		return roster.Parent{}, roster.ErrNotFound
	}
	return p, nil
}

func (m *memDirectory) Course(_ context.Context, id string) (roster.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return roster.Course{}, roster.ErrNotFound
	}
	return c, nil
}

func (m *memDirectory) ActiveStudentIDs(_ context.Context) ([]string, error) {
	var ids []string
	for id, s := range m.students {
		if s.IsActive {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// memSource returns canned attendance records.
type memSource struct {
	bySession map[string][]attendance.Record
	byStudent map[string][]attendance.Record
}

func (m *memSource) BySession(_ context.Context, sessionID string) ([]attendance.Record, error) {
	return m.bySession[sessionID], nil
}

func (m *memSource) ByStudent(_ context.Context, studentID, _ string) ([]attendance.Record, error) {
	return m.byStudent[studentID], nil
}

// failingEmail always errors; used to prove delivery is fail-open.
type failingEmail struct{}

func (failingEmail) SendEmail(context.Context, string, string, string) error {
	return errors.New("smtp down")
}

func testFixture() (*memStore, *memDirectory, *memSource, attendance.Session) {
	parentID := "p1"
	dir := &memDirectory{
		students: map[string]roster.Student{
			"a": {ID: "a", FirstName: "Asha", LastName: "Rao", Email: "asha@example.edu", Phone: "555-0101", ParentID: &parentID, IsActive: true},
			"b": {ID: "b", FirstName: "Ben", Email: "ben@example.edu", IsActive: true},
		},
		parents: map[string]roster.Parent{
			"p1": {ID: "p1", Name: "Meera Rao", Email: "meera@example.edu", Phone: "555-0199"},
		},
		courses: map[string]roster.Course{
			"c1": {ID: "c1", Code: "CS101", Name: "Intro to CS"},
		},
	}
	session := attendance.Session{
		ID:       "s1",
		CourseID: "c1",
		Date:     time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		IsActive: true,
	}
	return &memStore{}, dir, &memSource{
		bySession: make(map[string][]attendance.Record),
		byStudent: make(map[string][]attendance.Record),
	}, session
}

func TestOnMark_AbsenceDedupSuppressesReplay(t *testing.T) {
	store, dir, src, session := testFixture()
	d := NewDispatcher(store, dir, src, SimulatedEmail{}, SimulatedSMS{}, SimulatedPush{})
	ctx := context.Background()
	rec := attendance.Record{ID: "rec-1", SessionID: "s1", StudentID: "b", Status: attendance.StatusAbsent}

	out, err := d.OnMark(ctx, session, rec)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if !out.Created || out.Notification == nil {
		t.Fatalf("first call should create: %+v", out)
	}
	if out.Notification.Type != TypeAbsence || out.Notification.Priority != PriorityHigh {
		t.Fatalf("wrong alert shape: %+v", out.Notification)
	}
	logsAfterFirst := len(store.logs)

	out, err = d.OnMark(ctx, session, rec)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if out.Created {
		t.Fatal("replay must be suppressed")
	}
	if len(store.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(store.notifications))
	}
	if len(store.logs) != logsAfterFirst {
		t.Fatal("suppressed replay must not attempt delivery")
	}
}

func TestOnMark_NonAbsentIsNoOp(t *testing.T) {
	store, dir, src, session := testFixture()
	d := NewDispatcher(store, dir, src, SimulatedEmail{}, SimulatedSMS{}, SimulatedPush{})

	for _, status := range []attendance.Status{attendance.StatusPresent, attendance.StatusLate, attendance.StatusExcused} {
		rec := attendance.Record{ID: "rec-1", SessionID: "s1", StudentID: "b", Status: status}
		out, err := d.OnMark(context.Background(), session, rec)
		if err != nil {
			t.Fatalf("%s: %v", status, err)
		}
		if out.Created {
			t.Fatalf("%s must not create an absence alert", status)
		}
	}
	if len(store.notifications) != 0 {
		t.Fatalf("notifications = %d, want 0", len(store.notifications))
	}
}

func TestOnMark_ParentFanOut(t *testing.T) {
	store, dir, src, session := testFixture()
	d := NewDispatcher(store, dir, src, SimulatedEmail{}, SimulatedSMS{}, SimulatedPush{})
	ctx := context.Background()

	// a has a parent on file, b does not.
	if _, err := d.OnMark(ctx, session, attendance.Record{ID: "rec-1", StudentID: "a", Status: attendance.StatusAbsent}); err != nil {
		t.Fatalf("mark a: %v", err)
	}
	if _, err := d.OnMark(ctx, session, attendance.Record{ID: "rec-2", StudentID: "b", Status: attendance.StatusAbsent}); err != nil {
		t.Fatalf("mark b: %v", err)
	}

	if len(store.parents) != 1 {
		t.Fatalf("parent notifications = %d, want 1", len(store.parents))
	}
	pn := store.parents[0]
	if pn.ParentID != "p1" || pn.StudentID != "a" || pn.Type != TypeAbsence {
		t.Fatalf("parent notification wrong: %+v", pn)
	}
	if !pn.EmailSent || !pn.SMSSent {
		t.Fatalf("parent channels not delivered: %+v", pn)
	}
}

func TestDeliver_FailedChannelDoesNotBlockOthers(t *testing.T) {
	store, dir, src, session := testFixture()
	d := NewDispatcher(store, dir, src, failingEmail{}, SimulatedSMS{}, SimulatedPush{})
	ctx := context.Background()

	out, err := d.OnMark(ctx, session, attendance.Record{ID: "rec-1", StudentID: "b", Status: attendance.StatusAbsent})
	if err != nil {
		t.Fatalf("channel failure must not surface as an error: %v", err)
	}
	if !out.Created {
		t.Fatal("alert should still be created")
	}

	n := out.Notification
	if n.EmailSent {
		t.Fatal("email flagged sent despite failure")
	}
	if !n.PushSent {
		t.Fatal("push should still have run after the email failure")
	}
	if !n.IsSent {
		t.Fatal("notification send state should finalize")
	}
	if store.logCount(LogFailed) != 1 || store.logCount(LogSent) != 1 {
		t.Fatalf("logs sent=%d failed=%d, want 1 and 1", store.logCount(LogSent), store.logCount(LogFailed))
	}
	for _, l := range store.logs {
		if l.Status == LogFailed && l.ErrorMessage == "" {
			t.Fatal("failed log row missing error message")
		}
	}
}

func TestOnBulkMark_AlertsAbsentRecordsOnly(t *testing.T) {
	store, dir, src, session := testFixture()
	d := NewDispatcher(store, dir, src, SimulatedEmail{}, SimulatedSMS{}, SimulatedPush{})
	src.bySession["s1"] = []attendance.Record{
		{ID: "rec-1", SessionID: "s1", StudentID: "a", Status: attendance.StatusPresent},
		{ID: "rec-2", SessionID: "s1", StudentID: "b", Status: attendance.StatusAbsent},
	}

	created, err := d.OnBulkMark(context.Background(), session)
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	// Re-running the bulk path creates nothing new.
	created, err = d.OnBulkMark(context.Background(), session)
	if err != nil {
		t.Fatalf("bulk replay: %v", err)
	}
	if created != 0 || len(store.notifications) != 1 {
		t.Fatalf("replay created=%d notifications=%d, want 0 and 1", created, len(store.notifications))
	}
}

func TestConfirm_PushOnlyAndNoDedup(t *testing.T) {
	store, dir, src, session := testFixture()
	d := NewDispatcher(store, dir, src, SimulatedEmail{}, SimulatedSMS{}, SimulatedPush{})
	ctx := context.Background()
	rec := attendance.Record{ID: "rec-1", SessionID: "s1", StudentID: "a", Status: attendance.StatusPresent, Method: attendance.MethodFace}

	for i := 0; i < 2; i++ {
		out, err := d.Confirm(ctx, session, rec)
		if err != nil {
			t.Fatalf("confirm %d: %v", i, err)
		}
		if !out.Created {
			t.Fatalf("confirm %d suppressed; confirmations have no dedup", i)
		}
		if out.Notification.SendEmail || out.Notification.SendSMS || !out.Notification.SendPush {
			t.Fatalf("confirmation channels wrong: %+v", out.Notification)
		}
		if out.Notification.Priority != PriorityLow {
			t.Fatalf("priority = %s, want low", out.Notification.Priority)
		}
	}
	if len(store.notifications) != 2 {
		t.Fatalf("notifications = %d, want 2", len(store.notifications))
	}

	out, err := d.Confirm(ctx, session, attendance.Record{ID: "rec-2", StudentID: "a", Status: attendance.StatusAbsent})
	if err != nil || out.Created {
		t.Fatalf("absent record must not confirm: %+v, %v", out, err)
	}
}

func TestLowAttendanceSweep_SkipsHealthyAndEmptyHistories(t *testing.T) {
	store, dir, src, _ := testFixture()
	d := NewDispatcher(store, dir, src, SimulatedEmail{}, SimulatedSMS{}, SimulatedPush{})

	// a: 1 of 4 credited (25%), below threshold. b: no records, skipped.
	src.byStudent["a"] = []attendance.Record{
		{Status: attendance.StatusPresent},
		{Status: attendance.StatusAbsent},
		{Status: attendance.StatusAbsent},
		{Status: attendance.StatusAbsent},
	}

	warned, err := d.LowAttendanceSweep(context.Background(), 75.0)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if warned != 1 {
		t.Fatalf("warned = %d, want 1", warned)
	}
	if len(store.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(store.notifications))
	}
	n := store.notifications[0]
	if n.StudentID != "a" || n.Type != TypeLowAttendance || n.Priority != PriorityUrgent {
		t.Fatalf("warning wrong: %+v", n)
	}
	if !n.SendEmail || !n.SendSMS || !n.SendPush {
		t.Fatalf("warning must use all channels: %+v", n)
	}

	// There is no sweep dedup window: the next run warns again.
	warned, err = d.LowAttendanceSweep(context.Background(), 75.0)
	if err != nil || warned != 1 {
		t.Fatalf("second sweep warned=%d err=%v, want 1 and nil", warned, err)
	}
}
