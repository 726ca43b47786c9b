package notify

import "time"

// Type classifies a notification.
type Type string

const (
	TypeAbsence       Type = "absence"
	TypeLowAttendance Type = "low_attendance"
	TypeMarked        Type = "attendance_marked"
	TypeGeneral       Type = "general"
)

// Priority levels for student notifications.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Channel names a delivery mechanism.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// Notification is a student-facing alert. It is never mutated after
// creation except for read state and send state.
type Notification struct {
	ID           string     `json:"id"`
	StudentID    string     `json:"student_id"`
	Type         Type       `json:"notification_type"`
	Priority     Priority   `json:"priority"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	AttendanceID *string    `json:"attendance_id,omitempty"`
	IsRead       bool       `json:"is_read"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	IsSent       bool       `json:"is_sent"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	SendEmail    bool       `json:"send_email"`
	SendSMS      bool       `json:"send_sms"`
	SendPush     bool       `json:"send_push"`
	EmailSent    bool       `json:"email_sent"`
	SMSSent      bool       `json:"sms_sent"`
	PushSent     bool       `json:"push_sent"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ParentNotification is the parent-facing copy of an alert.
type ParentNotification struct {
	ID        string     `json:"id"`
	ParentID  string     `json:"parent_id"`
	StudentID string     `json:"student_id"`
	Type      Type       `json:"notification_type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	EmailSent bool       `json:"email_sent"`
	SMSSent   bool       `json:"sms_sent"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Log is one append-only delivery-attempt entry. Rows are never updated
// after creation.
type Log struct {
	ID                   string     `json:"id"`
	NotificationID       *string    `json:"notification_id,omitempty"`
	ParentNotificationID *string    `json:"parent_notification_id,omitempty"`
	Channel              Channel    `json:"channel"`
	Recipient            string     `json:"recipient"`
	Status               string     `json:"status"`
	ErrorMessage         string     `json:"error_message,omitempty"`
	SentAt               *time.Time `json:"sent_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// Log statuses.
const (
	LogSent   = "sent"
	LogFailed = "failed"
)
