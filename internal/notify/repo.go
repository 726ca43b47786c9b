package notify

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Repository persists notifications in Postgres. It implements Store.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// HasNotification reports whether an alert already exists for the
// (student, attendance, type) key. This is the dedup gate.
func (r *Repository) HasNotification(ctx context.Context, studentID, attendanceID string, typ Type) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE student_id = $1 AND attendance_id = $2 AND notification_type = $3
		)
	`, studentID, attendanceID, typ).Scan(&exists)
	return exists, err
}

// CreateNotification inserts a new notification.
func (r *Repository) CreateNotification(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	n.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, student_id, notification_type, priority, title, message,
			attendance_id, send_email, send_sms, send_push, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, n.ID, n.StudentID, n.Type, n.Priority, n.Title, n.Message,
		n.AttendanceID, n.SendEmail, n.SendSMS, n.SendPush, n.CreatedAt)
	return err
}

// UpdateSendState flips the per-channel sent flags after delivery.
func (r *Repository) UpdateSendState(ctx context.Context, n *Notification) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_sent = $2, sent_at = $3, email_sent = $4, sms_sent = $5, push_sent = $6
		WHERE id = $1
	`, n.ID, n.IsSent, n.SentAt, n.EmailSent, n.SMSSent, n.PushSent)
	return err
}

// CreateParentNotification inserts the parent-facing copy.
func (r *Repository) CreateParentNotification(ctx context.Context, pn *ParentNotification) error {
	if pn.ID == "" {
		pn.ID = uuid.NewString()
	}
	pn.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO parent_notifications (id, parent_id, student_id, notification_type, title, message, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, pn.ID, pn.ParentID, pn.StudentID, pn.Type, pn.Title, pn.Message, pn.CreatedAt)
	return err
}

// UpdateParentSendState records delivery flags on the parent copy.
func (r *Repository) UpdateParentSendState(ctx context.Context, pn *ParentNotification) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE parent_notifications
		SET email_sent = $2, sms_sent = $3, sent_at = $4
		WHERE id = $1
	`, pn.ID, pn.EmailSent, pn.SMSSent, pn.SentAt)
	return err
}

// AppendLog writes one delivery-attempt audit row.
func (r *Repository) AppendLog(ctx context.Context, l *Log) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_logs (id, notification_id, parent_notification_id, channel,
			recipient, status, error_message, sent_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, l.ID, l.NotificationID, l.ParentNotificationID, l.Channel,
		l.Recipient, l.Status, l.ErrorMessage, l.SentAt, l.CreatedAt)
	return err
}

const notificationCols = `id, student_id, notification_type, priority, title, message,
	attendance_id, is_read, read_at, is_sent, sent_at, send_email, send_sms, send_push,
	email_sent, sms_sent, push_sent, created_at`

// ListByStudent returns a student's notifications, newest first.
func (r *Repository) ListByStudent(ctx context.Context, studentID string, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + notificationCols + ` FROM notifications WHERE student_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.StudentID, &n.Type, &n.Priority, &n.Title, &n.Message,
			&n.AttendanceID, &n.IsRead, &n.ReadAt, &n.IsSent, &n.SentAt,
			&n.SendEmail, &n.SendSMS, &n.SendPush,
			&n.EmailSent, &n.SMSSent, &n.PushSent, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead sets the read flag on one notification.
func (r *Repository) MarkRead(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = NOW() WHERE id = $1 AND NOT is_read`, id)
	return err
}

// MarkAllRead sets the read flag on all of a student's notifications.
func (r *Repository) MarkAllRead(ctx context.Context, studentID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = NOW() WHERE student_id = $1 AND NOT is_read`, studentID)
	return err
}

// LogsFor returns the delivery audit trail for a notification.
func (r *Repository) LogsFor(ctx context.Context, notificationID string) ([]Log, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, notification_id, parent_notification_id, channel, recipient, status,
			error_message, sent_at, created_at
		FROM notification_logs
		WHERE notification_id = $1
		ORDER BY created_at
	`, notificationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Log
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.NotificationID, &l.ParentNotificationID, &l.Channel,
			&l.Recipient, &l.Status, &l.ErrorMessage, &l.SentAt, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
