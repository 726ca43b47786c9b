package store

import "database/sql"

// EnsureSchema creates all tables when they do not exist yet.
//
// Ownership rules are encoded in the cascade clauses: sessions own their
// attendance records, students own their records and notifications, and
// courses reference students through a join table without owning them.
// The UNIQUE (session_id, student_id) constraint backs the ledger's
// atomic upsert.
func EnsureSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS parents (
		id           UUID PRIMARY KEY,
		name         TEXT NOT NULL,
		email        TEXT NOT NULL,
		phone        TEXT NOT NULL DEFAULT '',
		relationship TEXT NOT NULL DEFAULT 'guardian',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS students (
		id            UUID PRIMARY KEY,
		student_id    TEXT UNIQUE NOT NULL,
		roll_number   TEXT NOT NULL DEFAULT '',
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL DEFAULT '',
		email         TEXT NOT NULL,
		phone         TEXT NOT NULL DEFAULT '',
		department    TEXT NOT NULL DEFAULT '',
		semester      INT NOT NULL DEFAULT 1,
		section       TEXT NOT NULL DEFAULT 'A',
		face_encoding BYTEA,
		parent_id     UUID REFERENCES parents(id) ON DELETE SET NULL,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS faculty (
		id          UUID PRIMARY KEY,
		employee_id TEXT UNIQUE NOT NULL,
		name        TEXT NOT NULL,
		email       TEXT NOT NULL DEFAULT '',
		department  TEXT NOT NULL DEFAULT '',
		is_active   BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS courses (
		id         UUID PRIMARY KEY,
		code       TEXT UNIQUE NOT NULL,
		name       TEXT NOT NULL,
		department TEXT NOT NULL DEFAULT '',
		faculty_id UUID REFERENCES faculty(id) ON DELETE SET NULL,
		semester   INT NOT NULL DEFAULT 1,
		credits    INT NOT NULL DEFAULT 3,
		is_active  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS course_students (
		course_id  UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		PRIMARY KEY (course_id, student_id)
	);

	CREATE TABLE IF NOT EXISTS attendance_sessions (
		id           UUID PRIMARY KEY,
		course_id    UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		faculty_id   UUID REFERENCES faculty(id) ON DELETE SET NULL,
		session_date DATE NOT NULL,
		start_time   TIME NOT NULL,
		end_time     TIME,
		session_type TEXT NOT NULL DEFAULT 'manual',
		is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_course_date
		ON attendance_sessions(course_id, session_date, start_time);

	CREATE TABLE IF NOT EXISTS attendance_records (
		id                  UUID PRIMARY KEY,
		session_id          UUID NOT NULL REFERENCES attendance_sessions(id) ON DELETE CASCADE,
		student_id          UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		status              TEXT NOT NULL DEFAULT 'absent',
		verification_method TEXT NOT NULL DEFAULT 'manual',
		marked_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		marked_by           UUID,
		face_confidence     DOUBLE PRECISION,
		location_lat        DOUBLE PRECISION,
		location_lng        DOUBLE PRECISION,
		notes               TEXT NOT NULL DEFAULT '',
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (session_id, student_id)
	);
	CREATE INDEX IF NOT EXISTS idx_records_student ON attendance_records(student_id);

	CREATE TABLE IF NOT EXISTS notifications (
		id                UUID PRIMARY KEY,
		student_id        UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		notification_type TEXT NOT NULL,
		priority          TEXT NOT NULL DEFAULT 'medium',
		title             TEXT NOT NULL,
		message           TEXT NOT NULL,
		attendance_id     UUID REFERENCES attendance_records(id) ON DELETE SET NULL,
		is_read           BOOLEAN NOT NULL DEFAULT FALSE,
		read_at           TIMESTAMPTZ,
		is_sent           BOOLEAN NOT NULL DEFAULT FALSE,
		sent_at           TIMESTAMPTZ,
		send_email        BOOLEAN NOT NULL DEFAULT TRUE,
		send_sms          BOOLEAN NOT NULL DEFAULT FALSE,
		send_push         BOOLEAN NOT NULL DEFAULT TRUE,
		email_sent        BOOLEAN NOT NULL DEFAULT FALSE,
		sms_sent          BOOLEAN NOT NULL DEFAULT FALSE,
		push_sent         BOOLEAN NOT NULL DEFAULT FALSE,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_notifications_student ON notifications(student_id, is_read);

	CREATE TABLE IF NOT EXISTS parent_notifications (
		id                UUID PRIMARY KEY,
		parent_id         UUID NOT NULL REFERENCES parents(id) ON DELETE CASCADE,
		student_id        UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		notification_type TEXT NOT NULL,
		title             TEXT NOT NULL,
		message           TEXT NOT NULL,
		email_sent        BOOLEAN NOT NULL DEFAULT FALSE,
		sms_sent          BOOLEAN NOT NULL DEFAULT FALSE,
		sent_at           TIMESTAMPTZ,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS notification_logs (
		id                     UUID PRIMARY KEY,
		notification_id        UUID REFERENCES notifications(id) ON DELETE CASCADE,
		parent_notification_id UUID REFERENCES parent_notifications(id) ON DELETE CASCADE,
		channel                TEXT NOT NULL,
		recipient              TEXT NOT NULL,
		status                 TEXT NOT NULL DEFAULT 'pending',
		error_message          TEXT NOT NULL DEFAULT '',
		sent_at                TIMESTAMPTZ,
		created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := db.Exec(schema)
	return err
}
