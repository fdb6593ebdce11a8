package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type migration struct {
	name  string
	query string
}

// schema is applied in order; every statement is idempotent so Migrate can
// run on each start.
var schema = []migration{
	{"create students", `CREATE TABLE IF NOT EXISTS students (
	admission_number VARCHAR(20) PRIMARY KEY,
	first_name VARCHAR(50) NOT NULL,
	last_name VARCHAR(50) NOT NULL,
	dob DATE NOT NULL,
	gender VARCHAR(10) NOT NULL,
	student_class VARCHAR(20) NOT NULL,
	stream VARCHAR(5) NOT NULL,
	contact_number VARCHAR(15) NOT NULL DEFAULT '',
	parent_name VARCHAR(50) NOT NULL DEFAULT '',
	parent_contact VARCHAR(15) NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	photo_path TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"create books", `CREATE TABLE IF NOT EXISTS books (
	id UUID PRIMARY KEY,
	title VARCHAR(100) NOT NULL,
	author VARCHAR(100),
	subject VARCHAR(50) NOT NULL,
	isbn VARCHAR(20),
	total_copies INTEGER NOT NULL DEFAULT 1 CHECK (total_copies >= 1),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"create borrow_records", `CREATE TABLE IF NOT EXISTS borrow_records (
	id UUID PRIMARY KEY,
	admission_number VARCHAR(20) NOT NULL REFERENCES students(admission_number) ON DELETE CASCADE,
	book_id UUID REFERENCES books(id) ON DELETE SET NULL,
	book_title VARCHAR(100) NOT NULL,
	borrow_date TIMESTAMPTZ NOT NULL,
	return_date TIMESTAMPTZ,
	returned BOOLEAN NOT NULL DEFAULT false,
	status VARCHAR(20) NOT NULL DEFAULT 'borrowed',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT borrow_records_returned_state CHECK (NOT returned OR (return_date IS NOT NULL AND status <> 'borrowed'))
)`},
	{"index open borrows", `CREATE INDEX IF NOT EXISTS idx_borrow_records_open ON borrow_records (book_id) WHERE returned = false`},
	{"create fee_records", `CREATE TABLE IF NOT EXISTS fee_records (
	id UUID PRIMARY KEY,
	admission_number VARCHAR(20) NOT NULL REFERENCES students(admission_number) ON DELETE CASCADE,
	term VARCHAR(20) NOT NULL,
	amount_due DOUBLE PRECISION NOT NULL CHECK (amount_due >= 0),
	amount_paid DOUBLE PRECISION NOT NULL CHECK (amount_paid >= 0),
	balance DOUBLE PRECISION NOT NULL DEFAULT 0,
	payment_status VARCHAR(20) NOT NULL DEFAULT 'unpaid',
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"create performance_records", `CREATE TABLE IF NOT EXISTS performance_records (
	id UUID PRIMARY KEY,
	admission_number VARCHAR(20) NOT NULL REFERENCES students(admission_number) ON DELETE CASCADE,
	term VARCHAR(20) NOT NULL,
	subject VARCHAR(50) NOT NULL,
	marks DOUBLE PRECISION NOT NULL CHECK (marks >= 0 AND marks <= 100),
	grade VARCHAR(2) NOT NULL,
	teacher_comments TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"create discipline_records", `CREATE TABLE IF NOT EXISTS discipline_records (
	id UUID PRIMARY KEY,
	admission_number VARCHAR(20) NOT NULL REFERENCES students(admission_number) ON DELETE CASCADE,
	date DATE NOT NULL,
	offense TEXT NOT NULL,
	action_taken TEXT NOT NULL,
	teacher_in_charge VARCHAR(50) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"create users", `CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	username VARCHAR(50) NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	full_name VARCHAR(100) NOT NULL,
	role VARCHAR(20) NOT NULL,
	active BOOLEAN NOT NULL DEFAULT true,
	last_login TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"create audit_logs", `CREATE TABLE IF NOT EXISTS audit_logs (
	id UUID PRIMARY KEY,
	user_id UUID,
	action VARCHAR(50) NOT NULL,
	resource VARCHAR(50) NOT NULL,
	resource_id TEXT,
	new_values JSONB,
	ip_address VARCHAR(64) NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
}

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, m := range schema {
		if _, err := db.ExecContext(ctx, m.query); err != nil {
			return fmt.Errorf("migration %q: %w", m.name, err)
		}
		logger.Debug("migration applied", zap.String("name", m.name))
	}
	logger.Info("database schema up to date", zap.Int("steps", len(schema)))
	return nil
}
