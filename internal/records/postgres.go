package records

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dailyattendance/internal/attendance"
	"dailyattendance/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS attendance (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL,
	date       DATE NOT NULL,
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS attendance_username_date ON attendance (username, date);
`

// Postgres persists entries in the attendance table.
type Postgres struct {
	db *store.DB
}

// NewPostgres wraps db and creates the schema when missing.
func NewPostgres(ctx context.Context, db *store.DB) (*Postgres, error) {
	p := &Postgres{db: db}
	if err := p.migrate(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	if _, err := p.db.Client.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate attendance: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, username string) ([]Entry, error) {
	if username == "" {
		return nil, ErrNoUser
	}
	rows, err := p.db.Client.QueryContext(ctx, `
		SELECT id, username, date, status, created_at
		FROM attendance
		WHERE username = $1
		ORDER BY date, created_at
	`, username)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var (
			e      Entry
			day    time.Time
			status string
		)
		if err := rows.Scan(&e.ID, &e.Username, &day, &status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		e.Date = day.Format(attendance.DateLayout)
		e.Status = attendance.Status(status)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *Postgres) Insert(ctx context.Context, e Entry) (Entry, error) {
	if e.Username == "" {
		return Entry{}, ErrNoUser
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := p.db.Client.ExecContext(ctx, `
		INSERT INTO attendance (id, username, date, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, e.ID, e.Username, e.Date, string(e.Status), e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("insert attendance: %w", err)
	}
	return e, nil
}

func (p *Postgres) Healthy(ctx context.Context) bool {
	return p.db.Healthy(ctx)
}

var _ Repository = (*Postgres)(nil)
var _ Repository = (*Memory)(nil)
