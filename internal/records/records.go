// Package records is the storage side of the dev attendance API.
package records

import (
	"context"
	"errors"
	"time"

	"dailyattendance/internal/attendance"
)

// Entry is one stored attendance row.
type Entry struct {
	ID        string            `json:"-"`
	Username  string            `json:"-"`
	Date      string            `json:"date"`
	Status    attendance.Status `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// Repository persists entries. List returns a user's entries ordered by date,
// then by insertion.
type Repository interface {
	List(ctx context.Context, username string) ([]Entry, error)
	Insert(ctx context.Context, e Entry) (Entry, error)
	Healthy(ctx context.Context) bool
}

// ErrNoUser is returned when an operation has no username to scope it.
var ErrNoUser = errors.New("username required")

// ValidationError carries a client-facing reason for rejecting a submission.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }
