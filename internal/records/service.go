package records

import (
	"context"
	"fmt"
	"strings"

	"dailyattendance/internal/attendance"
)

// Service validates submissions before they reach the repository.
type Service struct {
	repo Repository
}

// NewService creates a service backed by a repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the user's entries.
func (s *Service) List(ctx context.Context, username string) ([]Entry, error) {
	return s.repo.List(ctx, username)
}

// Submit validates and stores one entry for username.
func (s *Service) Submit(ctx context.Context, username string, sub attendance.Submission) (Entry, error) {
	if username == "" {
		return Entry{}, ErrNoUser
	}
	sub.Date = strings.TrimSpace(sub.Date)
	if !attendance.ValidDate(sub.Date) {
		return Entry{}, &ValidationError{Detail: fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", sub.Date)}
	}
	if !sub.Status.Valid() {
		return Entry{}, &ValidationError{Detail: fmt.Sprintf("invalid status %q: expected Present, Absent or Late", sub.Status)}
	}
	return s.repo.Insert(ctx, Entry{Username: username, Date: sub.Date, Status: sub.Status})
}

// Healthy reports whether the repository is reachable.
func (s *Service) Healthy(ctx context.Context) bool {
	return s.repo.Healthy(ctx)
}
