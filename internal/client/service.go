// Package client sequences API calls against the session: it clears the
// session on 401 and re-reads records after every successful submission.
package client

import (
	"context"

	"dailyattendance/internal/attendance"
	"dailyattendance/internal/logger"
)

// Gateway is the subset of *gateway.Client the service drives.
type Gateway interface {
	ProbeHealth(ctx context.Context)
	FetchRecords(ctx context.Context) ([]attendance.Record, bool, error)
	SubmitRecord(ctx context.Context, draft attendance.Draft) (string, error)
}

// Session is the subset of *session.Store the service needs.
type Session interface {
	IsAuthenticated() bool
	Clear()
}

// Service coordinates the gateway and the session.
type Service struct {
	gw        Gateway
	session   Session
	onRecords func([]attendance.Record)
	log       logger.Logger
}

// NewService wires a gateway and a session. onRecords receives every freshly fetched list.
func NewService(gw Gateway, s Session, onRecords func([]attendance.Record), log logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{gw: gw, session: s, onRecords: onRecords, log: log.WithComponent("client")}
}

// ProbeHealth fires the health probe without blocking the caller. The returned
// channel closes when the probe is done.
func (s *Service) ProbeHealth(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.gw.ProbeHealth(ctx)
	}()
	return done
}

// Refresh re-reads the records. ok is false when there is no session, in which
// case nothing was requested.
func (s *Service) Refresh(ctx context.Context) (out Outcome, ok bool) {
	records, fetched, err := s.gw.FetchRecords(ctx)
	if err == nil && !fetched {
		return Outcome{}, false
	}
	out = s.settle(classify(err), "fetch records")
	if out.OK() {
		out.Records = records
		if s.onRecords != nil {
			s.onRecords(records)
		}
	}
	return out, true
}

// Submit sends the draft. On success it performs exactly one Refresh; the
// submit outcome is returned regardless of how the refresh went.
func (s *Service) Submit(ctx context.Context, draft attendance.Draft) Outcome {
	msg, err := s.gw.SubmitRecord(ctx, draft)
	out := s.settle(classify(err), "submit record")
	if !out.OK() {
		return out
	}
	out.Message = msg
	if refreshed, ok := s.Refresh(ctx); ok && refreshed.OK() {
		out.Records = refreshed.Records
	}
	return out
}

// Logout clears the session. Safe to call when already logged out.
func (s *Service) Logout() {
	s.session.Clear()
}

func (s *Service) settle(out Outcome, op string) Outcome {
	switch out.Kind {
	case KindUnauthorized:
		s.log.Warnf("%s: token rejected, clearing session", op)
		s.session.Clear()
	case KindNetwork:
		s.log.Errorf("%s: %v", op, out.Err)
	case KindValidation:
		s.log.Debugf("%s: %s", op, out.Message)
	}
	return out
}
