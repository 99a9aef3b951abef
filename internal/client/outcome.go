package client

import (
	"dailyattendance/internal/attendance"
	"dailyattendance/internal/gateway"
)

// Kind tags an Outcome.
type Kind int

const (
	KindSuccess Kind = iota
	KindUnauthorized
	KindValidation
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	}
	return "unknown"
}

// Outcome is the single result of a fetch or submit, consumed by the presenter.
type Outcome struct {
	Kind Kind
	// Message is the confirmation on success and the user-facing text on a validation failure.
	Message string
	Records []attendance.Record
	Err     error
}

// OK reports a successful outcome.
func (o Outcome) OK() bool { return o.Kind == KindSuccess }

func classify(err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Kind: KindSuccess}
	case gateway.IsValidation(err):
		return Outcome{Kind: KindValidation, Message: err.Error(), Err: err}
	case gateway.IsUnauthorized(err):
		return Outcome{Kind: KindUnauthorized, Err: err}
	default:
		return Outcome{Kind: KindNetwork, Err: err}
	}
}
