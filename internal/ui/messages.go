package ui

import (
	"errors"

	"dailyattendance/internal/client"
	"dailyattendance/internal/gateway"
)

const (
	msgUnauthorized = "Your session has expired. Please log in again."
	msgNetwork      = "Could not reach the attendance service. Please try again."
	msgNotSent      = "Not sent: "
)

// Message picks the user-facing text for an outcome. Server rejections are
// shown verbatim; rejections caught before sending say nothing was sent.
func Message(out client.Outcome) string {
	switch out.Kind {
	case client.KindSuccess:
		return out.Message
	case client.KindValidation:
		var ve *gateway.ValidationError
		if errors.As(out.Err, &ve) && ve.Local {
			return msgNotSent + out.Message
		}
		return out.Message
	case client.KindUnauthorized:
		return msgUnauthorized
	default:
		return msgNetwork
	}
}
