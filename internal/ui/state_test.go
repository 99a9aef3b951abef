package ui

import (
	"errors"
	"testing"

	"dailyattendance/internal/client"
	"dailyattendance/internal/gateway"

	"github.com/stretchr/testify/assert"
)

func TestSubmitState_Transitions(t *testing.T) {
	var s SubmitState
	p, _ := s.Current()
	assert.Equal(t, Idle, p)

	assert.False(t, s.Succeed("too early"))

	assert.True(t, s.Begin())
	assert.False(t, s.Begin(), "busy flag must block a second submit")

	s.Dismiss()
	p, _ = s.Current()
	assert.Equal(t, Submitting, p, "dismiss is ignored while submitting")

	assert.True(t, s.Succeed("ok"))
	p, msg := s.Current()
	assert.Equal(t, Succeeded, p)
	assert.Equal(t, "ok", msg)

	assert.True(t, s.Begin())
	assert.True(t, s.Fail("nope"))
	p, msg = s.Current()
	assert.Equal(t, Failed, p)
	assert.Equal(t, "nope", msg)

	s.Dismiss()
	p, msg = s.Current()
	assert.Equal(t, Idle, p)
	assert.Empty(t, msg)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "ok", Message(client.Outcome{Kind: client.KindSuccess, Message: "ok"}))
	assert.Equal(t, "bad date", Message(client.Outcome{Kind: client.KindValidation, Message: "bad date"}))
	assert.Equal(t, "Attendance already submitted",
		Message(client.Outcome{Kind: client.KindValidation, Message: "Attendance already submitted", Err: &gateway.ValidationError{Message: "Attendance already submitted"}}))
	assert.Equal(t, msgNotSent+`Invalid status "Sick"`,
		Message(client.Outcome{Kind: client.KindValidation, Message: `Invalid status "Sick"`, Err: &gateway.ValidationError{Message: `Invalid status "Sick"`, Local: true}}))
	assert.Equal(t, msgUnauthorized, Message(client.Outcome{Kind: client.KindUnauthorized, Err: gateway.ErrUnauthorized}))
	assert.Equal(t, msgNetwork, Message(client.Outcome{Kind: client.KindNetwork, Err: errors.New("dial tcp")}))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "submitting", Submitting.String())
}
