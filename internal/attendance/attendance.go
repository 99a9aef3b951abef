package attendance

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the wire format of attendance dates.
const DateLayout = "2006-01-02"

// Status is the daily attendance status. Only the three constants below are valid.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusLate    Status = "Late"
)

// Statuses lists the valid statuses in display order.
var Statuses = []Status{StatusPresent, StatusAbsent, StatusLate}

// Valid reports whether s is one of the canonical statuses. Matching is exact.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	}
	return false
}

// ParseStatus accepts user input case-insensitively and returns the canonical status.
func ParseStatus(in string) (Status, bool) {
	in = strings.TrimSpace(in)
	for _, s := range Statuses {
		if strings.EqualFold(in, string(s)) {
			return s, true
		}
	}
	return Status(in), false
}

// Record is one attendance entry as returned by the API. Records are never mutated client-side.
type Record struct {
	Date      string     `json:"date"`
	Status    Status     `json:"status"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
}

// Draft is the pending submission. The zero value is not valid; use NewDraft.
type Draft struct {
	Status Status `json:"status"`
}

// NewDraft returns a draft defaulting to Present.
func NewDraft() Draft {
	return Draft{Status: StatusPresent}
}

// Submission is the POST /attendance body.
type Submission struct {
	Date   string `json:"date"`
	Status Status `json:"status"`
}

// Clock is an injectable time source.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Today formats the clock's local date.
func Today(c Clock) string {
	return c.Now().Local().Format(DateLayout)
}

// ValidDate reports whether d is a YYYY-MM-DD calendar date.
func ValidDate(d string) bool {
	_, err := time.Parse(DateLayout, d)
	return err == nil
}

// Timestamp is a server-set time that tolerates the formats the API is known to emit.
// Unparseable values keep their raw text.
type Timestamp struct {
	Time time.Time
	Raw  string
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t.Raw = s
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

// String renders the timestamp for display.
func (t *Timestamp) String() string {
	if t == nil {
		return ""
	}
	if t.Time.IsZero() {
		return t.Raw
	}
	return t.Time.Local().Format("2006-01-02 15:04")
}
