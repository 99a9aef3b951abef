package attendance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("present").Valid())
	assert.False(t, Status("Invalid").Valid())
	assert.False(t, Status("").Valid())
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("  late ")
	assert.True(t, ok)
	assert.Equal(t, StatusLate, s)

	_, ok = ParseStatus("Sick")
	assert.False(t, ok)
}

func TestNewDraftDefaultsToPresent(t *testing.T) {
	assert.Equal(t, StatusPresent, NewDraft().Status)
}

func TestToday(t *testing.T) {
	c := fixedClock{t: time.Date(2026, 3, 9, 23, 59, 0, 0, time.Local)}
	assert.Equal(t, "2026-03-09", Today(c))
	assert.True(t, ValidDate(Today(c)))
	assert.False(t, ValidDate("2026-13-01"))
}

func TestRecordDecodesOptionalCreatedAt(t *testing.T) {
	var recs []Record
	body := `[
		{"date":"2026-01-05","status":"Present"},
		{"date":"2026-01-06","status":"Late","created_at":"2026-01-06T08:15:00Z"},
		{"date":"2026-01-07","status":"Absent","created_at":"2026-01-07 09:00:00.123456"},
		{"date":"2026-01-08","status":"Absent","created_at":"yesterday"}
	]`
	require.NoError(t, json.Unmarshal([]byte(body), &recs))
	require.Len(t, recs, 4)

	assert.Nil(t, recs[0].CreatedAt)
	assert.Equal(t, 8, recs[1].CreatedAt.Time.UTC().Hour())
	assert.Equal(t, 2026, recs[2].CreatedAt.Time.Year())
	assert.True(t, recs[3].CreatedAt.Time.IsZero())
	assert.Equal(t, "yesterday", recs[3].CreatedAt.String())
}
