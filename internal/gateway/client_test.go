package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"dailyattendance/internal/attendance"
	"dailyattendance/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestClient(t *testing.T, h http.HandlerFunc, token string) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	store := session.New()
	store.SetToken(token)
	clk := fixedClock{t: time.Date(2026, 10, 19, 9, 30, 0, 0, time.Local)}
	return New(srv.URL+"/", store, WithClock(clk)), &calls
}

func TestFetchRecords_NoTokenMakesNoRequest(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}, "")

	recs, ok, err := c.FetchRecords(context.Background())

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, recs)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestFetchRecords_PreservesServerOrder(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/attendance", r.URL.Path)
		assert.Equal(t, "Bearer abc123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date":"2026-10-17","status":"Late"},
			{"date":"2026-10-01","status":"Present","created_at":"2026-10-01T08:00:00Z"},
			{"date":"2026-10-19","status":"Absent"}
		]`))
	}, "abc123")

	recs, ok, err := c.FetchRecords(context.Background())

	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"2026-10-17", "2026-10-01", "2026-10-19"}, []string{recs[0].Date, recs[1].Date, recs[2].Date})
	assert.Equal(t, attendance.StatusLate, recs[0].Status)
	assert.NotNil(t, recs[1].CreatedAt)
}

func TestFetchRecords_EmptyList(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}, "abc")

	recs, ok, err := c.FetchRecords(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestFetchRecords_Failures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail":"Invalid token"}`, IsUnauthorized},
		{"server error", http.StatusInternalServerError, `oops`, IsNetwork},
		{"forbidden", http.StatusForbidden, `{"detail":"nope"}`, IsNetwork},
		{"bad json", http.StatusOK, `{"date":`, IsNetwork},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}, "abc")

			_, ok, err := c.FetchRecords(context.Background())
			assert.False(t, ok)
			assert.True(t, tc.check(err), "got %v", err)
		})
	}
}

func TestFetchRecords_TransportFailure(t *testing.T) {
	store := session.New()
	store.SetToken("abc")
	c := New("http://127.0.0.1:1", store)

	_, _, err := c.FetchRecords(context.Background())
	assert.True(t, IsNetwork(err))
}

func TestSubmitRecord_InvalidStatusNeverHitsNetwork(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}, "abc")

	_, err := c.SubmitRecord(context.Background(), attendance.Draft{Status: "Invalid"})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Local)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestSubmitRecord_InvalidStatusBeatsMissingToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, "")

	_, err := c.SubmitRecord(context.Background(), attendance.Draft{Status: ""})
	assert.True(t, IsValidation(err))

	_, err = c.SubmitRecord(context.Background(), attendance.NewDraft())
	assert.True(t, IsUnauthorized(err))
}

func TestSubmitRecord_SendsTodayAndStatus(t *testing.T) {
	var got attendance.Submission
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/attendance", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}, "tok")

	msg, err := c.SubmitRecord(context.Background(), attendance.Draft{Status: attendance.StatusLate})

	require.NoError(t, err)
	assert.Equal(t, "ok", msg)
	assert.Equal(t, attendance.Submission{Date: "2026-10-19", Status: attendance.StatusLate}, got)
}

func TestSubmitRecord_FallbackMessage(t *testing.T) {
	for _, body := range []string{``, `{}`, `not json`} {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}, "tok")

		msg, err := c.SubmitRecord(context.Background(), attendance.NewDraft())
		require.NoError(t, err, body)
		assert.Equal(t, DefaultSuccessMessage, msg)
	}
}

func TestSubmitRecord_Classification(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		check   func(error) bool
		message string
	}{
		{"401 wins over detail", http.StatusUnauthorized, `{"detail":"Invalid token"}`, IsUnauthorized, ""},
		{"string detail", http.StatusBadRequest, `{"detail":"Attendance already submitted for today"}`, IsValidation, "Attendance already submitted for today"},
		{"list detail", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","date"],"msg":"invalid date format"}]}`, IsValidation, "invalid date format"},
		{"detail on 500", http.StatusInternalServerError, `{"detail":"database unavailable"}`, IsValidation, "database unavailable"},
		{"no detail", http.StatusInternalServerError, `Internal Server Error`, IsNetwork, ""},
		{"empty detail", http.StatusBadRequest, `{"detail":""}`, IsNetwork, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}, "tok")

			_, err := c.SubmitRecord(context.Background(), attendance.NewDraft())
			require.Error(t, err)
			assert.True(t, tc.check(err), "got %v", err)
			if tc.message != "" {
				assert.Equal(t, tc.message, err.Error())
			}
		})
	}
}

func TestProbeHealth_FailureIsSilent(t *testing.T) {
	store := session.New()
	store.SetToken("keep-me")
	c := New("http://127.0.0.1:1", store)

	assert.NotPanics(t, func() { c.ProbeHealth(context.Background()) })
	assert.Equal(t, "keep-me", store.Token())
}

func TestProbeHealth_Unauthenticated(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}, "")

	c.ProbeHealth(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}
