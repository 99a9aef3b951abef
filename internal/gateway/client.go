// Package gateway is the HTTP client for the attendance API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dailyattendance/internal/attendance"
	"dailyattendance/internal/logger"
)

// DefaultSuccessMessage is used when a successful submission carries no message.
const DefaultSuccessMessage = "Attendance submitted successfully"

const maxBody = 1 << 20

// TokenSource yields the current bearer token, "" when unauthenticated.
type TokenSource interface {
	Token() string
}

// Client calls the attendance API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	tokens  TokenSource
	clock   attendance.Clock
	log     logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. The default is a zero http.Client, so
// no timeout is imposed here.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.HTTP = h } }

// WithClock sets the clock used to date submissions.
func WithClock(clk attendance.Clock) Option { return func(c *Client) { c.clock = clk } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(c *Client) { c.log = l } }

// New creates a client for baseURL reading tokens from tokens.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{},
		tokens:  tokens,
		clock:   attendance.SystemClock{},
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("gateway")
	return c
}

// ProbeHealth checks GET /health. Failures are logged and never returned.
func (c *Client) ProbeHealth(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		c.log.Warnf("health probe: %v", err)
		return
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.log.Warnf("attendance api unavailable: %v", err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if resp.StatusCode >= 300 {
		c.log.Warnf("attendance api unhealthy: %s", resp.Status)
		return
	}
	c.log.Infof("attendance api healthy: %s", strings.TrimSpace(string(body)))
}

// FetchRecords returns the caller's records in server order. Without a token it
// makes no request and reports ok=false with a nil error.
func (c *Client) FetchRecords(ctx context.Context) (records []attendance.Record, ok bool, err error) {
	token := c.tokens.Token()
	if token == "" {
		return nil, false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/attendance", nil)
	if err != nil {
		return nil, false, &NetworkError{Op: "fetch records", Err: err}
	}
	c.authorize(req, token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, false, &NetworkError{Op: "fetch records", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, false, ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		return nil, false, &NetworkError{Op: "fetch records", Status: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&records); err != nil {
		return nil, false, &NetworkError{Op: "fetch records", Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return records, true, nil
}

// SubmitRecord posts today's attendance with draft's status and returns the
// server's confirmation message. Failure precedence: local validation, 401,
// server detail, anything else.
func (c *Client) SubmitRecord(ctx context.Context, draft attendance.Draft) (string, error) {
	if !draft.Status.Valid() {
		return "", &ValidationError{
			Message: fmt.Sprintf("Invalid status %q: choose Present, Absent or Late", draft.Status),
			Local:   true,
		}
	}
	token := c.tokens.Token()
	if token == "" {
		return "", ErrUnauthorized
	}

	payload, err := json.Marshal(attendance.Submission{
		Date:   attendance.Today(c.clock),
		Status: draft.Status,
	})
	if err != nil {
		return "", &NetworkError{Op: "submit record", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/attendance", bytes.NewReader(payload))
	if err != nil {
		return "", &NetworkError{Op: "submit record", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", &NetworkError{Op: "submit record", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", ErrUnauthorized
	}

	var out reply
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	decodeErr := readErr
	if decodeErr == nil && len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &out)
	}

	if resp.StatusCode >= 300 {
		if detail := out.detail(); detail != "" {
			return "", &ValidationError{Message: detail}
		}
		return "", &NetworkError{Op: "submit record", Status: resp.StatusCode, Err: decodeErr}
	}
	if out.Message != "" {
		return out.Message, nil
	}
	if decodeErr != nil {
		c.log.Debugf("submit record: ignoring undecodable success body: %v", decodeErr)
	}
	return DefaultSuccessMessage, nil
}

func (c *Client) authorize(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
}

// reply is the union of success and error bodies.
type reply struct {
	Message string          `json:"message,omitempty"`
	Detail  json.RawMessage `json:"detail,omitempty"`
}

// detail accepts a plain string or a list of {"msg": ...} objects.
func (r reply) detail() string {
	if len(r.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(r.Detail, &items); err == nil {
		for _, it := range items {
			if it.Msg != "" {
				return it.Msg
			}
		}
	}
	return ""
}
