// Package redirect captures implicit-grant tokens returned by the identity provider.
package redirect

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"dailyattendance/internal/logger"
)

// Location is the current address of the page that received the provider redirect.
type Location interface {
	Current() string
	// Replace swaps the visible address without a reload or a new history entry.
	Replace(u string)
}

// TokenSink receives captured tokens. *session.Store satisfies it.
type TokenSink interface {
	SetToken(token string) bool
}

// Handler runs once per provider redirect.
type Handler struct {
	sink    TokenSink
	onToken func(ctx context.Context)
	log     logger.Logger
}

// NewHandler wires the sink and the side effect fired after a token is installed.
func NewHandler(sink TokenSink, onToken func(ctx context.Context), log logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{sink: sink, onToken: onToken, log: log.WithComponent("redirect")}
}

// Handle inspects loc for an access_token fragment. When one is found it is
// installed into the sink, the fragment is scrubbed from loc, and the onToken
// side effect runs. It reports whether a token was captured.
func (h *Handler) Handle(ctx context.Context, loc Location) bool {
	current := loc.Current()
	params, ok := fragmentParams(current)
	if !ok {
		return false
	}
	if code := params.Get("error"); code != "" {
		h.log.WithFields(map[string]interface{}{"error": code}).
			Warnf("identity provider returned an error: %s", params.Get("error_description"))
		return false
	}
	token := params.Get("access_token")
	if token == "" || !h.sink.SetToken(token) {
		return false
	}

	loc.Replace(StripFragment(current))
	h.log.Infof("access token captured from redirect")

	if h.onToken != nil {
		h.onToken(ctx)
	}
	return true
}

// StripFragment removes everything from the first '#', keeping path and query.
func StripFragment(raw string) string {
	before, _, _ := strings.Cut(raw, "#")
	return before
}

// fragmentParams parses the fragment as a query string. Missing, empty and
// malformed fragments all report false.
func fragmentParams(raw string) (url.Values, bool) {
	_, fragment, found := strings.Cut(raw, "#")
	if !found || fragment == "" {
		return nil, false
	}
	params, err := url.ParseQuery(fragment)
	if err != nil || len(params) == 0 {
		return nil, false
	}
	return params, true
}

// AuthorizeURL builds the implicit-grant authorization request.
func AuthorizeURL(providerURL, clientID, redirectURI string) (string, error) {
	u, err := url.Parse(providerURL)
	if err != nil {
		return "", fmt.Errorf("parse provider url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("provider url %q is not absolute", providerURL)
	}
	q := u.Query()
	q.Set("client_id", clientID)
	q.Set("response_type", "token")
	q.Set("redirect_uri", redirectURI)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// StaticLocation is a Location over a fixed URL, used when the redirected
// address is supplied directly (for example pasted on the command line).
type StaticLocation struct {
	URL string
}

func (l *StaticLocation) Current() string  { return l.URL }
func (l *StaticLocation) Replace(u string) { l.URL = u }
