package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)
	return tok
}

func TestParse(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	c, err := Parse(sign(t, Claims{PreferredUsername: "alice"}), now)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Username())

	c, err = Parse(sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "f3a1"}}), now)
	require.NoError(t, err)
	assert.Equal(t, "f3a1", c.Username())

	_, err = Parse("not-a-jwt", now)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Parse(sign(t, Claims{}), now)
	assert.ErrorIs(t, err, ErrNoSubject)

	expired := Claims{PreferredUsername: "alice", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}}
	_, err = Parse(sign(t, expired), now)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestIssueRoundTrip(t *testing.T) {
	tok, err := Issue("bob", "k", time.Hour)
	require.NoError(t, err)

	c, err := Parse(tok, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "bob", c.Username())
}

func TestBearer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Bearer(), func(c *gin.Context) {
		c.String(http.StatusOK, Username(c))
	})
	tok, err := Issue("alice", "k", time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer xyz", http.StatusUnauthorized},
		{"ok", "Bearer " + tok, http.StatusOK},
		{"lowercase scheme", "bearer " + tok, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusOK {
				assert.Equal(t, "alice", w.Body.String())
			} else {
				assert.JSONEq(t, `{"detail":"Invalid token"}`, w.Body.String())
			}
		})
	}
}
