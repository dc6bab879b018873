// README: Tests for bearer auth and caller identification.
package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner/internal/http/middleware"
	"tripplanner/internal/infra"
)

// stubVerifier is a test double for infra.TokenVerifier.
type stubVerifier struct {
	caller *infra.Caller
	err    error
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.Caller, error) {
	return s.caller, s.err
}

func newAuthRouter(verifier infra.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(verifier))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": middleware.CallerUID(c), "key": middleware.CallerKey(c)})
	})
	return r
}

func doGet(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		verifier *stubVerifier
		header   string
	}{
		{"missing header", &stubVerifier{caller: &infra.Caller{UID: "u1"}}, ""},
		{"wrong scheme", &stubVerifier{caller: &infra.Caller{UID: "u1"}}, "Token abc"},
		{"empty token", &stubVerifier{caller: &infra.Caller{UID: "u1"}}, "Bearer  "},
		{"verifier error", &stubVerifier{err: errors.New("expired")}, "Bearer abc"},
		{"no uid", &stubVerifier{caller: &infra.Caller{}}, "Bearer abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(newAuthRouter(tt.verifier), tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestAuth_ValidToken(t *testing.T) {
	w := doGet(newAuthRouter(&stubVerifier{caller: &infra.Caller{UID: "traveller-1"}}), "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "traveller-1", body["uid"])
	assert.Equal(t, "traveller-1", body["key"])
}

func TestCallerKey_FallsBackToIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		want    string
	}{
		{"untrusted peer", nil, "ip:192.0.2.1"},
		{"trusted proxy", []string{"192.0.2.0/24"}, "ip:203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			require.NoError(t, r.SetTrustedProxies(tt.trusted))
			r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, middleware.CallerKey(c)) })

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			req.Header.Set("X-Forwarded-For", "203.0.113.7")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestVerifierFunc(t *testing.T) {
	v := infra.VerifierFunc(func(_ context.Context, tok string) (*infra.Caller, error) {
		return &infra.Caller{UID: "uid-" + tok}, nil
	})
	w := doGet(newAuthRouter(v), "Bearer 42")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "uid-42")
}
