package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-insight/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier map[string]*jwt.Claims

func (s stubVerifier) Verify(token string) (*jwt.Claims, error) {
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

func claims(sub string, roles ...string) *jwt.Claims {
	return &jwt.Claims{Roles: roles, RegisteredClaims: jwtlib.RegisteredClaims{Subject: sub, ID: "jti-" + sub}}
}

func TestOperatorOnly(t *testing.T) {
	auth := NewAuthMiddleware(stubVerifier{
		"op":     claims("op-1", jwt.RoleOperator),
		"admin":  claims("ad-1", jwt.RoleAdmin),
		"viewer": claims("vw-1", "viewer"),
	}, nil)

	r := gin.New()
	r.GET("/x", append(auth.OperatorOnly(), func(c *gin.Context) {
		c.String(http.StatusOK, MustGetOperatorID(c))
	})...)

	tests := []struct {
		header string
		status int
		body   string
	}{
		{"Bearer op", http.StatusOK, "op-1"},
		{"bearer admin", http.StatusOK, "ad-1"},
		{"Bearer viewer", http.StatusForbidden, ""},
		{"Bearer nope", http.StatusUnauthorized, ""},
		{"Basic op", http.StatusUnauthorized, ""},
		{"", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		r.ServeHTTP(w, req)
		if w.Code != tt.status {
			t.Errorf("%q: status = %d, want %d", tt.header, w.Code, tt.status)
		}
		if tt.body != "" && w.Body.String() != tt.body {
			t.Errorf("%q: body = %q", tt.header, w.Body.String())
		}
	}
}

type revokedSet map[string]bool

func (r revokedSet) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "broken" {
		return false, errors.New("redis down")
	}
	return r[jti], nil
}

func TestAuthRejectsRevokedTokens(t *testing.T) {
	broken := claims("op-3", jwt.RoleOperator)
	broken.ID = "broken"
	auth := NewAuthMiddleware(stubVerifier{
		"live":    claims("op-1", jwt.RoleOperator),
		"revoked": claims("op-2", jwt.RoleOperator),
		"broken":  broken,
	}, revokedSet{"jti-op-2": true})

	r := gin.New()
	r.GET("/x", auth.Auth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for token, want := range map[string]int{
		"live":    http.StatusOK,
		"revoked": http.StatusUnauthorized,
		"broken":  http.StatusServiceUnavailable,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("%s: status = %d, want %d", token, w.Code, want)
		}
	}
}

func TestLoggingAssignsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware(zap.NewNop()))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	id := w.Header().Get(RequestIDHeader)
	if id == "" || w.Body.String() != id {
		t.Errorf("request id header %q, body %q", id, w.Body.String())
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("caller id not kept: %q", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware(zap.NewNop()), RecoveryMiddleware(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://dash.example.org"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://dash.example.org")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example.org" {
		t.Errorf("allow origin = %q", got)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow origin %q", got)
	}
}
