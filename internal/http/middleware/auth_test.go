// README: Tests for session auth middleware.
package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"wireconnect/internal/http/middleware"
	"wireconnect/internal/session"
)

// stubVerifier is a test double for session.Verifier.
type stubVerifier struct {
	sess *session.Session
	err  error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*session.Session, error) {
	return s.sess, s.err
}

func newTestRouter(verifier session.Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(verifier))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"caller": middleware.CallerID(c),
			"role":   middleware.CallerRole(c),
		})
	})
	r.GET("/admin", middleware.RequireRole(session.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuth_MissingHeader(t *testing.T) {
	r := newTestRouter(&stubVerifier{sess: &session.Session{UserID: "u1"}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_WrongScheme(t *testing.T) {
	r := newTestRouter(&stubVerifier{sess: &session.Session{UserID: "u1"}})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Token sometoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	r := newTestRouter(&stubVerifier{err: session.ErrInvalidToken})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_ValidToken_CallerPopulated(t *testing.T) {
	r := newTestRouter(&stubVerifier{sess: &session.Session{UserID: "tech42", Role: session.RoleTechnician}})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "tech42") || !strings.Contains(body, "technician") {
		t.Errorf("caller not propagated: %s", body)
	}
}

func TestRequireRole(t *testing.T) {
	r := newTestRouter(&stubVerifier{sess: &session.Session{UserID: "u1", Role: session.RoleClient}})
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}

	r = newTestRouter(&stubVerifier{sess: &session.Session{UserID: "root", Role: session.RoleAdmin}})
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", w.Code)
	}
}
