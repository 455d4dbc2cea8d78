package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func newTestManager() *Manager {
	m := NewManager("test-secret", "flowcoach-test", time.Hour)
	m.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return m
}

func issue(t *testing.T, m *Manager) string {
	t.Helper()
	token, err := m.Issue(Claims{UserID: "u-1", OrganizationID: "o-1", Email: "a@b.com", FullName: "Ana"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return token
}

func TestIssueAndParse(t *testing.T) {
	m := newTestManager()
	claims, err := m.Parse(issue(t, m))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "u-1" || claims.OrganizationID != "o-1" || claims.Email != "a@b.com" || claims.FullName != "Ana" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.ExpiresAt.Equal(m.now().Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %s", claims.ExpiresAt)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := newTestManager()
	token := issue(t, m)
	m.now = func() time.Time { return time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC) }

	if _, err := m.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestParseRejectsOtherSecretAndIssuer(t *testing.T) {
	m := newTestManager()
	token := issue(t, m)

	other := NewManager("other-secret", "flowcoach-test", time.Hour)
	other.now = m.now
	if _, err := other.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid token for other secret, got %v", err)
	}

	otherIssuer := NewManager("test-secret", "someone-else", time.Hour)
	otherIssuer.now = m.now
	if _, err := otherIssuer.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid token for other issuer, got %v", err)
	}
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	m := newTestManager()
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "u-1", "org_id": "o-1", "iss": "flowcoach-test", "exp": m.now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Parse(unsigned); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestParseEmptyToken(t *testing.T) {
	if _, err := newTestManager().Parse("  "); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("expected missing token, got %v", err)
	}
}

func TestRequiredMiddleware(t *testing.T) {
	m := newTestManager()
	e := echo.New()
	handler := m.Required()(func(ctx echo.Context) error {
		claims, ok := FromContext(ctx)
		if !ok {
			t.Fatalf("expected claims in context")
		}
		return ctx.String(http.StatusOK, claims.UserID)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Please sign up first") || !strings.Contains(rec.Body.String(), "/signup") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+issue(t, m))
	rec = httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "u-1" {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestOptionalMiddleware(t *testing.T) {
	m := newTestManager()
	e := echo.New()
	var seen bool
	handler := m.Optional()(func(ctx echo.Context) error {
		_, seen = FromContext(ctx)
		return ctx.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer garbage")
	if err := handler(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen {
		t.Fatalf("expected no claims for invalid token")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "bearer "+issue(t, m))
	if err := handler(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !seen {
		t.Fatalf("expected claims for valid token")
	}
}
