package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func request(t *testing.T, secret, header string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware(secret)(func(c echo.Context) error {
		return c.String(http.StatusOK, SubjectFromContext(c.Request().Context()))
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestMiddleware_DevModePassesThrough(t *testing.T) {
	rec := request(t, "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with no secret configured, got %d", rec.Code)
	}
}

func TestMiddleware_RejectsMissingToken(t *testing.T) {
	rec := request(t, "s3cret", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_RejectsBadSignature(t *testing.T) {
	token := signToken(t, "other-secret", "svc")
	rec := request(t, "s3cret", "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_AcceptsValidToken(t *testing.T) {
	token := signToken(t, "s3cret", "pipeline")
	rec := request(t, "s3cret", "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "pipeline" {
		t.Errorf("expected subject on context, got %q", rec.Body.String())
	}
}
