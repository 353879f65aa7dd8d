package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type requestValidator struct {
	validator *validator.Validate
}

func (rv *requestValidator) Validate(i interface{}) error {
	return rv.validator.Struct(i)
}

func loginRequest(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = &requestValidator{validator: validator.New()}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAdminLogin(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "ops@feastly.app")
	t.Setenv("ADMIN_PASSWORD", "correct-password")
	t.Setenv("JWT_SECRET", "test-secret")

	ac := NewAdminController(nil, nil)

	t.Run("wrong password is rejected", func(t *testing.T) {
		c, rec := loginRequest(t, `{"email":"ops@feastly.app","password":"wrong"}`)
		if err := ac.AdminLogin(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected %d, got %d", http.StatusUnauthorized, rec.Code)
		}
	})

	t.Run("wrong email is rejected", func(t *testing.T) {
		c, rec := loginRequest(t, `{"email":"intruder@feastly.app","password":"correct-password"}`)
		if err := ac.AdminLogin(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected %d, got %d", http.StatusUnauthorized, rec.Code)
		}
	})

	t.Run("valid credentials issue a token", func(t *testing.T) {
		c, rec := loginRequest(t, `{"email":"ops@feastly.app","password":"correct-password"}`)
		if err := ac.AdminLogin(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "token") {
			t.Fatalf("expected token in response, got %s", rec.Body.String())
		}
	})
}

func TestAdminLoginUnconfigured(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")

	ac := NewAdminController(nil, nil)

	c, rec := loginRequest(t, `{"email":"ops@feastly.app","password":"anything"}`)
	if err := ac.AdminLogin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}
