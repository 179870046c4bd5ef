package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runRequireRole(t *testing.T, held []string, required ...string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(context.Background(), "u1", held, ""))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireRole(required...)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	err := h(c)
	return rec, err
}

func TestRequireRole_Allowed(t *testing.T) {
	rec, err := runRequireRole(t, []string{"receptionist"}, "receptionist", "scheduler")
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	_, err := runRequireRole(t, []string{"registrar"}, "scheduler")
	if err == nil {
		t.Fatal("expected error for missing role")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	if _, err := runRequireRole(t, []string{"admin"}, "scheduler"); err != nil {
		t.Errorf("admin should pass every role check, got %v", err)
	}
}

func TestRequireRole_NoIdentity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	err := RequireRole("registrar")(func(echo.Context) error { return nil })(c)
	if err == nil {
		t.Error("expected 403 without identity")
	}
}

func TestHasAnyRole(t *testing.T) {
	tests := []struct {
		held   []string
		wanted []string
		want   bool
	}{
		{[]string{"registrar"}, []string{"registrar"}, true},
		{[]string{"registrar"}, []string{"scheduler", "registrar"}, true},
		{[]string{"registrar"}, []string{"scheduler"}, false},
		{nil, []string{"scheduler"}, false},
		{[]string{"admin"}, nil, true},
	}
	for _, tt := range tests {
		if got := HasAnyRole(tt.held, tt.wanted...); got != tt.want {
			t.Errorf("HasAnyRole(%v, %v) = %v, want %v", tt.held, tt.wanted, got, tt.want)
		}
	}
}
