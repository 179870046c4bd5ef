package sandbox

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHandler_SeedAndSnapshot(t *testing.T) {
	s, _ := newTestSeeder()
	h := NewHandler(s)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/sandbox/seed", strings.NewReader(`{"patientCount":3,"seed":1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.handleSeed(e.NewContext(req, rec)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var res SeedResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Patients != 3 {
		t.Errorf("expected 3 patients, got %d", res.Patients)
	}

	req = httptest.NewRequest(http.MethodGet, "/sandbox/snapshot", nil)
	rec = httptest.NewRecorder()
	if err := h.handleSnapshot(e.NewContext(req, rec)); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var snap struct {
		Patients []map[string]interface{} `json:"patients"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap.Patients) != 3 {
		t.Errorf("expected 3 patients in snapshot, got %d", len(snap.Patients))
	}
}

func TestHandler_SeedRejectsLargeCount(t *testing.T) {
	s, _ := newTestSeeder()
	h := NewHandler(s)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/sandbox/seed", strings.NewReader(`{"patientCount":100000}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := h.handleSeed(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", he.Code)
	}
}
