package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Kadu1982/cidade-saude-conexao-digital/pkg/apierror"
)

func newTestHandler(t *testing.T) (*Handler, *echo.Echo, *fixture) {
	f := newFixture(t, 5, SlotNormal, 1)
	return NewHandler(f.store), echo.New(), f
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func expectHTTPError(t *testing.T, err error, code int, kind string) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != code {
		t.Errorf("expected %d, got %d", code, he.Code)
	}
	if body, ok := he.Message.(apierror.Body); !ok || body.Error != kind {
		t.Errorf("expected %s body, got %#v", kind, he.Message)
	}
}

func TestHandler_CreateAppointment(t *testing.T) {
	h, e, _ := newTestHandler(t)
	c, rec := jsonContext(e, http.MethodPost, "/", `{"patientId":"pac001","slotId":"slot001"}`)

	if err := h.CreateAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var a Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.Status != StatusScheduled || a.ConfirmationCode == "" {
		t.Errorf("unexpected appointment %+v", a)
	}
}

func TestHandler_CreateAppointment_Errors(t *testing.T) {
	h, e, f := newTestHandler(t)
	other := f.addPatient(t, "Maria Santos")

	c, _ := jsonContext(e, http.MethodPost, "/", `{"patientId":"pac001","slotId":"slot001"}`)
	if err := h.CreateAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		body string
		code int
		kind string
	}{
		{"slot full", `{"patientId":"` + other + `","slotId":"slot001"}`, http.StatusConflict, apierror.KindCapacityExceeded},
		{"unknown slot", `{"patientId":"pac001","slotId":"nope"}`, http.StatusNotFound, apierror.KindNotFound},
		{"missing slot", `{"patientId":"pac001"}`, http.StatusBadRequest, apierror.KindInput},
		{"bad kind", `{"patientId":"pac001","slotId":"slot001","kind":"surgery"}`, http.StatusBadRequest, apierror.KindInput},
		{"malformed", `{"patientId":`, http.StatusBadRequest, apierror.KindInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := jsonContext(e, http.MethodPost, "/", tt.body)
			expectHTTPError(t, h.CreateAppointment(c), tt.code, tt.kind)
		})
	}
}

func TestHandler_CreateAppointment_Blocked(t *testing.T) {
	h, e, f := newTestHandler(t)
	if _, err := f.store.BlockSchedule(context.Background(), "ag001", "manutenção"); err != nil {
		t.Fatal(err)
	}
	c, _ := jsonContext(e, http.MethodPost, "/", `{"patientId":"pac001","slotId":"slot001"}`)
	expectHTTPError(t, h.CreateAppointment(c), http.StatusConflict, apierror.KindScheduleBlocked)
}

func TestHandler_UpdateAppointmentStatus(t *testing.T) {
	h, e, f := newTestHandler(t)
	a, err := f.store.AddAppointment(context.Background(), BookingRequest{PatientID: "pac001", SlotID: "slot001"})
	if err != nil {
		t.Fatal(err)
	}

	c, rec := jsonContext(e, http.MethodPatch, "/", `{"status":"confirmed"}`)
	c.SetParamNames("id")
	c.SetParamValues(a.ID)
	if err := h.UpdateAppointmentStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"status":"confirmed"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}

	c, _ = jsonContext(e, http.MethodPatch, "/", `{"status":"confirmed"}`)
	c.SetParamNames("id")
	c.SetParamValues(a.ID)
	expectHTTPError(t, h.UpdateAppointmentStatus(c), http.StatusConflict, apierror.KindInvalidTransition)

	c, _ = jsonContext(e, http.MethodPatch, "/", `{"status":"archived"}`)
	c.SetParamNames("id")
	c.SetParamValues(a.ID)
	expectHTTPError(t, h.UpdateAppointmentStatus(c), http.StatusBadRequest, apierror.KindInput)
}

func TestHandler_GetAppointment_NotFound(t *testing.T) {
	h, e, _ := newTestHandler(t)
	c, _ := jsonContext(e, http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")
	expectHTTPError(t, h.GetAppointment(c), http.StatusNotFound, apierror.KindNotFound)
}

func TestHandler_ListPatientAppointments(t *testing.T) {
	h, e, f := newTestHandler(t)
	if _, err := f.store.AddAppointment(context.Background(), BookingRequest{PatientID: "pac001", SlotID: "slot001"}); err != nil {
		t.Fatal(err)
	}
	c, rec := jsonContext(e, http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues("pac001")
	if err := h.ListPatientAppointments(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var items []Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 appointment, got %d", len(items))
	}
}

func TestHandler_CreatePatient(t *testing.T) {
	h, e, _ := newTestHandler(t)
	c, rec := jsonContext(e, http.MethodPost, "/", `{"name":"Ana Costa","birthDate":"1990-04-01","email":"ana@example.com"}`)
	if err := h.CreatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	c, _ = jsonContext(e, http.MethodPost, "/", `{"name":"Outro","nationalId":"123.456.789-00"}`)
	expectHTTPError(t, h.CreatePatient(c), http.StatusConflict, apierror.KindConflict)

	c, _ = jsonContext(e, http.MethodPost, "/", `{"name":"Ana","birthDate":"01/04/1990"}`)
	expectHTTPError(t, h.CreatePatient(c), http.StatusBadRequest, apierror.KindInput)
}

func TestHandler_SearchPatients(t *testing.T) {
	h, e, f := newTestHandler(t)
	f.addPatient(t, "Maria Santos")
	f.addPatient(t, "Mariana Souza")

	tests := []struct {
		target string
		want   int
	}{
		{"/?name=maria", 2},
		{"/?name=MARIANA", 1},
		{"/?national_id=123.456.789-00", 1},
		{"/?national_id=000", 0},
		{"/?health_card=000", 0},
		{"/", 3},
		{"/?limit=2", 2},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			c, rec := jsonContext(e, http.MethodGet, tt.target, "")
			if err := h.SearchPatients(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var resp struct {
				Data []Patient `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(resp.Data) != tt.want {
				t.Errorf("expected %d patients, got %d", tt.want, len(resp.Data))
			}
		})
	}
}

func TestHandler_ListAvailableSchedules(t *testing.T) {
	h, e, _ := newTestHandler(t)
	c, rec := jsonContext(e, http.MethodGet, "/?specialty=Cardiologia&date="+testNow.Format("2006-01-02"), "")
	if err := h.ListAvailableSchedules(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"id":"ag001"`) {
		t.Errorf("expected ag001 in %s", rec.Body.String())
	}

	c, _ = jsonContext(e, http.MethodGet, "/?specialty=Cardiologia&date=17-10-2026", "")
	expectHTTPError(t, h.ListAvailableSchedules(c), http.StatusBadRequest, apierror.KindInput)

	c, _ = jsonContext(e, http.MethodGet, "/", "")
	expectHTTPError(t, h.ListAvailableSchedules(c), http.StatusBadRequest, apierror.KindInput)
}

func TestHandler_BlockSchedule(t *testing.T) {
	h, e, _ := newTestHandler(t)
	c, rec := jsonContext(e, http.MethodPost, "/", `{"reason":"reforma"}`)
	c.SetParamNames("id")
	c.SetParamValues("ag001")
	if err := h.BlockSchedule(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"blocked":true`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}

	c, _ = jsonContext(e, http.MethodPost, "/", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("ag001")
	expectHTTPError(t, h.BlockSchedule(c), http.StatusBadRequest, apierror.KindInput)
}

func TestHandler_Waitlist(t *testing.T) {
	h, e, _ := newTestHandler(t)

	c, rec := jsonContext(e, http.MethodPost, "/", `{"patientId":"pac001","specialty":"Ortopedia","priority":2}`)
	if err := h.AddWaitlistEntry(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var entry WaitlistEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}

	c, _ = jsonContext(e, http.MethodPost, "/", `{"patientId":"pac001","specialty":"Ortopedia","priority":11}`)
	expectHTTPError(t, h.AddWaitlistEntry(c), http.StatusBadRequest, apierror.KindInput)

	c, rec = jsonContext(e, http.MethodGet, "/?specialty=Ortopedia", "")
	if err := h.ListWaitlist(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), entry.ID) {
		t.Errorf("expected entry %s in %s", entry.ID, rec.Body.String())
	}

	c, rec = jsonContext(e, http.MethodPost, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(entry.ID)
	if err := h.RecordContact(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"contactAttempts":1`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_ListQuotas(t *testing.T) {
	h, e, _ := newTestHandler(t)
	c, rec := jsonContext(e, http.MethodGet, "/?facility_id=ubs001", "")
	if err := h.ListQuotas(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"id":"cota001"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}

	c, _ = jsonContext(e, http.MethodGet, "/", "")
	expectHTTPError(t, h.ListQuotas(c), http.StatusBadRequest, apierror.KindInput)
}

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		err  error
		code int
		kind string
	}{
		{notFound("slot", "x"), http.StatusNotFound, apierror.KindNotFound},
		{ErrCapacityExceeded, http.StatusConflict, apierror.KindCapacityExceeded},
		{invalidf("bad"), http.StatusBadRequest, apierror.KindInput},
		{context.Canceled, apierror.StatusClientClosedRequest, apierror.KindCanceled},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, apierror.KindTimeout},
		{errors.New("pool closed"), http.StatusInternalServerError, apierror.KindInternal},
	}
	for _, tt := range tests {
		he, ok := toHTTPError(tt.err).(*echo.HTTPError)
		if !ok {
			t.Fatalf("%v: expected HTTPError", tt.err)
		}
		body, _ := he.Message.(apierror.Body)
		if he.Code != tt.code || body.Error != tt.kind {
			t.Errorf("%v: expected %d %s, got %d %s", tt.err, tt.code, tt.kind, he.Code, body.Error)
		}
	}
}
