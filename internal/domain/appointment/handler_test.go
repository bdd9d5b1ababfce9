package appointment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *mockRecomputer, *echo.Echo) {
	svc, _, rec := newTestService()
	return NewHandler(svc), rec, echo.New()
}

func jsonCtx(e *echo.Echo, method, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	return c, rec
}

func TestHandler_CreateAndComplete(t *testing.T) {
	h, recomp, e := newTestHandler()
	patientID := uuid.NewString()
	practID := uuid.NewString()

	body := `{"patient_id":"` + patientID + `","practitioner_id":"` + practID +
		`","reason":"annual checkup","scheduled_at":"2024-03-01T09:00:00Z","fee_cents":5000}`
	c, rr := jsonCtx(e, http.MethodPost, body)
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}

	var a Appointment
	if err := json.Unmarshal(rr.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("status = %q", a.Status)
	}

	c, rr = jsonCtx(e, http.MethodPost, `{"fee_cents":7500}`, "id", a.ID.String())
	if err := h.Complete(c); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
	if len(recomp.calls) != 1 {
		t.Errorf("expected 1 recompute, got %d", len(recomp.calls))
	}
}

func TestHandler_Create_Validation(t *testing.T) {
	h, _, e := newTestHandler()

	cases := []struct {
		name string
		body string
	}{
		{"missing patient", `{"practitioner_id":"` + uuid.NewString() + `","reason":"x","scheduled_at":"2024-03-01"}`},
		{"bad uuid", `{"patient_id":"nope","practitioner_id":"` + uuid.NewString() + `","reason":"x","scheduled_at":"2024-03-01"}`},
		{"negative fee", `{"patient_id":"` + uuid.NewString() + `","practitioner_id":"` + uuid.NewString() + `","reason":"x","scheduled_at":"2024-03-01","fee_cents":-1}`},
		{"bad time", `{"patient_id":"` + uuid.NewString() + `","practitioner_id":"` + uuid.NewString() + `","reason":"x","scheduled_at":"tomorrow"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := jsonCtx(e, http.MethodPost, tc.body)
			err := h.Create(c)
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %v", err)
			}
		})
	}
}

func TestHandler_List_RequiresFilter(t *testing.T) {
	h, _, e := newTestHandler()
	c, _ := jsonCtx(e, http.MethodGet, "")
	err := h.List(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Cancel_NotFound(t *testing.T) {
	h, _, e := newTestHandler()
	c, _ := jsonCtx(e, http.MethodPost, "", "id", uuid.NewString())
	err := h.Cancel(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}
