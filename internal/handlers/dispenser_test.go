package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dispenser_control/internal/models"
	"dispenser_control/internal/service"
)

func TestGetStatus_ReturnsOrderedSnapshot(t *testing.T) {
	mon := &mockMonitoring{snapshot: []models.Nozzle{
		{ID: "01", Status: models.StatusWaiting},
		{ID: "02", Status: models.StatusAuthorized, Fueling: &models.Fueling{Volume: 0.5, Price: 5.89, Total: 2.95}},
		{ID: "03", Status: models.StatusBlocked},
	}}
	s := &service.Service{Monitoring: mon}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}

	var out []models.Nozzle
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if len(out) != 3 || out[0].ID != "01" || out[2].ID != "03" {
		t.Fatalf("unexpected snapshot: %+v", out)
	}
	if out[1].Fueling == nil || out[1].Fueling.Total != 2.95 {
		t.Fatalf("fueling not serialized: %+v", out[1])
	}
	// Idle nozzles must carry an explicit null, not omit the field.
	if !bytes.Contains(w.Body.Bytes(), []byte(`"fueling":null`)) {
		t.Fatalf("expected explicit fueling:null in body: %s", w.Body.String())
	}
}

func TestGetStatus_ServiceError_Returns500(t *testing.T) {
	mon := &mockMonitoring{err: errors.New("boom")}
	s := &service.Service{Monitoring: mon}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestPostCommand_Success(t *testing.T) {
	disp := &mockDispenser{resp: models.Nozzle{ID: "05", Status: models.StatusReady}}
	s := &service.Service{Dispenser: disp}
	r := newTestRouter(s)

	body := bytes.NewBufferString(`{"nozzleId":"05","command":"AUTHORIZE"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/command", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if disp.applyCalls != 1 || disp.lastNozzle != "05" || disp.lastCommand != "AUTHORIZE" {
		t.Fatalf("wrong Apply call: %+v", disp)
	}

	var resp struct {
		Success bool          `json:"success"`
		Nozzle  models.Nozzle `json:"nozzle"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success || resp.Nozzle.ID != "05" || resp.Nozzle.Status != models.StatusReady {
		t.Fatalf("bad response: %+v", resp)
	}
}

func TestPostCommand_UnknownNozzle_Returns404(t *testing.T) {
	disp := &mockDispenser{err: service.ErrNozzleNotFound}
	s := &service.Service{Dispenser: disp}
	r := newTestRouter(s)

	body := bytes.NewBufferString(`{"nozzleId":"99","command":"AUTHORIZE"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/command", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", w.Code, w.Body.String())
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] == "" {
		t.Fatalf("expected error message, got %s", w.Body.String())
	}
}

func TestPostCommand_InternalError_Returns500(t *testing.T) {
	disp := &mockDispenser{err: errors.New("engine fault")}
	s := &service.Service{Dispenser: disp}
	r := newTestRouter(s)

	body := bytes.NewBufferString(`{"nozzleId":"01","command":"BLOCK"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/command", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestPostCommand_MalformedBody_Returns400(t *testing.T) {
	disp := &mockDispenser{}
	s := &service.Service{Dispenser: disp}
	r := newTestRouter(s)

	for _, body := range []string{`{}`, `{"nozzleId":"05"}`, `not json`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/command", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
	}
	if disp.applyCalls != 0 {
		t.Fatalf("Apply must not run on malformed body")
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
}
