package consoleapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/oncall/internal/incident"
	"github.com/linnemanlabs/oncall/internal/view"
)

// mockService implements ConsoleService for testing.
type mockService struct {
	refreshErr error
	ackErr     error
	resolveErr error
	updated    incident.Incident
	gotNote    string
}

func (m *mockService) Refresh(_ context.Context) error { return m.refreshErr }

func (m *mockService) Acknowledge(_ context.Context, _ string) (incident.Incident, error) {
	if m.ackErr != nil {
		return incident.Incident{}, m.ackErr
	}
	return m.updated, nil
}

func (m *mockService) Resolve(_ context.Context, _ string, note string) (incident.Incident, error) {
	m.gotNote = note
	if m.resolveErr != nil {
		return incident.Incident{}, m.resolveErr
	}
	return m.updated, nil
}

func newTestRouter(t *testing.T, svc *mockService, state *view.State) chi.Router {
	t.Helper()
	api := New(nil, svc, state)
	r := chi.NewRouter()
	api.RegisterRoutes(r)
	return r
}

//  New / constructor

func TestNew_NilLogger(t *testing.T) {
	t.Parallel()

	api := New(nil, &mockService{}, view.New())
	if api.logger == nil {
		t.Fatal("New(nil, svc, state) left logger nil; expected Nop logger")
	}
}

func TestNew_WithLogger(t *testing.T) {
	t.Parallel()

	api := New(log.Nop(), &mockService{}, view.New())
	if api.logger == nil {
		t.Fatal("New(logger, svc, state) left logger nil")
	}
}

func TestNew_NilService_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("New(nil, nil, state) did not panic; expected panic for nil service")
		}
	}()
	New(nil, nil, view.New())
}

func TestNew_NilState_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("New(nil, svc, nil) did not panic; expected panic for nil state")
		}
	}()
	New(nil, &mockService{}, nil)
}

// List

func TestListIncidents_ReturnsViewWithLocalTimestamps(t *testing.T) {
	t.Parallel()

	state := view.New()
	if err := state.Replace([]incident.Incident{{
		ID:        "A",
		Status:    incident.StatusTriggered,
		Title:     "disk full",
		CreatedAt: time.Date(2026, 8, 28, 3, 21, 9, 0, time.UTC),
	}}); err != nil {
		t.Fatalf("seed state: %v", err)
	}
	r := newTestRouter(t, &mockService{}, state)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/incidents", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Incidents []struct {
			ID             string `json:"id"`
			Status         string `json:"status"`
			CreatedAtLocal string `json:"created_at_local"`
		} `json:"incidents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Incidents) != 1 {
		t.Fatalf("incidents len = %d, want 1", len(body.Incidents))
	}
	if body.Incidents[0].CreatedAtLocal != "2026/08/28 12:21:09" {
		t.Errorf("created_at_local = %q, want %q", body.Incidents[0].CreatedAtLocal, "2026/08/28 12:21:09")
	}
}

func TestListIncidents_EmptyListIsOK(t *testing.T) {
	t.Parallel()

	state := view.New()
	if err := state.Replace(nil); err != nil {
		t.Fatalf("seed state: %v", err)
	}
	r := newTestRouter(t, &mockService{}, state)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/incidents", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for an empty (but loaded) list", rec.Code)
	}
}

func TestListIncidents_LoadErrorState(t *testing.T) {
	t.Parallel()

	state := view.New()
	state.SetLoadError(fmt.Errorf("%w: pagerduty returned 500", incident.ErrFetch))
	r := newTestRouter(t, &mockService{}, state)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/incidents", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502 for load-error state", rec.Code)
	}
}

// Refresh

func TestRefresh(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		svc        *mockService
		wantStatus int
	}{
		{"success", &mockService{}, http.StatusNoContent},
		{"fetch failure", &mockService{refreshErr: incident.ErrFetch}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newTestRouter(t, tt.svc, view.New())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/incidents/refresh", http.NoBody)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

// Update status

func TestUpdateStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		svc        *mockService
		body       string
		wantStatus int
	}{
		{
			"acknowledge success",
			&mockService{updated: incident.Incident{ID: "A", Status: incident.StatusAcknowledged}},
			`{"status":"acknowledged"}`,
			http.StatusOK,
		},
		{
			"resolve success",
			&mockService{updated: incident.Incident{ID: "A", Status: incident.StatusResolved}},
			`{"status":"resolved","note":"fixed"}`,
			http.StatusOK,
		},
		{
			"invalid transition",
			&mockService{ackErr: fmt.Errorf("%w: resolved -> acknowledged", incident.ErrInvalidTransition)},
			`{"status":"acknowledged"}`,
			http.StatusConflict,
		},
		{
			"stale view",
			&mockService{ackErr: fmt.Errorf("%w: id %q", incident.ErrReconciliation, "A")},
			`{"status":"acknowledged"}`,
			http.StatusConflict,
		},
		{
			"upstream failure",
			&mockService{resolveErr: fmt.Errorf("%w: pagerduty returned 500", incident.ErrUpdate)},
			`{"status":"resolved"}`,
			http.StatusBadGateway,
		},
		{
			"credential rejected",
			&mockService{resolveErr: fmt.Errorf("%w: %w: pagerduty returned 401", incident.ErrUpdate, incident.ErrAuth)},
			`{"status":"resolved"}`,
			http.StatusBadGateway,
		},
		{
			"bad json",
			&mockService{},
			`{bad`,
			http.StatusBadRequest,
		},
		{
			"unsupported target",
			&mockService{},
			`{"status":"triggered"}`,
			http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newTestRouter(t, tt.svc, view.New())
			req := httptest.NewRequest(http.MethodPut, "/api/v1/incidents/A/status", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestUpdateStatus_NotePassedThrough(t *testing.T) {
	t.Parallel()

	svc := &mockService{updated: incident.Incident{ID: "A", Status: incident.StatusResolved}}
	r := newTestRouter(t, svc, view.New())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/incidents/A/status",
		strings.NewReader(`{"status":"resolved","note":"rebooted db-1"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.gotNote != "rebooted db-1" {
		t.Errorf("note = %q, want %q", svc.gotNote, "rebooted db-1")
	}
}

func TestUpdateStatus_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, &mockService{}, view.New())

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/v1/incidents/A/status", http.NoBody)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s /api/v1/incidents/A/status = %d, want 405", method, rec.Code)
		}
	}
}
