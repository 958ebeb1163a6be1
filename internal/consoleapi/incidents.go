package consoleapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/oncall/internal/incident"
)

// incidentView is the wire shape served to console clients: the
// incident record plus the fixed Asia/Tokyo rendering of created_at.
type incidentView struct {
	incident.Incident
	CreatedAtLocal string `json:"created_at_local"`
}

func toView(in incident.Incident) incidentView {
	return incidentView{
		Incident:       in,
		CreatedAtLocal: incident.FormatCreatedAt(in.CreatedAt),
	}
}

func (a *API) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	if err := a.state.LoadError(); err != nil {
		// An explicit error state, not an empty list: the caller must
		// be able to tell "no incidents" from "failed to load".
		a.logger.Error(r.Context(), err, "view in load-error state")
		writeError(w, http.StatusBadGateway, "incident list unavailable")
		return
	}

	list := a.state.List()

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.Int("oncall.incidents.count", len(list)))

	out := make([]incidentView, 0, len(list))
	for _, in := range list {
		out = append(out, toView(in))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"incidents": out})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Refresh(r.Context()); err != nil {
		a.logger.Error(r.Context(), err, "refresh failed")
		writeError(w, http.StatusBadGateway, "refresh failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateStatusRequest struct {
	Status incident.Status `json:"status"`
	Note   string          `json:"note,omitempty"`
}

func (a *API) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("oncall.incident.id", id))

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	var (
		updated incident.Incident
		err     error
	)
	switch req.Status {
	case incident.StatusAcknowledged:
		updated, err = a.svc.Acknowledge(r.Context(), id)
	case incident.StatusResolved:
		updated, err = a.svc.Resolve(r.Context(), id, req.Note)
	default:
		writeError(w, http.StatusBadRequest, "unsupported target status")
		return
	}
	if err != nil {
		a.logger.Error(r.Context(), err, "status update failed", "id", id, "target", string(req.Status))
		writeError(w, statusFor(err), publicMessage(err))
		return
	}

	span.SetAttributes(attribute.String("oncall.incident.status", string(updated.Status)))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"incident": toView(updated)})
}

// statusFor maps the error taxonomy to HTTP status codes. Invalid
// transitions and stale views are conflicts the caller can fix by
// refreshing; everything else is an upstream failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, incident.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, incident.ErrReconciliation):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func publicMessage(err error) string {
	switch {
	case errors.Is(err, incident.ErrInvalidTransition):
		return "invalid status transition"
	case errors.Is(err, incident.ErrReconciliation):
		return "incident list is stale, refresh first"
	case errors.Is(err, incident.ErrAuth):
		return "pagerduty credential rejected"
	default:
		return "status update failed"
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
