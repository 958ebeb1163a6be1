// Package consoleapi exposes the incident console over HTTP.
package consoleapi

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/oncall/internal/incident"
	"github.com/linnemanlabs/oncall/internal/view"
)

// ConsoleService defines the business operations consoleapi needs.
type ConsoleService interface {
	Refresh(ctx context.Context) error
	Acknowledge(ctx context.Context, id string) (incident.Incident, error)
	Resolve(ctx context.Context, id, note string) (incident.Incident, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    ConsoleService
	state  *view.State
}

// New creates a new API handler.
func New(logger log.Logger, svc ConsoleService, state *view.State) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("console service is required"))
	}
	if state == nil {
		panic(xerrors.New("view state is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
		state:  state,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/incidents", a.handleListIncidents)
		r.Post("/incidents/refresh", a.handleRefresh)
		r.Put("/incidents/{id}/status", a.handleUpdateStatus)
	})
}
