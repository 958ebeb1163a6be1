// Package console implements the incident console operations: refresh
// the incident list from PagerDuty and transition a single incident's
// status, merging the server's canonical record into the caller-owned
// view state.
package console

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/oncall/internal/incident"
	"github.com/linnemanlabs/oncall/internal/view"
)

// Client is the PagerDuty surface the console needs.
type Client interface {
	ListIncidents(ctx context.Context) ([]incident.Incident, error)
	UpdateIncident(ctx context.Context, id string, target incident.Status, note string) (incident.Incident, error)
}

// Service is the business boundary for console operations. It is safe
// for concurrent use; updates are serialized per incident id so two
// in-flight updates can never race the merge step.
type Service struct {
	client  Client
	state   *view.State
	logger  log.Logger
	metrics *Metrics

	mu       sync.Mutex
	inflight map[string]struct{} // incident ids with an update in flight
}

// NewService creates a console service over the given client and
// caller-owned view state. Metrics may be nil.
func NewService(client Client, state *view.State, logger log.Logger, metrics *Metrics) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	if client == nil {
		panic(xerrors.New("pagerduty client is required"))
	}
	if state == nil {
		panic(xerrors.New("view state is required"))
	}
	return &Service{
		client:   client,
		state:    state,
		logger:   logger,
		metrics:  metrics,
		inflight: make(map[string]struct{}),
	}
}

// Refresh fetches the incident list and rebuilds the view. On failure
// the view keeps an explicit load error instead of an empty list, so
// callers can tell "failed to load" from "no incidents".
func (s *Service) Refresh(ctx context.Context) error {
	opID := ulid.Make().String()
	L := s.logger.With("op", "refresh", "op_id", opID)

	start := time.Now()
	incidents, err := s.client.ListIncidents(ctx)
	if err != nil {
		s.state.SetLoadError(err)
		s.metrics.observeFetch("error", time.Since(start))
		L.Error(ctx, err, "incident fetch failed")
		return err
	}

	if err := s.state.Replace(incidents); err != nil {
		s.state.SetLoadError(err)
		s.metrics.observeFetch("error", time.Since(start))
		L.Error(ctx, err, "fetched incident list rejected")
		return err
	}

	s.metrics.observeFetch("success", time.Since(start))
	s.metrics.setVisible(len(incidents))
	L.Info(ctx, "incident list refreshed", "count", len(incidents))
	return nil
}

// Acknowledge transitions one triggered incident to acknowledged.
func (s *Service) Acknowledge(ctx context.Context, id string) (incident.Incident, error) {
	return s.update(ctx, id, incident.StatusAcknowledged, "")
}

// Resolve transitions an incident to resolved, attaching an optional
// resolution note.
func (s *Service) Resolve(ctx context.Context, id, note string) (incident.Incident, error) {
	return s.update(ctx, id, incident.StatusResolved, note)
}

// update runs the full transition cycle: local guard, one write
// request, confirm-then-mutate merge. A failed request leaves the view
// untouched; the merge happens only after the server confirmed the
// transition and returned its canonical record.
func (s *Service) update(ctx context.Context, id string, target incident.Status, note string) (incident.Incident, error) {
	var zero incident.Incident

	opID := ulid.Make().String()
	L := s.logger.With("op", "update", "op_id", opID, "incident_id", id, "target", string(target))

	cur, ok := s.state.Get(id)
	if !ok {
		err := fmt.Errorf("%w: id %q", incident.ErrReconciliation, id)
		L.Error(ctx, err, "incident not in view")
		return zero, err
	}

	if err := incident.CheckTransition(cur.Status, target); err != nil {
		s.metrics.incTransitionDenied(cur.Status, target)
		L.Warn(ctx, "transition rejected before request", "current", string(cur.Status))
		return zero, err
	}

	if !s.begin(id) {
		err := fmt.Errorf("%w: update already in flight for %q", incident.ErrUpdate, id)
		L.Warn(ctx, "concurrent update rejected")
		return zero, err
	}
	defer s.end(id)

	start := time.Now()
	updated, err := s.client.UpdateIncident(ctx, id, target, note)
	if err != nil {
		s.metrics.observeUpdate(string(target), "error", time.Since(start))
		L.Error(ctx, err, "status update failed")
		return zero, err
	}

	if err := s.state.Apply(updated); err != nil {
		s.metrics.observeUpdate(string(target), "stale", time.Since(start))
		L.Error(ctx, err, "merge failed, view is stale")
		return zero, err
	}

	s.metrics.observeUpdate(string(target), "success", time.Since(start))
	L.Info(ctx, "status updated", "status", string(updated.Status))
	return updated, nil
}

func (s *Service) begin(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *Service) end(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}
