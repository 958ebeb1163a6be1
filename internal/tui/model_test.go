package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linnemanlabs/oncall/internal/incident"
	"github.com/linnemanlabs/oncall/internal/view"
)

// mockService implements Service for testing.
type mockService struct {
	refreshErr error
	ackErr     error
	resolveErr error
	gotNote    string
}

func (m *mockService) Refresh(_ context.Context) error { return m.refreshErr }

func (m *mockService) Acknowledge(_ context.Context, _ string) (incident.Incident, error) {
	return incident.Incident{}, m.ackErr
}

func (m *mockService) Resolve(_ context.Context, _ string, note string) (incident.Incident, error) {
	m.gotNote = note
	return incident.Incident{}, m.resolveErr
}

func seededModel(t *testing.T, incidents ...incident.Incident) (Model, *view.State) {
	t.Helper()
	state := view.New()
	if err := state.Replace(incidents); err != nil {
		t.Fatalf("seed state: %v", err)
	}
	m := NewModel(&mockService{}, state)
	model, _ := m.Update(fetchDoneMsg{})
	return model.(Model), state
}

func TestItemsFrom_PreservesViewOrder(t *testing.T) {
	t.Parallel()

	state := view.New()
	if err := state.Replace([]incident.Incident{
		{ID: "B", IncidentNumber: 2, Title: "newest"},
		{ID: "A", IncidentNumber: 1, Title: "older"},
	}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	items := itemsFrom(state)
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].(item).in.ID != "B" || items[1].(item).in.ID != "A" {
		t.Errorf("order = [%s %s], want [B A]", items[0].(item).in.ID, items[1].(item).in.ID)
	}
}

func TestItemDescription_TokyoTimestamp(t *testing.T) {
	t.Parallel()

	it := item{in: incident.Incident{
		CreatedAt: time.Date(2026, 8, 28, 3, 21, 9, 0, time.UTC),
		Urgency:   incident.UrgencyLow,
		Summary:   "disk full",
	}}

	if got := it.Description(); !strings.Contains(got, "2026/08/28 12:21:09") {
		t.Errorf("Description() = %q, want Tokyo-local timestamp", got)
	}
}

func TestFetchDone_ErrorShowsNotice(t *testing.T) {
	t.Parallel()

	m := NewModel(&mockService{}, view.New())

	res, _ := m.Update(fetchDoneMsg{err: errors.New("pagerduty down")})
	got := res.(Model)

	if !strings.Contains(got.notice, "pagerduty down") {
		t.Errorf("notice = %q, want fetch error surfaced", got.notice)
	}
}

func TestUpdateDone_ClearsInflightAndNotice(t *testing.T) {
	t.Parallel()

	m := NewModel(&mockService{}, view.New())
	m.inflight["A"] = true
	m.notice = "stale"

	res, _ := m.Update(updateDoneMsg{id: "A"})
	got := res.(Model)

	if got.inflight["A"] {
		t.Error("inflight[A] still set after updateDoneMsg")
	}
	if got.notice != "" {
		t.Errorf("notice = %q, want cleared", got.notice)
	}
}

func TestUpdateDone_ErrorShowsNotice(t *testing.T) {
	t.Parallel()

	m := NewModel(&mockService{}, view.New())
	m.inflight["A"] = true

	res, _ := m.Update(updateDoneMsg{id: "A", err: errors.New("invalid status transition")})
	got := res.(Model)

	if got.inflight["A"] {
		t.Error("inflight[A] still set after failed update")
	}
	if !strings.Contains(got.notice, "invalid status transition") {
		t.Errorf("notice = %q, want error surfaced", got.notice)
	}
}

func TestAcknowledge_InvalidTransition_NoCommand(t *testing.T) {
	t.Parallel()

	m, _ := seededModel(t, incident.Incident{ID: "A", Status: incident.StatusResolved, Title: "done"})

	res, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	got := res.(Model)

	if cmd != nil {
		t.Error("expected no command for an invalid transition")
	}
	if !strings.Contains(got.notice, "invalid status transition") {
		t.Errorf("notice = %q, want transition error", got.notice)
	}
	if got.inflight["A"] {
		t.Error("inflight[A] set despite rejected transition")
	}
}

func TestAcknowledge_MarksInflight(t *testing.T) {
	t.Parallel()

	m, _ := seededModel(t, incident.Incident{ID: "A", Status: incident.StatusTriggered, Title: "boom"})

	res, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	got := res.(Model)

	if cmd == nil {
		t.Fatal("expected an update command")
	}
	if !got.inflight["A"] {
		t.Error("inflight[A] not set while update runs")
	}

	// A second acknowledge while in flight is refused locally.
	res2, cmd2 := got.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	if cmd2 != nil {
		t.Error("expected no command while update is in flight")
	}
	if !strings.Contains(res2.(Model).notice, "in flight") {
		t.Errorf("notice = %q, want in-flight refusal", res2.(Model).notice)
	}
}

func TestResolvePrompt_SubmitsNote(t *testing.T) {
	t.Parallel()

	m, _ := seededModel(t, incident.Incident{ID: "A", Status: incident.StatusAcknowledged, Title: "boom"})

	res, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'R'}})
	got := res.(Model)
	if !got.noting || got.resolveID != "A" {
		t.Fatalf("noting = %v, resolveID = %q, want prompt for A", got.noting, got.resolveID)
	}

	got.note.SetValue("rebooted db-1")
	res2, cmd := got.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got2 := res2.(Model)

	if cmd == nil {
		t.Fatal("expected a resolve command on enter")
	}
	if got2.noting {
		t.Error("prompt still active after submit")
	}
	if !got2.inflight["A"] {
		t.Error("inflight[A] not set after submit")
	}
}

func TestResolvePrompt_EscapeCancels(t *testing.T) {
	t.Parallel()

	m, _ := seededModel(t, incident.Incident{ID: "A", Status: incident.StatusTriggered, Title: "boom"})

	res, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'R'}})
	got := res.(Model)
	if !got.noting {
		t.Fatal("prompt not active after R")
	}

	res2, cmd := got.Update(tea.KeyMsg{Type: tea.KeyEsc})
	got2 := res2.(Model)

	if cmd != nil {
		t.Error("expected no command on cancel")
	}
	if got2.noting || got2.inflight["A"] {
		t.Error("cancel left prompt or inflight state behind")
	}
}
