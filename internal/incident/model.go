package incident

import "time"

// Status is the lifecycle stage of an incident. It progresses forward
// only: triggered -> acknowledged -> resolved.
type Status string

const (
	// StatusTriggered means the incident is open and unhandled.
	StatusTriggered Status = "triggered"

	// StatusAcknowledged means a responder has taken ownership.
	StatusAcknowledged Status = "acknowledged"

	// StatusResolved means the incident is closed. Terminal.
	StatusResolved Status = "resolved"
)

// Valid reports whether s is a known lifecycle stage.
func (s Status) Valid() bool {
	switch s {
	case StatusTriggered, StatusAcknowledged, StatusResolved:
		return true
	}
	return false
}

// Urgency values as reported by PagerDuty. Informational only.
const (
	UrgencyHigh = "high"
	UrgencyLow  = "low"
)

// Incident is a unit of alerting work tracked by PagerDuty. Incidents
// are created server-side; this system only reads them and transitions
// the status field. JSON tags match the PagerDuty wire format.
type Incident struct {
	ID             string    `json:"id"`
	Status         Status    `json:"status"`
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	IncidentNumber int       `json:"incident_number"`
	CreatedAt      time.Time `json:"created_at"`
	Urgency        string    `json:"urgency"`
	HTMLURL        string    `json:"html_url"`
}
