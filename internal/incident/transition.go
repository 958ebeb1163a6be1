package incident

import "fmt"

// transitions maps a current status to the statuses reachable from it.
// The progression is strictly forward; resolved is terminal.
var transitions = map[Status][]Status{
	StatusTriggered:    {StatusAcknowledged, StatusResolved},
	StatusAcknowledged: {StatusResolved},
	StatusResolved:     {},
}

// CanTransition reports whether an incident currently in status from
// may move to status to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition validates a requested transition against the table,
// returning a wrapped ErrInvalidTransition if it is not allowed. This
// runs before any request is issued, independent of which actions a
// presentation layer chooses to render.
func CheckTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
