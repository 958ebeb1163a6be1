package incident

import "errors"

// Error taxonomy for console operations. Every failure path wraps one
// of these sentinels with context; callers classify with errors.Is.
// All are terminal for the operation that produced them - no retry.
var (
	// ErrAuth means the credential is missing or was rejected.
	ErrAuth = errors.New("bad or missing credential")

	// ErrFetch means the incident list could not be retrieved. The
	// caller has nothing loaded, never a partial list.
	ErrFetch = errors.New("incident list fetch failed")

	// ErrUpdate means a status change request failed. Local state is
	// left untouched.
	ErrUpdate = errors.New("incident status update failed")

	// ErrInvalidTransition means the requested target status is not
	// reachable from the incident's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrReconciliation means a record could not be matched to the
	// locally held collection by id, i.e. the view is stale relative
	// to the server.
	ErrReconciliation = errors.New("incident not in local view")
)
