package platform

import "errors"

// Error taxonomy shared by the clients and the orchestrator. Callers are
// expected to branch with errors.Is.
var (
	// ErrNotAuthenticated is returned before any network call when the
	// session has no identity, and on 401/403 responses.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPreconditionFailed signals a missing active CV.
	ErrPreconditionFailed = errors.New("precondition failed: no active cv selected")

	// ErrInvalidTransition signals a status change from a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUpstreamUnavailable covers unreachable services and 5xx answers.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrNotFound signals a stale id reference.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyApplied is the application store's answer to a duplicate
	// (candidate, job) submission.
	ErrAlreadyApplied = errors.New("application already exists for this job")
)
