// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Rate limit decision results.
const (
	ResultAllowed = "allowed"
	ResultBlocked = "blocked"
	ResultError   = "error"
)

// Authentication attempt results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Company management metrics
	IncCompanyCreated()
	IncCompanyUpdated()
	IncCompanyDeleted()

	// Rate limiter metrics. match is the endpoint class, result one of
	// ResultAllowed, ResultBlocked or ResultError.
	IncRateLimitDecision(match, result string)

	// Authentication metrics. kind is "sign_up", "sign_in", "sign_out" or
	// "token"; result is ResultSuccess or ResultFailure.
	IncAuthAttempt(kind, result string)

	// Authorization denials by action.
	IncAccessDenied(action string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
