package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncCompanyCreated is a no-op.
func (n *NoopRecorder) IncCompanyCreated() {}

// IncCompanyUpdated is a no-op.
func (n *NoopRecorder) IncCompanyUpdated() {}

// IncCompanyDeleted is a no-op.
func (n *NoopRecorder) IncCompanyDeleted() {}

// IncRateLimitDecision is a no-op.
func (n *NoopRecorder) IncRateLimitDecision(match, result string) {}

// IncAuthAttempt is a no-op.
func (n *NoopRecorder) IncAuthAttempt(kind, result string) {}

// IncAccessDenied is a no-op.
func (n *NoopRecorder) IncAccessDenied(action string) {}
