package metrics

import (
	"sync"
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	CompaniesCreated uint64
	CompaniesUpdated uint64
	CompaniesDeleted uint64
	// RateLimitDecisions is keyed by "match/result".
	RateLimitDecisions map[string]uint64
	// AuthAttempts is keyed by "kind/result".
	AuthAttempts map[string]uint64
	// AccessDenied is keyed by action.
	AccessDenied map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	companiesCreated uint64
	companiesUpdated uint64
	companiesDeleted uint64

	mu                 sync.Mutex
	rateLimitDecisions map[string]uint64
	authAttempts       map[string]uint64
	accessDenied       map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		rateLimitDecisions: make(map[string]uint64),
		authAttempts:       make(map[string]uint64),
		accessDenied:       make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		CompaniesCreated:   atomic.LoadUint64(&m.companiesCreated),
		CompaniesUpdated:   atomic.LoadUint64(&m.companiesUpdated),
		CompaniesDeleted:   atomic.LoadUint64(&m.companiesDeleted),
		RateLimitDecisions: copyCounts(m.rateLimitDecisions),
		AuthAttempts:       copyCounts(m.authAttempts),
		AccessDenied:       copyCounts(m.accessDenied),
	}
}

// IncCompanyCreated increments company created counter.
func (m *InMemoryRecorder) IncCompanyCreated() {
	atomic.AddUint64(&m.companiesCreated, 1)
}

// IncCompanyUpdated increments company updated counter.
func (m *InMemoryRecorder) IncCompanyUpdated() {
	atomic.AddUint64(&m.companiesUpdated, 1)
}

// IncCompanyDeleted increments company deleted counter.
func (m *InMemoryRecorder) IncCompanyDeleted() {
	atomic.AddUint64(&m.companiesDeleted, 1)
}

// IncRateLimitDecision counts a limiter decision.
func (m *InMemoryRecorder) IncRateLimitDecision(match, result string) {
	m.inc(m.rateLimitDecisions, match+"/"+result)
}

// IncAuthAttempt counts an authentication attempt.
func (m *InMemoryRecorder) IncAuthAttempt(kind, result string) {
	m.inc(m.authAttempts, kind+"/"+result)
}

// IncAccessDenied counts an authorization denial.
func (m *InMemoryRecorder) IncAccessDenied(action string) {
	m.inc(m.accessDenied, action)
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, key string) {
	m.mu.Lock()
	counts[key]++
	m.mu.Unlock()
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
