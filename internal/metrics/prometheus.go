package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "companyhub"

// PrometheusRecorder exports counters through a Prometheus registry.
type PrometheusRecorder struct {
	companies          *prometheus.CounterVec
	rateLimitDecisions *prometheus.CounterVec
	authAttempts       *prometheus.CounterVec
	accessDenied       *prometheus.CounterVec
}

// NewPrometheus registers the application collectors with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		companies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "companies_operations_total",
				Help:      "Successful company mutations by operation",
			},
			[]string{"operation"}, // created | updated | deleted
		),
		rateLimitDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_decisions_total",
				Help:      "Rate limiter decisions by endpoint class and result",
			},
			[]string{"match", "result"},
		),
		authAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Authentication attempts by kind and result",
			},
			[]string{"kind", "result"},
		),
		accessDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "access_denied_total",
				Help:      "Authorization denials by action",
			},
			[]string{"action"},
		),
	}
}

// IncCompanyCreated increments the created counter.
func (p *PrometheusRecorder) IncCompanyCreated() {
	p.companies.WithLabelValues("created").Inc()
}

// IncCompanyUpdated increments the updated counter.
func (p *PrometheusRecorder) IncCompanyUpdated() {
	p.companies.WithLabelValues("updated").Inc()
}

// IncCompanyDeleted increments the deleted counter.
func (p *PrometheusRecorder) IncCompanyDeleted() {
	p.companies.WithLabelValues("deleted").Inc()
}

// IncRateLimitDecision counts a limiter decision.
func (p *PrometheusRecorder) IncRateLimitDecision(match, result string) {
	p.rateLimitDecisions.WithLabelValues(match, result).Inc()
}

// IncAuthAttempt counts an authentication attempt.
func (p *PrometheusRecorder) IncAuthAttempt(kind, result string) {
	p.authAttempts.WithLabelValues(kind, result).Inc()
}

// IncAccessDenied counts an authorization denial.
func (p *PrometheusRecorder) IncAccessDenied(action string) {
	p.accessDenied.WithLabelValues(action).Inc()
}
