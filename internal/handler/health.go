package handler

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// readyTimeout bounds all dependency checks of one readiness probe.
const readyTimeout = 5 * time.Second

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	names    []string
	checkers map[string]HealthChecker
}

// NewHealthHandler creates a new HealthHandler. checkers maps a dependency
// name such as "postgres" to its probe; nil entries are skipped.
func NewHealthHandler(checkers map[string]HealthChecker) *HealthHandler {
	h := &HealthHandler{checkers: make(map[string]HealthChecker, len(checkers))}
	for name, c := range checkers {
		if c == nil {
			continue
		}
		h.names = append(h.names, name)
		h.checkers[name] = c
	}
	sort.Strings(h.names)
	return h
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe endpoint.
// It returns 200 if the server is running. No dependency checks.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is a readiness probe endpoint.
// Dependencies are pinged concurrently; it returns 200 only if all are
// healthy.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		checks  = make(map[string]string, len(h.names))
		healthy = true
	)

	var g errgroup.Group
	for _, name := range h.names {
		checker := h.checkers[name]
		g.Go(func() error {
			result := "ok"
			if err := checker.Ping(ctx); err != nil {
				result = "error: " + err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			checks[name] = result
			if result != "ok" {
				healthy = false
			}
			return nil
		})
	}
	_ = g.Wait()

	status := "ok"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{
		Status: status,
		Checks: checks,
	})
}
