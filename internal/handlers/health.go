package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/models"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/utils"

	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 3 * time.Second

// Checker reports whether one backing dependency is usable.
type Checker func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Checker
	logger *utils.Logger
	now    func() time.Time
}

func NewHealthHandler(checks map[string]Checker, logger *utils.Logger) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		logger: logger,
		now:    time.Now,
	}
}

// Health reports liveness only; it never touches dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, models.HealthResponse{
		Status:    "OK",
		Timestamp: h.now().UTC(),
	})
}

// Ready runs every dependency check concurrently and answers 503 if any fails.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(h.checks))
	)

	// Checks do not cancel each other so every failure is reported.
	var g errgroup.Group
	for name, check := range h.checks {
		g.Go(func() error {
			err := check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[name] = err.Error()
				return err
			}
			results[name] = "ok"
			return nil
		})
	}

	resp := models.ReadinessResponse{Status: "ready", Checks: results}
	status := http.StatusOK
	if err := g.Wait(); err != nil {
		h.logger.Warn("Readiness check failed", "error", err)
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, h.logger, status, resp)
}
