package handlers

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	service string
	version string
	checks  map[string]Pinger
	started time.Time

	draining atomic.Bool
}

// create a new instance of the health handler
func NewHealthHandler(service, version string, checks map[string]Pinger) *HealthHandler {
	if checks == nil {
		checks = map[string]Pinger{}
	}
	return &HealthHandler{
		service: service,
		version: version,
		checks:  checks,
		started: time.Now(),
	}
}

func (h *HealthHandler) Root(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"service": h.service,
		"version": h.version,
		"docs":    "/docs",
		"health":  "/api/health",
	})
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"uptimeSec": int64(time.Since(h.started).Seconds()),
	})
}

// MarkShuttingDown makes readiness fail so load balancers drain this
// instance before the server stops.
func (h *HealthHandler) MarkShuttingDown() {
	h.draining.Store(true)
}

// Readyz pings every registered dependency and answers 503 if any fails.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.draining.Load() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(gin.H, len(h.checks))

	for name, ping := range h.checks {
		if err := ping(cctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = "down"
			continue
		}
		results[name] = "up"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}

	ctx.JSON(status, gin.H{"status": state, "checks": results})
}
