package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthStatus struct {
	Status      string            `json:"status"`
	LastChecked time.Time         `json:"last_checked"`
	Uptime      string            `json:"uptime"`
	Version     string            `json:"version"`
	Checks      map[string]string `json:"checks,omitempty"`
}

// Probe reports the health of one dependency.
type Probe func(ctx context.Context) error

// Health serves a cached health report built from the registered probes.
type Health struct {
	mu            sync.Mutex
	version       string
	probes        map[string]Probe
	started       time.Time
	cacheDuration time.Duration
	last          *HealthStatus
	lastChecked   time.Time
	now           func() time.Time
}

func NewHealth(version string) *Health {
	return &Health{
		version:       version,
		probes:        make(map[string]Probe),
		started:       time.Now(),
		cacheDuration: 5 * time.Second,
		now:           time.Now,
	}
}

// AddProbe registers a dependency check; a failing probe degrades the status.
func (h *Health) AddProbe(name string, probe Probe) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes[name] = probe
	h.last = nil
}

func (h *Health) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := h.check(c.Request.Context())

		code := http.StatusOK
		if status.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	}
}

func (h *Health) check(ctx context.Context) HealthStatus {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	if h.last != nil && now.Sub(h.lastChecked) < h.cacheDuration {
		cached := *h.last
		cached.Uptime = now.Sub(h.started).Round(time.Second).String()
		return cached
	}

	status := HealthStatus{
		Status:      "ok",
		LastChecked: now,
		Uptime:      now.Sub(h.started).Round(time.Second).String(),
		Version:     h.version,
	}
	if len(h.probes) > 0 {
		status.Checks = make(map[string]string, len(h.probes))
	}

	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	for name, probe := range h.probes {
		if err := probe(probeCtx); err != nil {
			status.Status = "degraded"
			status.Checks[name] = err.Error()
			continue
		}
		status.Checks[name] = "ok"
	}

	h.last = &status
	h.lastChecked = now
	return status
}
