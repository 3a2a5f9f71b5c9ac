package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceName = "donate"

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

// HealthHandler handles health check endpoints
type HealthHandler struct {
	version string
	checks  map[string]Check
}

func NewHealthHandler(version string, checks map[string]Check) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

// Health returns basic health status
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   serviceName,
		"version":   h.version,
		"timestamp": time.Now(),
	})
}

// Ready pings every dependency and reports 503 if any is down.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	c.JSON(code, gin.H{
		"status":    status,
		"service":   serviceName,
		"version":   h.version,
		"checks":    results,
		"timestamp": time.Now(),
	})
}
