package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sebasr/drivesense/internal/behavior"
	"github.com/sebasr/drivesense/internal/database"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status          string `json:"status"`
	TrackedVehicles int    `json:"trackedVehicles"`
	Database        string `json:"database,omitempty"`
}

// HealthHandler handles health check requests
type HealthHandler struct {
	engine *behavior.Engine
	db     *database.DB
}

// NewHealthHandler creates a new health handler. db may be nil when no
// database is configured.
func NewHealthHandler(engine *behavior.Engine, db *database.DB) *HealthHandler {
	return &HealthHandler{engine: engine, db: db}
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:          "ok",
		TrackedVehicles: h.engine.TrackedVehicles(),
	}

	if h.db != nil {
		if err := h.db.HealthCheck(c.Request.Context()); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
		} else {
			resp.Database = "ok"
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
