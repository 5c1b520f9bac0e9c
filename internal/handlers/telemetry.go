// Package handlers contains HTTP handlers for the DriveSense API.
package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sebasr/drivesense/internal/alerting"
	"github.com/sebasr/drivesense/internal/behavior"
	"github.com/sebasr/drivesense/internal/models"
)

// TelemetryHandler handles incoming telemetry samples from vehicles
type TelemetryHandler struct {
	engine      *behavior.Engine
	notifier    alerting.Notifier
	minSeverity models.Severity
}

// NewTelemetryHandler creates a new telemetry handler. notifier may be
// nil when alerting is not configured.
func NewTelemetryHandler(engine *behavior.Engine, notifier alerting.Notifier, minSeverity models.Severity) *TelemetryHandler {
	return &TelemetryHandler{
		engine:      engine,
		notifier:    notifier,
		minSeverity: minSeverity,
	}
}

// Ingest handles POST /api/v1/telemetry with a single sample
func (h *TelemetryHandler) Ingest(c *gin.Context) {
	var sample models.TelemetrySample

	if err := c.ShouldBindJSON(&sample); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid JSON payload",
		})
		return
	}

	if sample.VehicleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required field: vehicleId",
		})
		return
	}
	if sample.Timestamp.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required field: timestamp",
		})
		return
	}

	events := h.engine.Process(sample.VehicleID, &sample)
	h.forwardAlerts(c, events)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Telemetry sample processed",
		"events":  events,
		"count":   len(events),
	})
}

// batchRequest is the payload for POST /api/v1/telemetry/batch
type batchRequest struct {
	Samples []models.TelemetrySample `json:"samples" binding:"required"`
}

// IngestBatch handles POST /api/v1/telemetry/batch with an ordered list
// of samples, possibly covering several vehicles
func (h *TelemetryHandler) IngestBatch(c *gin.Context) {
	var req batchRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid JSON payload",
		})
		return
	}
	if len(req.Samples) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Batch contains no samples",
		})
		return
	}

	var events []models.BehaviorEvent
	processed := 0
	for i := range req.Samples {
		sample := &req.Samples[i]
		if sample.VehicleID == "" || sample.Timestamp.IsZero() {
			continue
		}
		events = append(events, h.engine.Process(sample.VehicleID, sample)...)
		processed++
	}

	if processed == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No sample in the batch had a vehicleId and timestamp",
		})
		return
	}

	h.forwardAlerts(c, events)

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Telemetry batch processed",
		"processed": processed,
		"skipped":   len(req.Samples) - processed,
		"events":    events,
		"count":     len(events),
	})
}

// Events handles GET /api/v1/vehicles/:id/events, returning today's
// event log for one vehicle
func (h *TelemetryHandler) Events(c *gin.Context) {
	vehicleID := c.Param("id")

	events, err := h.engine.EventsToday(vehicleID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No telemetry recorded for vehicle",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicleId": vehicleID,
		"events":    events,
		"count":     len(events),
	})
}

// forwardAlerts pushes events at or above the configured severity to
// the notifier. Delivery failure never fails the ingest request.
func (h *TelemetryHandler) forwardAlerts(c *gin.Context, events []models.BehaviorEvent) {
	if h.notifier == nil {
		return
	}
	alerts := alerting.FilterBySeverity(events, h.minSeverity)
	if len(alerts) == 0 {
		return
	}
	if err := h.notifier.NotifyEvents(c.Request.Context(), alerts); err != nil {
		log.Printf("Failed to deliver %d alert(s): %v", len(alerts), err)
	}
}
