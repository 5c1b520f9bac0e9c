package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sebasr/drivesense/internal/behavior"
	"github.com/sebasr/drivesense/internal/repository"
)

// ScoreHandler serves Heavy-Foot scores, score history, fuel-economy
// cross-validation and fleet summaries
type ScoreHandler struct {
	engine             *behavior.Engine
	scoreRepo          repository.ScoreRepository
	defaultPeriodHours float64
}

// NewScoreHandler creates a new score handler. scoreRepo may be nil
// when score history persistence is not configured.
func NewScoreHandler(engine *behavior.Engine, scoreRepo repository.ScoreRepository, defaultPeriodHours float64) *ScoreHandler {
	if defaultPeriodHours <= 0 {
		defaultPeriodHours = 24
	}
	return &ScoreHandler{
		engine:             engine,
		scoreRepo:          scoreRepo,
		defaultPeriodHours: defaultPeriodHours,
	}
}

// GetScore handles GET /api/v1/vehicles/:id/score
// Query params: period_hours, driving_hours (optional), save=true to
// persist the snapshot.
func (h *ScoreHandler) GetScore(c *gin.Context) {
	vehicleID := c.Param("id")

	periodHours := h.defaultPeriodHours
	if raw := c.Query("period_hours"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid period_hours",
			})
			return
		}
		periodHours = v
	}

	var drivingHours *float64
	if raw := c.Query("driving_hours"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid driving_hours",
			})
			return
		}
		drivingHours = &v
	}

	score, err := h.engine.Score(vehicleID, periodHours, drivingHours)
	if err != nil {
		if errors.Is(err, behavior.ErrInsufficientData) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "No telemetry recorded for vehicle",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to compute score",
		})
		return
	}

	if c.Query("save") == "true" && h.scoreRepo != nil {
		if err := h.scoreRepo.Save(c.Request.Context(), score); err != nil {
			// The computed score is still useful; report persistence
			// failure without failing the request.
			log.Printf("Failed to persist score snapshot for %s: %v", vehicleID, err)
		}
	}

	c.JSON(http.StatusOK, score)
}

// GetScoreHistory handles GET /api/v1/vehicles/:id/score/history
func (h *ScoreHandler) GetScoreHistory(c *gin.Context) {
	if h.scoreRepo == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Score history persistence is not configured",
		})
		return
	}

	vehicleID := c.Param("id")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > 500 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit (must be 1-500)",
			})
			return
		}
		limit = v
	}

	history, err := h.scoreRepo.GetHistory(c.Request.Context(), vehicleID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load score history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicleId": vehicleID,
		"scores":    history,
		"total":     len(history),
	})
}

// GetFuelValidation handles GET /api/v1/vehicles/:id/fuel-validation
func (h *ScoreHandler) GetFuelValidation(c *gin.Context) {
	vehicleID := c.Param("id")

	result, err := h.engine.CrossValidate(vehicleID)
	if err != nil {
		if errors.Is(err, behavior.ErrInsufficientData) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Not enough fuel-economy samples to cross-validate",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to cross-validate fuel economy",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetFleetSummary handles GET /api/v1/fleet/summary
func (h *ScoreHandler) GetFleetSummary(c *gin.Context) {
	periodHours := h.defaultPeriodHours
	if raw := c.Query("period_hours"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid period_hours",
			})
			return
		}
		periodHours = v
	}

	summary, err := h.engine.FleetSummary(periodHours)
	if err != nil {
		if errors.Is(err, behavior.ErrInsufficientData) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "No vehicles tracked yet",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to build fleet summary",
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}
