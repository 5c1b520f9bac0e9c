package behavior

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebasr/drivesense/internal/models"
)

// seedVehicle plants accumulated counters directly so fleet tests can
// shape scores without replaying telemetry.
func seedVehicle(e *Engine, id string, hardAccels int, waste map[models.EventCategory]float64) {
	s := e.store.getOrCreate(id)
	s.lastTime = testStart
	s.hardAccelCount = hardAccels
	for cat, g := range waste {
		s.fuelWaste[cat] = g
	}
}

func TestFleetSummary_EmptyFleet(t *testing.T) {
	e := newTestEngine()

	_, err := e.FleetSummary(24)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestFleetSummary_RankingsWorstFirst(t *testing.T) {
	e := newTestEngine()

	// More hard accelerations means a lower score.
	seedVehicle(e, "GOOD", 0, nil)
	seedVehicle(e, "MID", 12, nil)
	seedVehicle(e, "BAD", 20, nil)

	summary, err := e.FleetSummary(10)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.VehicleCount)
	require.NotEmpty(t, summary.WorstPerformers)
	assert.Equal(t, "BAD", summary.WorstPerformers[0].VehicleID)
	assert.Equal(t, "GOOD", summary.BestPerformers[0].VehicleID)

	// Worst list ascends, best list descends.
	for i := 1; i < len(summary.WorstPerformers); i++ {
		assert.LessOrEqual(t, summary.WorstPerformers[i-1].OverallScore, summary.WorstPerformers[i].OverallScore)
	}
	for i := 1; i < len(summary.BestPerformers); i++ {
		assert.GreaterOrEqual(t, summary.BestPerformers[i-1].OverallScore, summary.BestPerformers[i].OverallScore)
	}
}

func TestFleetSummary_RankingsCappedAtFive(t *testing.T) {
	e := newTestEngine()
	for i := 0; i < 8; i++ {
		seedVehicle(e, fmt.Sprintf("TRUCK-%d", i), i, nil)
	}

	summary, err := e.FleetSummary(10)
	require.NoError(t, err)
	assert.Equal(t, 8, summary.VehicleCount)
	assert.Len(t, summary.WorstPerformers, 5)
	assert.Len(t, summary.BestPerformers, 5)
}

func TestFleetSummary_DominantWasteCategory(t *testing.T) {
	e := newTestEngine()
	seedVehicle(e, "TRUCK-1", 0, map[models.EventCategory]float64{
		models.CategoryHardAcceleration: 0.2,
		models.CategoryOverspeeding:     0.9,
	})
	seedVehicle(e, "TRUCK-2", 0, map[models.EventCategory]float64{
		models.CategoryOverspeeding: 0.4,
	})

	summary, err := e.FleetSummary(24)
	require.NoError(t, err)

	assert.Equal(t, models.CategoryOverspeeding, summary.DominantWasteCategory)
	assert.InDelta(t, 1.5, summary.TotalFuelWaste, 1e-9)
	assert.InDelta(t, 1.3, summary.FuelWasteByCategory[models.CategoryOverspeeding], 1e-9)
}

func TestFleetSummary_Recommendations(t *testing.T) {
	e := newTestEngine()

	// Two vehicles bad across every category drag the average below 70
	// and individually below 50.
	for _, id := range []string{"BAD-1", "BAD-2"} {
		seedVehicle(e, id, 60, map[models.EventCategory]float64{
			models.CategoryExcessiveRPM: 0.8,
		})
		s := e.store.get(id)
		s.hardBrakeCount = 60
		s.rpmSeconds = 8 * 3600
		s.wrongGearSeconds = 8 * 3600
		s.overspeedSeconds = 8 * 3600
	}

	summary, err := e.FleetSummary(10)
	require.NoError(t, err)

	require.NotEmpty(t, summary.Recommendations)
	joined := fmt.Sprint(summary.Recommendations)
	assert.Contains(t, joined, "training")
	assert.Contains(t, joined, "engine speed")
	assert.Contains(t, joined, "BAD-1")
	assert.Contains(t, joined, "BAD-2")
}

func TestFleetSummary_HealthyFleetHasNoRecommendations(t *testing.T) {
	e := newTestEngine()
	seedVehicle(e, "GOOD-1", 0, nil)
	seedVehicle(e, "GOOD-2", 1, nil)

	summary, err := e.FleetSummary(10)
	require.NoError(t, err)
	assert.Empty(t, summary.Recommendations)
	assert.Greater(t, summary.AverageScore, 90.0)
}
