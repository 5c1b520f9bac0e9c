package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebasr/drivesense/internal/models"
)

func TestSpeedDelta_SevereAcceleration(t *testing.T) {
	e := newTestEngine()
	th := e.Thresholds()

	// 30 to 60 mph in 3s is 10 mph/s, exactly the severe threshold.
	e.Process("TRUCK-1", sampleAt(testStart, 30))
	events := e.Process("TRUCK-1", sampleAt(testStart.Add(3*time.Second), 60))

	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, models.CategoryHardAcceleration, ev.Category)
	assert.Equal(t, models.SeveritySevere, ev.Severity)
	assert.InDelta(t, 10.0, ev.Value, 1e-9)
	assert.Equal(t, th.AccelSevere, ev.Threshold)
	assert.Zero(t, ev.DurationSeconds)
	// Severe events carry twice the base coefficient.
	assert.InDelta(t, th.AccelWasteGalPerEvent*2, ev.FuelWasteGallons, 1e-9)
}

func TestSpeedDelta_TierFirstMatchWins(t *testing.T) {
	e := newTestEngine()
	th := e.Thresholds()

	tests := []struct {
		name     string
		from, to float64
		dt       time.Duration
		severity models.Severity
		waste    float64
	}{
		{"severe never double counts as moderate", 30, 63, 3 * time.Second, models.SeveritySevere, th.AccelWasteGalPerEvent * 2},
		{"moderate", 30, 47, 2 * time.Second, models.SeverityModerate, th.AccelWasteGalPerEvent},
		{"minor weighs half the base", 30, 43, 2 * time.Second, models.SeverityMinor, th.AccelWasteGalPerEvent * 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			e.Process("TRUCK-1", sampleAt(testStart, tt.from))
			events := e.Process("TRUCK-1", sampleAt(testStart.Add(tt.dt), tt.to))

			require.Len(t, events, 1)
			assert.Equal(t, tt.severity, events[0].Severity)
			assert.InDelta(t, tt.waste, events[0].FuelWasteGallons, 1e-9)

			s := e.store.get("TRUCK-1")
			assert.Equal(t, 1, s.hardAccelCount)
		})
	}
}

func TestSpeedDelta_HardBraking(t *testing.T) {
	e := newTestEngine()
	th := e.Thresholds()

	// 60 to 36 mph in 2s is -12 mph/s, past the severe braking tier.
	e.Process("TRUCK-1", sampleAt(testStart, 60))
	events := e.Process("TRUCK-1", sampleAt(testStart.Add(2*time.Second), 36))

	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, models.CategoryHardBraking, ev.Category)
	assert.Equal(t, models.SeveritySevere, ev.Severity)
	assert.InDelta(t, -12.0, ev.Value, 1e-9)
	assert.Equal(t, th.BrakeSevere, ev.Threshold)
}

// Gentle braking below every tier must leave the counters untouched:
// the counter increments only when a tier actually matched.
func TestSpeedDelta_BrakingBelowAllTiersEmitsNothing(t *testing.T) {
	e := newTestEngine()

	e.Process("TRUCK-1", sampleAt(testStart, 60))
	events := e.Process("TRUCK-1", sampleAt(testStart.Add(2*time.Second), 55))

	assert.Empty(t, events)
	s := e.store.get("TRUCK-1")
	assert.Equal(t, 0, s.hardBrakeCount)
	assert.Zero(t, s.fuelWaste[models.CategoryHardBraking])
}

// A sample without speed breaks the pair: the next speed reading must
// not be diffed against the older one over the shorter interval.
func TestSpeedDelta_RequiresSpeedOnBothSamples(t *testing.T) {
	e := newTestEngine()

	e.Process("TRUCK-1", sampleAt(testStart, 30))
	e.Process("TRUCK-1", rpmSample(testStart.Add(time.Second), 1500))

	// 30 mph above the stale reading, but only 1s since the RPM-only
	// sample: diffing would fabricate a 30 mph/s severe event.
	events := e.Process("TRUCK-1", sampleAt(testStart.Add(2*time.Second), 60))
	assert.Empty(t, events)

	s := e.store.get("TRUCK-1")
	assert.Equal(t, 0, s.hardAccelCount)
	assert.Zero(t, s.fuelWaste[models.CategoryHardAcceleration])

	// The next consecutive speed pair detects normally.
	events = e.Process("TRUCK-1", sampleAt(testStart.Add(5*time.Second), 90))
	require.Len(t, events, 1)
	assert.Equal(t, models.SeveritySevere, events[0].Severity)
	assert.InDelta(t, 10.0, events[0].Value, 1e-9)
}

func rpmSample(ts time.Time, rpm float64) *models.TelemetrySample {
	return &models.TelemetrySample{
		VehicleID: "TRUCK-1",
		Timestamp: ts,
		RPM:       fptr(rpm),
	}
}

func TestExcessiveRPM_NoEventBeforeMinimumDuration(t *testing.T) {
	e := newTestEngine()

	// Condition activates on the second sample; 4s of sustained RPM is
	// still under the 5s minimum.
	for i := 0; i <= 5; i++ {
		events := e.Process("TRUCK-1", rpmSample(testStart.Add(time.Duration(i)*time.Second), 2300))
		assert.Empty(t, events, "sample %d", i)
	}

	// One more second crosses the minimum: exactly one event.
	events := e.Process("TRUCK-1", rpmSample(testStart.Add(6*time.Second), 2300))
	require.Len(t, events, 1)
	assert.Equal(t, models.SeverityModerate, events[0].Severity)
	assert.InDelta(t, 5.0, events[0].DurationSeconds, 1e-9)

	// And never again within the same activation.
	events = e.Process("TRUCK-1", rpmSample(testStart.Add(7*time.Second), 2300))
	assert.Empty(t, events)
}

func TestExcessiveRPM_CriticalAtRedline(t *testing.T) {
	e := newTestEngine()

	// RPM held at 2600 (past redline) for 12 consecutive 1s samples.
	var all []models.BehaviorEvent
	for i := 0; i < 12; i++ {
		all = append(all, e.Process("TRUCK-1", rpmSample(testStart.Add(time.Duration(i)*time.Second), 2600))...)
	}

	require.Len(t, all, 2)
	assert.Equal(t, models.SeveritySevere, all[0].Severity)
	assert.Equal(t, models.SeverityCritical, all[1].Severity)
	assert.GreaterOrEqual(t, all[1].DurationSeconds, 10.0)
	assert.Equal(t, e.Thresholds().RPMRedline, all[1].Threshold)
}

func TestExcessiveRPM_ConditionClearResetsDuration(t *testing.T) {
	e := newTestEngine()

	for i := 0; i < 5; i++ {
		e.Process("TRUCK-1", rpmSample(testStart.Add(time.Duration(i)*time.Second), 2300))
	}
	s := e.store.get("TRUCK-1")
	accumulated := s.rpmSeconds
	require.Greater(t, accumulated, 0.0)

	// Dropping below the band clears the start timestamp...
	e.Process("TRUCK-1", rpmSample(testStart.Add(5*time.Second), 1500))
	assert.True(t, s.rpmStart.IsZero())

	// ...but the accumulated seconds and fuel waste persist.
	assert.Equal(t, accumulated, s.rpmSeconds)
	assert.Greater(t, s.fuelWaste[models.CategoryExcessiveRPM], 0.0)
}

// A sample missing the RPM channel neither clears an active condition
// nor counts toward its sustained duration.
func TestExcessiveRPM_BlindSampleDoesNotAdvanceDuration(t *testing.T) {
	e := newTestEngine()

	for i := 0; i <= 3; i++ {
		e.Process("TRUCK-1", rpmSample(testStart.Add(time.Duration(i)*time.Second), 2300))
	}

	// RPM channel drops out for one sample.
	e.Process("TRUCK-1", sampleAt(testStart.Add(4*time.Second), 40))

	s := e.store.get("TRUCK-1")
	require.False(t, s.rpmStart.IsZero(), "blind sample must not clear the condition")

	// 6s of wall clock since activation, but only 5s observed: the
	// event fires one sample later than wall clock alone would say.
	events := e.Process("TRUCK-1", rpmSample(testStart.Add(6*time.Second), 2300))
	assert.Empty(t, events)

	events = e.Process("TRUCK-1", rpmSample(testStart.Add(7*time.Second), 2300))
	require.Len(t, events, 1)
	assert.InDelta(t, 5.0, events[0].DurationSeconds, 1e-9)
}

func wrongGearSample(ts time.Time, rpm float64, gear int, speed float64) *models.TelemetrySample {
	return &models.TelemetrySample{
		VehicleID: "TRUCK-1",
		Timestamp: ts,
		RPM:       fptr(rpm),
		Gear:      iptr(gear),
		Speed:     fptr(speed),
	}
}

func TestWrongGear_SustainedLowGearAtSpeed(t *testing.T) {
	e := newTestEngine()

	// 2100 RPM stays under the excessive band, so only the wrong-gear
	// detector is in play.
	var all []models.BehaviorEvent
	for i := 0; i <= 11; i++ {
		all = append(all, e.Process("TRUCK-1", wrongGearSample(testStart.Add(time.Duration(i)*time.Second), 2100, 5, 40))...)
	}

	require.Len(t, all, 1)
	ev := all[0]
	assert.Equal(t, models.CategoryWrongGear, ev.Category)
	assert.Equal(t, models.SeverityModerate, ev.Severity)
	assert.GreaterOrEqual(t, ev.DurationSeconds, e.Thresholds().WrongGearMinSeconds)
	assert.Contains(t, ev.Context, "gear 5")
}

func TestWrongGear_NeverFlagsTopGear(t *testing.T) {
	e := newTestEngine()
	maxGear := e.Thresholds().AssumedMaxGear

	for i := 0; i <= 20; i++ {
		events := e.Process("TRUCK-1", wrongGearSample(testStart.Add(time.Duration(i)*time.Second), 2100, maxGear, 40))
		assert.Empty(t, events, "sample %d", i)
	}
	s := e.store.get("TRUCK-1")
	assert.Zero(t, s.wrongGearSeconds)
}

func TestWrongGear_ExcludesLaunchFromStop(t *testing.T) {
	e := newTestEngine()

	// High RPM in first gear below the speed floor is a normal launch.
	for i := 0; i <= 15; i++ {
		events := e.Process("TRUCK-1", wrongGearSample(testStart.Add(time.Duration(i)*time.Second), 2100, 1, 10))
		assert.Empty(t, events, "sample %d", i)
	}
}

func TestOverspeeding_FuelWasteAccumulatesWithActiveTime(t *testing.T) {
	e := newTestEngine()

	e.Process("TRUCK-1", sampleAt(testStart, 70))
	s := e.store.get("TRUCK-1")

	var last float64
	for i := 1; i <= 5; i++ {
		e.Process("TRUCK-1", sampleAt(testStart.Add(time.Duration(i*10)*time.Second), 70))
		waste := s.fuelWaste[models.CategoryOverspeeding]
		assert.Greater(t, waste, last, "waste must grow with active time")
		last = waste
	}
}

func TestOverspeeding_NoWasteBelowWarningThreshold(t *testing.T) {
	e := newTestEngine()

	for i := 0; i <= 10; i++ {
		e.Process("TRUCK-1", sampleAt(testStart.Add(time.Duration(i*10)*time.Second), 60))
	}
	s := e.store.get("TRUCK-1")
	assert.Zero(t, s.fuelWaste[models.CategoryOverspeeding])
	assert.Zero(t, s.overspeedSeconds)
}

func TestOverspeeding_EventAfterSustainedMinute(t *testing.T) {
	e := newTestEngine()

	// Activation on the second sample (t=10s); one minute later the
	// event fires with severity from the current speed band.
	var all []models.BehaviorEvent
	for i := 0; i <= 7; i++ {
		all = append(all, e.Process("TRUCK-1", sampleAt(testStart.Add(time.Duration(i*10)*time.Second), 80))...)
	}

	require.Len(t, all, 1)
	ev := all[0]
	assert.Equal(t, models.CategoryOverspeeding, ev.Category)
	assert.Equal(t, models.SeverityModerate, ev.Severity) // 80 mph: excessive band
	assert.GreaterOrEqual(t, ev.DurationSeconds, 60.0)
}

func TestOverspeeding_SevereBand(t *testing.T) {
	e := newTestEngine()

	var all []models.BehaviorEvent
	for i := 0; i <= 7; i++ {
		all = append(all, e.Process("TRUCK-1", sampleAt(testStart.Add(time.Duration(i*10)*time.Second), 90))...)
	}

	require.Len(t, all, 1)
	assert.Equal(t, models.SeveritySevere, all[0].Severity)
}
