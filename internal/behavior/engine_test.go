package behavior

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebasr/drivesense/internal/models"
)

var testStart = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(DefaultThresholds())
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

// sampleAt builds a sample with only a speed signal.
func sampleAt(ts time.Time, speed float64) *models.TelemetrySample {
	return &models.TelemetrySample{
		VehicleID: "TRUCK-1",
		Timestamp: ts,
		Speed:     fptr(speed),
	}
}

func TestProcess_FirstSampleEmitsNothing(t *testing.T) {
	e := newTestEngine()

	events := e.Process("TRUCK-1", sampleAt(testStart, 30))

	assert.Empty(t, events)
	assert.Equal(t, 1, e.TrackedVehicles())
}

func TestProcess_DataGapSuppressesDetectionButRefreshesState(t *testing.T) {
	e := newTestEngine()
	e.Process("TRUCK-1", sampleAt(testStart, 30))

	// A 400s gap with a 60 mph jump would otherwise be a huge delta.
	events := e.Process("TRUCK-1", sampleAt(testStart.Add(400*time.Second), 90))
	assert.Empty(t, events)

	s := e.store.get("TRUCK-1")
	require.NotNil(t, s)
	assert.Equal(t, 90.0, s.lastSpeed)
	assert.Equal(t, testStart.Add(400*time.Second), s.lastTime)
}

func TestProcess_DuplicateSampleSuppressesDetection(t *testing.T) {
	e := newTestEngine()
	e.Process("TRUCK-1", sampleAt(testStart, 30))
	e.Process("TRUCK-1", sampleAt(testStart.Add(3*time.Second), 33))

	// 500ms later, another big jump: below the minimum spacing.
	events := e.Process("TRUCK-1", sampleAt(testStart.Add(3*time.Second+500*time.Millisecond), 80))
	assert.Empty(t, events)

	s := e.store.get("TRUCK-1")
	assert.Equal(t, 80.0, s.lastSpeed)
}

func TestProcess_MissingSpeedDisablesOnlySpeedDetectors(t *testing.T) {
	e := newTestEngine()
	e.Process("TRUCK-1", &models.TelemetrySample{
		VehicleID: "TRUCK-1",
		Timestamp: testStart,
		RPM:       fptr(2300),
	})

	// RPM-only samples still drive the sustained RPM detector.
	var events []models.BehaviorEvent
	for i := 1; i <= 7; i++ {
		events = append(events, e.Process("TRUCK-1", &models.TelemetrySample{
			VehicleID: "TRUCK-1",
			Timestamp: testStart.Add(time.Duration(i) * time.Second),
			RPM:       fptr(2300),
		})...)
	}

	require.Len(t, events, 1)
	assert.Equal(t, models.CategoryExcessiveRPM, events[0].Category)
}

func TestProcess_DeviceReportedEventsTakePrecedence(t *testing.T) {
	e := newTestEngine()
	e.Process("TRUCK-1", sampleAt(testStart, 30))

	// Speed delta alone would classify severe acceleration; the device
	// report must win and suppress the computed event.
	sample := sampleAt(testStart.Add(3*time.Second), 60)
	sample.DeviceHarshAccel = iptr(2)
	events := e.Process("TRUCK-1", sample)

	require.Len(t, events, 1)
	assert.Equal(t, models.CategoryHardAcceleration, events[0].Category)
	assert.Equal(t, 2.0, events[0].Value)
	assert.Contains(t, events[0].Context, "device-reported")

	s := e.store.get("TRUCK-1")
	assert.Equal(t, 2, s.hardAccelCount)
}

func TestProcess_DeviceHarshBrakeEmitsImmediately(t *testing.T) {
	e := newTestEngine()
	e.Process("TRUCK-1", sampleAt(testStart, 50))

	sample := sampleAt(testStart.Add(2*time.Second), 48)
	sample.DeviceHarshBrake = iptr(1)
	events := e.Process("TRUCK-1", sample)

	require.Len(t, events, 1)
	assert.Equal(t, models.CategoryHardBraking, events[0].Category)
	assert.InDelta(t, DefaultThresholds().BrakeWasteGalPerEvent, events[0].FuelWasteGallons, 1e-9)
}

func TestProcess_DailyResetZeroesAllVehicles(t *testing.T) {
	e := newTestEngine()

	// Accumulate a severe acceleration for two vehicles on day one.
	for _, id := range []string{"TRUCK-1", "TRUCK-2"} {
		s := sampleAt(testStart, 30)
		s.VehicleID = id
		e.Process(id, s)
		s2 := sampleAt(testStart.Add(3*time.Second), 60)
		s2.VehicleID = id
		events := e.Process(id, s2)
		require.Len(t, events, 1)
	}

	// First sample of the next UTC day triggers the reset.
	nextDay := testStart.Add(24 * time.Hour)
	s := sampleAt(nextDay, 30)
	e.Process("TRUCK-1", s)

	for _, id := range []string{"TRUCK-1", "TRUCK-2"} {
		st := e.store.get(id)
		require.NotNil(t, st, id)
		assert.Equal(t, 0, st.hardAccelCount, id)
		assert.Empty(t, st.events, id)
		assert.Zero(t, st.totalFuelWaste(), id)
	}
}

func TestProcess_DailyResetFiresOncePerDateTransition(t *testing.T) {
	e := newTestEngine()
	e.Process("TRUCK-1", sampleAt(testStart, 30))

	nextDay := testStart.Add(24 * time.Hour)
	e.Process("TRUCK-1", sampleAt(nextDay, 30))

	// Earn an event after the reset; a later same-day sample must not
	// wipe it.
	events := e.Process("TRUCK-1", sampleAt(nextDay.Add(3*time.Second), 60))
	require.Len(t, events, 1)
	e.Process("TRUCK-1", sampleAt(nextDay.Add(6*time.Second), 62))

	s := e.store.get("TRUCK-1")
	assert.Equal(t, 1, s.hardAccelCount)
	assert.Len(t, s.events, 1)
}

func TestEventsToday(t *testing.T) {
	e := newTestEngine()

	_, err := e.EventsToday("UNKNOWN")
	assert.ErrorIs(t, err, ErrInsufficientData)

	e.Process("TRUCK-1", sampleAt(testStart, 30))
	e.Process("TRUCK-1", sampleAt(testStart.Add(3*time.Second), 60))

	events, err := e.EventsToday("TRUCK-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.CategoryHardAcceleration, events[0].Category)
}

func TestProcess_AfterSweepLandsInFreshRecord(t *testing.T) {
	e := newTestEngine()
	e.Process("TRUCK-1", sampleAt(testStart, 30))
	stale := e.store.get("TRUCK-1")
	require.NotNil(t, stale)

	removed := e.store.Evict(nil, time.Hour, testStart.Add(48*time.Hour))
	require.Equal(t, 1, removed)
	require.True(t, stale.removed)

	// Locking the vehicle after the sweep must yield a live record,
	// never the orphaned one a racing update might still hold.
	s := e.lockedState("TRUCK-1")
	assert.NotSame(t, stale, s)
	assert.False(t, s.removed)
	s.mu.Unlock()

	// Updates after the sweep land in the live record.
	e.Process("TRUCK-1", sampleAt(testStart.Add(49*time.Hour), 30))
	events := e.Process("TRUCK-1", sampleAt(testStart.Add(49*time.Hour+3*time.Second), 60))
	require.Len(t, events, 1)

	cur := e.store.get("TRUCK-1")
	require.NotNil(t, cur)
	assert.NotSame(t, stale, cur)
	assert.Equal(t, 1, cur.hardAccelCount)
	assert.Equal(t, 0, stale.hardAccelCount)
}

func TestProcess_ConcurrentWithEvictionSweep(t *testing.T) {
	e := newTestEngine()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			e.Process("TRUCK-1", sampleAt(testStart.Add(time.Duration(i)*time.Second), 40))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			// Zero inactivity window evicts everything it sees.
			e.store.Evict(nil, 0, testStart.Add(300*time.Second))
		}
	}()
	wg.Wait()

	// Whatever interleaving happened, the engine must still accept and
	// retain updates afterwards.
	e.Process("TRUCK-1", sampleAt(testStart.Add(400*time.Second), 30))
	events := e.Process("TRUCK-1", sampleAt(testStart.Add(403*time.Second), 60))
	require.Len(t, events, 1)

	got, err := e.EventsToday("TRUCK-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestProcess_InvalidInputIsIgnored(t *testing.T) {
	e := newTestEngine()

	assert.Nil(t, e.Process("", sampleAt(testStart, 30)))
	assert.Nil(t, e.Process("TRUCK-1", nil))
	assert.Nil(t, e.Process("TRUCK-1", &models.TelemetrySample{VehicleID: "TRUCK-1"}))
	assert.Equal(t, 0, e.TrackedVehicles())
}
