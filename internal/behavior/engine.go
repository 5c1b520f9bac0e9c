package behavior

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/sebasr/drivesense/internal/models"
)

// Gap policy bounds for delta detection. A spacing outside [minSampleGap,
// maxSampleGap) still refreshes the last-seen values but runs no
// detectors, so a data gap can never produce a spurious huge-delta event.
const (
	minSampleGap = 1 * time.Second
	maxSampleGap = 300 * time.Second
)

// ErrInsufficientData is returned by pull-based operations (scoring,
// cross-validation) when the engine has no usable state for the request.
var ErrInsufficientData = errors.New("insufficient data")

// Engine is the per-vehicle behavior-detection engine. Construct it
// once with NewEngine and share it; it is safe for concurrent use, with
// samples for the same vehicle serialized internally.
type Engine struct {
	thresholds Thresholds
	store      *StateStore

	resetMu   sync.Mutex
	lastReset time.Time // UTC midnight of the current scoring day
}

// NewEngine creates an engine using the given threshold table.
func NewEngine(th Thresholds) *Engine {
	return &Engine{
		thresholds: th,
		store:      NewStateStore(),
	}
}

// Thresholds returns the engine's immutable threshold table.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// TrackedVehicles returns the number of vehicles with state.
func (e *Engine) TrackedVehicles() int {
	return e.store.Count()
}

// VehicleIDs returns a snapshot of the tracked vehicle IDs.
func (e *Engine) VehicleIDs() []string {
	return e.store.ids()
}

// Process runs one telemetry sample through the engine and returns the
// behavior events it produced, possibly none. Samples for a vehicle
// must arrive in non-decreasing time order; an out-of-order or
// duplicate sample only refreshes the cached last values.
func (e *Engine) Process(vehicleID string, sample *models.TelemetrySample) []models.BehaviorEvent {
	if vehicleID == "" || sample == nil || sample.Timestamp.IsZero() {
		return nil
	}

	e.maybeDailyReset(sample.Timestamp)

	s := e.lockedState(vehicleID)
	defer s.mu.Unlock()

	now := sample.Timestamp.UTC()

	runDetectors := true
	var dt float64
	if !s.lastTime.IsZero() {
		gap := now.Sub(s.lastTime)
		if gap < minSampleGap || gap > maxSampleGap {
			runDetectors = false
		}
		dt = gap.Seconds()
	} else {
		// First sample for this vehicle: nothing to diff against.
		runDetectors = false
	}

	var events []models.BehaviorEvent
	if runDetectors {
		events = e.detect(vehicleID, s, sample, dt, now)
	}

	e.recordSample(s, sample, now)

	for _, ev := range events {
		s.logEvent(ev)
	}
	return events
}

// lockedState returns the vehicle's state record with its mutex held.
// An eviction sweep can remove the record between lookup and lock, so
// a record found flagged removed is discarded and looked up again.
func (e *Engine) lockedState(vehicleID string) *vehicleState {
	for {
		s := e.store.getOrCreate(vehicleID)
		s.mu.Lock()
		if !s.removed {
			return s
		}
		s.mu.Unlock()
	}
}

// recordSample refreshes the last-seen values and MPG windows from the
// sample. Runs for every sample, including ones the gap policy skipped.
func (e *Engine) recordSample(s *vehicleState, sample *models.TelemetrySample, now time.Time) {
	s.lastTime = now
	s.prevHadSpeed = sample.Speed != nil
	if sample.Speed != nil {
		s.lastSpeed = *sample.Speed
	}
	if sample.KalmanMPG != nil && *sample.KalmanMPG > 0 {
		s.kalmanMPG.Add(*sample.KalmanMPG)
	}
	if sample.FuelEconomy != nil && *sample.FuelEconomy > 0 {
		s.ecuMPG.Add(*sample.FuelEconomy)
	}
}

// maybeDailyReset zeroes every vehicle's daily accumulators when the
// sample's UTC calendar date is later than the current scoring day.
// Fires at most once per date transition, process-wide.
func (e *Engine) maybeDailyReset(sampleTime time.Time) {
	day := sampleTime.UTC().Truncate(24 * time.Hour)

	e.resetMu.Lock()
	defer e.resetMu.Unlock()

	if e.lastReset.IsZero() {
		e.lastReset = day
		return
	}
	if !day.After(e.lastReset) {
		return
	}
	e.lastReset = day

	e.store.mu.RLock()
	defer e.store.mu.RUnlock()
	for _, s := range e.store.vehicles {
		s.mu.Lock()
		s.resetDay()
		s.mu.Unlock()
	}
	log.Printf("behavior: daily reset for %d vehicles (scoring day %s)",
		len(e.store.vehicles), day.Format("2006-01-02"))
}

// EvictInactive removes vehicles absent from activeIDs or idle longer
// than maxInactive, returning the number removed. A nil activeIDs set
// applies only the inactivity window.
func (e *Engine) EvictInactive(activeIDs map[string]struct{}, maxInactive time.Duration) int {
	return e.store.Evict(activeIDs, maxInactive, time.Now().UTC())
}

// EventsToday returns a copy of today's event log for a vehicle.
// Returns ErrInsufficientData for an untracked vehicle.
func (e *Engine) EventsToday(vehicleID string) ([]models.BehaviorEvent, error) {
	s := e.store.get(vehicleID)
	if s == nil {
		return nil, ErrInsufficientData
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.BehaviorEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}
