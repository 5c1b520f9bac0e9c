package behavior

import (
	"sync"
	"time"

	"github.com/sebasr/drivesense/internal/models"
)

// eventLogCap bounds the per-vehicle daily event log. The log is
// cleared at each daily reset; the cap only guards against a runaway
// day.
const eventLogCap = 1000

// vehicleState holds everything the engine tracks for one vehicle.
// All fields are guarded by mu; samples for the same vehicle are
// serialized through it (single writer per key).
type vehicleState struct {
	mu sync.Mutex

	// removed marks a record deleted by an eviction sweep. An
	// in-flight update that still holds the pointer must re-fetch
	// instead of mutating an orphan.
	removed bool

	// Last-seen sample time and speed. prevHadSpeed reports whether
	// the previous sample carried a speed reading at all: delta
	// detection needs speed on both ends of the interval.
	lastTime     time.Time
	lastSpeed    float64
	prevHadSpeed bool

	// Condition-start timestamps for sustained detectors; zero while
	// the condition is inactive.
	rpmStart       time.Time
	wrongGearStart time.Time
	overspeedStart time.Time

	// Observed seconds inside the current activation. Samples missing
	// the detector's fields advance neither these nor the condition.
	rpmHeldSeconds       float64
	wrongGearHeldSeconds float64
	overspeedHeldSeconds float64

	// One-shot emission flags, cleared when the condition deactivates
	rpmEmitted         bool
	rpmCriticalEmitted bool
	wrongGearEmitted   bool
	overspeedEmitted   bool

	// Accumulators for the current scoring day. Sustained-condition
	// seconds persist across condition start/stop until the daily reset.
	rpmSeconds       float64
	wrongGearSeconds float64
	overspeedSeconds float64
	hardAccelCount   int
	hardBrakeCount   int
	fuelWaste        map[models.EventCategory]float64

	// Today's emitted events, oldest first
	events []models.BehaviorEvent

	// Bounded MPG windows for cross-validation
	kalmanMPG *sampleWindow
	ecuMPG    *sampleWindow
}

func newVehicleState() *vehicleState {
	return &vehicleState{
		fuelWaste: make(map[models.EventCategory]float64),
		kalmanMPG: newSampleWindow(mpgWindowCapacity),
		ecuMPG:    newSampleWindow(mpgWindowCapacity),
	}
}

// resetDay zeroes the daily counters, duration and fuel-waste
// accumulators, and the event log. The MPG windows and last-seen
// values survive the reset. Caller must hold mu.
func (s *vehicleState) resetDay() {
	s.rpmSeconds = 0
	s.wrongGearSeconds = 0
	s.overspeedSeconds = 0
	s.hardAccelCount = 0
	s.hardBrakeCount = 0
	s.fuelWaste = make(map[models.EventCategory]float64)
	s.events = s.events[:0]
}

func (s *vehicleState) logEvent(ev models.BehaviorEvent) {
	if len(s.events) >= eventLogCap {
		s.events = s.events[1:]
	}
	s.events = append(s.events, ev)
}

func (s *vehicleState) totalFuelWaste() float64 {
	var total float64
	for _, g := range s.fuelWaste {
		total += g
	}
	return total
}

// StateStore is the keyed collection of per-vehicle state records.
// The map itself is guarded by an RWMutex; each record carries its own
// mutex so ingestion for unrelated vehicles never contends.
type StateStore struct {
	mu       sync.RWMutex
	vehicles map[string]*vehicleState
}

// NewStateStore creates an empty state store.
func NewStateStore() *StateStore {
	return &StateStore{vehicles: make(map[string]*vehicleState)}
}

// getOrCreate returns the state record for vehicleID, lazily creating
// it on first access. It never fails.
func (st *StateStore) getOrCreate(vehicleID string) *vehicleState {
	st.mu.RLock()
	s, ok := st.vehicles[vehicleID]
	st.mu.RUnlock()
	if ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.vehicles[vehicleID]; ok {
		return s
	}
	s = newVehicleState()
	st.vehicles[vehicleID] = s
	return s
}

// ids returns a point-in-time snapshot of the tracked vehicle IDs.
func (st *StateStore) ids() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]string, 0, len(st.vehicles))
	for id := range st.vehicles {
		out = append(out, id)
	}
	return out
}

// get returns the state record for vehicleID, or nil if the vehicle is
// not tracked.
func (st *StateStore) get(vehicleID string) *vehicleState {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.vehicles[vehicleID]
}

// Evict removes vehicles that are absent from activeIDs or whose last
// sample is older than now minus maxInactive. A nil activeIDs set
// disables the membership check, leaving only the inactivity window.
// Removal is all-or-nothing per vehicle. Returns the number removed.
func (st *StateStore) Evict(activeIDs map[string]struct{}, maxInactive time.Duration, now time.Time) int {
	cutoff := now.Add(-maxInactive)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.vehicles {
		notActive := false
		if activeIDs != nil {
			_, ok := activeIDs[id]
			notActive = !ok
		}

		s.mu.Lock()
		if notActive || s.lastTime.Before(cutoff) {
			// Flagged under the record's mutex so a racing update
			// that already looked the pointer up re-fetches.
			s.removed = true
			delete(st.vehicles, id)
			removed++
		}
		s.mu.Unlock()
	}
	return removed
}

// Count returns the number of tracked vehicles.
func (st *StateStore) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.vehicles)
}
