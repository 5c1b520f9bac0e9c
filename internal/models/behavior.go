package models

import "time"

// EventCategory identifies the kind of driving behavior an event describes.
type EventCategory string

// Behavior event categories. The set is closed: detectors and the scorer
// switch exhaustively over these values.
const (
	CategoryHardAcceleration EventCategory = "hard_acceleration"
	CategoryHardBraking      EventCategory = "hard_braking"
	CategoryExcessiveRPM     EventCategory = "excessive_rpm"
	CategoryWrongGear        EventCategory = "wrong_gear"
	CategoryOverspeeding     EventCategory = "overspeeding"
)

// Categories lists every event category in a stable order.
func Categories() []EventCategory {
	return []EventCategory{
		CategoryHardAcceleration,
		CategoryHardBraking,
		CategoryExcessiveRPM,
		CategoryWrongGear,
		CategoryOverspeeding,
	}
}

// Severity grades how serious a behavior event is.
type Severity string

// Event severities, from least to most serious.
const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"
)

// AtLeast reports whether s is at or above min on the severity scale.
func (s Severity) AtLeast(min Severity) bool {
	return severityRank(s) >= severityRank(min)
}

func severityRank(s Severity) int {
	switch s {
	case SeverityMinor:
		return 0
	case SeverityModerate:
		return 1
	case SeveritySevere:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// BehaviorEvent is a discrete driving-behavior occurrence emitted by the
// detection engine. Events are immutable once emitted.
type BehaviorEvent struct {
	VehicleID string        `json:"vehicleId"`
	Timestamp time.Time     `json:"timestamp"`
	Category  EventCategory `json:"category"`
	Severity  Severity      `json:"severity"`

	// Measured value that triggered the event (mph/s for delta events,
	// RPM or mph for sustained events, count for device-reported ones)
	Value float64 `json:"value"`

	// Threshold that was crossed
	Threshold float64 `json:"threshold"`

	// Sustained duration in seconds; 0 for instantaneous events
	DurationSeconds float64 `json:"durationSeconds"`

	// Estimated fuel wasted by this occurrence, in gallons
	FuelWasteGallons float64 `json:"fuelWasteGallons"`

	// Free-form context (e.g. "device-reported", gear/speed detail)
	Context string `json:"context,omitempty"`
}
