package behavior

import (
	"fmt"
	"time"

	"github.com/sebasr/drivesense/internal/models"
)

// detect runs every detector against one in-range sample. Caller holds
// the vehicle's mutex and guarantees dt is within the gap-policy bounds.
func (e *Engine) detect(vehicleID string, s *vehicleState, sample *models.TelemetrySample, dt float64, now time.Time) []models.BehaviorEvent {
	var events []models.BehaviorEvent
	events, deviceAccel, deviceBrake := e.detectDeviceReported(vehicleID, s, sample, now, events)

	events = e.detectSpeedDelta(vehicleID, s, sample, dt, now, deviceAccel, deviceBrake, events)
	events = e.detectExcessiveRPM(vehicleID, s, sample, dt, now, events)
	events = e.detectWrongGear(vehicleID, s, sample, dt, now, events)
	events = e.detectOverspeeding(vehicleID, s, sample, dt, now, events)

	return events
}

// detectDeviceReported emits events for harsh-event counts reported by
// the accelerometer firmware. Device reports are taken as ground truth:
// when present and non-zero, the speed-delta detector of the same
// polarity is skipped for this sample.
func (e *Engine) detectDeviceReported(vehicleID string, s *vehicleState, sample *models.TelemetrySample, now time.Time, events []models.BehaviorEvent) ([]models.BehaviorEvent, bool, bool) {
	th := e.thresholds
	accelReported, brakeReported := false, false

	if sample.DeviceHarshAccel != nil && *sample.DeviceHarshAccel > 0 {
		accelReported = true
		count := *sample.DeviceHarshAccel
		waste := th.AccelWasteGalPerEvent * float64(count)
		s.hardAccelCount += count
		s.fuelWaste[models.CategoryHardAcceleration] += waste
		events = append(events, models.BehaviorEvent{
			VehicleID:        vehicleID,
			Timestamp:        now,
			Category:         models.CategoryHardAcceleration,
			Severity:         models.SeverityModerate,
			Value:            float64(count),
			FuelWasteGallons: waste,
			Context:          "device-reported by accelerometer firmware",
		})
	}

	if sample.DeviceHarshBrake != nil && *sample.DeviceHarshBrake > 0 {
		brakeReported = true
		count := *sample.DeviceHarshBrake
		waste := th.BrakeWasteGalPerEvent * float64(count)
		s.hardBrakeCount += count
		s.fuelWaste[models.CategoryHardBraking] += waste
		events = append(events, models.BehaviorEvent{
			VehicleID:        vehicleID,
			Timestamp:        now,
			Category:         models.CategoryHardBraking,
			Severity:         models.SeverityModerate,
			Value:            float64(count),
			FuelWasteGallons: waste,
			Context:          "device-reported by accelerometer firmware",
		})
	}

	return events, accelReported, brakeReported
}

// detectSpeedDelta classifies hard acceleration and braking from the
// speed change between consecutive samples. Tiers are checked severe
// first so a value is never double-counted in a lower tier; counters
// and fuel waste update only when a tier actually matched.
func (e *Engine) detectSpeedDelta(vehicleID string, s *vehicleState, sample *models.TelemetrySample, dt float64, now time.Time, skipAccel, skipBrake bool, events []models.BehaviorEvent) []models.BehaviorEvent {
	// Speed must be present on both ends of the interval: lastSpeed
	// from an older sample would be diffed over the wrong dt.
	if sample.Speed == nil || !s.prevHadSpeed || dt <= 0 {
		return events
	}
	th := e.thresholds
	rate := (*sample.Speed - s.lastSpeed) / dt // mph per second

	if rate > 0 && !skipAccel {
		var severity models.Severity
		var threshold, waste float64
		switch {
		case rate >= th.AccelSevere:
			severity, threshold = models.SeveritySevere, th.AccelSevere
			waste = th.AccelWasteGalPerEvent * 2
		case rate >= th.AccelModerate:
			severity, threshold = models.SeverityModerate, th.AccelModerate
			waste = th.AccelWasteGalPerEvent
		case rate >= th.AccelMinor:
			severity, threshold = models.SeverityMinor, th.AccelMinor
			waste = th.AccelWasteGalPerEvent * 0.5
		default:
			return events
		}
		s.hardAccelCount++
		s.fuelWaste[models.CategoryHardAcceleration] += waste
		return append(events, models.BehaviorEvent{
			VehicleID:        vehicleID,
			Timestamp:        now,
			Category:         models.CategoryHardAcceleration,
			Severity:         severity,
			Value:            rate,
			Threshold:        threshold,
			FuelWasteGallons: waste,
			Context:          fmt.Sprintf("speed %.0f to %.0f mph over %.1fs", s.lastSpeed, *sample.Speed, dt),
		})
	}

	if rate < 0 && !skipBrake {
		var severity models.Severity
		var threshold, waste float64
		switch {
		case rate <= th.BrakeSevere:
			severity, threshold = models.SeveritySevere, th.BrakeSevere
			waste = th.BrakeWasteGalPerEvent * 2
		case rate <= th.BrakeModerate:
			severity, threshold = models.SeverityModerate, th.BrakeModerate
			waste = th.BrakeWasteGalPerEvent
		case rate <= th.BrakeMinor:
			severity, threshold = models.SeverityMinor, th.BrakeMinor
			waste = th.BrakeWasteGalPerEvent * 0.5
		default:
			return events
		}
		s.hardBrakeCount++
		s.fuelWaste[models.CategoryHardBraking] += waste
		return append(events, models.BehaviorEvent{
			VehicleID:        vehicleID,
			Timestamp:        now,
			Category:         models.CategoryHardBraking,
			Severity:         severity,
			Value:            rate,
			Threshold:        threshold,
			FuelWasteGallons: waste,
			Context:          fmt.Sprintf("speed %.0f to %.0f mph over %.1fs", s.lastSpeed, *sample.Speed, dt),
		})
	}

	return events
}

// detectExcessiveRPM tracks sustained engine speed at or above the
// excessive band. An event fires once the condition has held for
// RPMMinSeconds; it escalates to critical at RPMCriticalSeconds when
// the engine is at or past redline. Each tier fires at most once per
// activation.
func (e *Engine) detectExcessiveRPM(vehicleID string, s *vehicleState, sample *models.TelemetrySample, dt float64, now time.Time, events []models.BehaviorEvent) []models.BehaviorEvent {
	if sample.RPM == nil {
		return events
	}
	th := e.thresholds
	rpm := *sample.RPM

	if rpm < th.RPMExcessive || rpm <= 0 {
		s.rpmStart = time.Time{}
		s.rpmHeldSeconds = 0
		s.rpmEmitted = false
		s.rpmCriticalEmitted = false
		return events
	}

	if s.rpmStart.IsZero() {
		s.rpmStart = now
	} else {
		s.rpmHeldSeconds += dt
	}
	s.rpmSeconds += dt
	s.fuelWaste[models.CategoryExcessiveRPM] += th.RPMWasteGalPerMin * dt / 60

	duration := s.rpmHeldSeconds
	switch {
	case duration >= th.RPMCriticalSeconds && rpm >= th.RPMRedline && !s.rpmCriticalEmitted:
		s.rpmCriticalEmitted = true
		events = append(events, models.BehaviorEvent{
			VehicleID:       vehicleID,
			Timestamp:       now,
			Category:        models.CategoryExcessiveRPM,
			Severity:        models.SeverityCritical,
			Value:           rpm,
			Threshold:       th.RPMRedline,
			DurationSeconds: duration,
			Context:         fmt.Sprintf("engine held at or past redline %.0f RPM", th.RPMRedline),
		})
	case duration >= th.RPMMinSeconds && !s.rpmEmitted:
		s.rpmEmitted = true
		severity := models.SeverityModerate
		if rpm >= th.RPMRedline {
			severity = models.SeveritySevere
		}
		events = append(events, models.BehaviorEvent{
			VehicleID:       vehicleID,
			Timestamp:       now,
			Category:        models.CategoryExcessiveRPM,
			Severity:        severity,
			Value:           rpm,
			Threshold:       th.RPMExcessive,
			DurationSeconds: duration,
			Context:         "sustained engine speed above the excessive band",
		})
	}
	return events
}

// detectWrongGear tracks driving at speed in too low a gear: high RPM
// while below the vehicle's top gear. The speed floor excludes
// launch-from-stop, where high RPM in a low gear is normal.
func (e *Engine) detectWrongGear(vehicleID string, s *vehicleState, sample *models.TelemetrySample, dt float64, now time.Time, events []models.BehaviorEvent) []models.BehaviorEvent {
	if sample.RPM == nil || sample.Gear == nil || sample.Speed == nil {
		return events
	}
	th := e.thresholds
	active := *sample.RPM >= th.WrongGearRPM &&
		*sample.Gear < th.AssumedMaxGear &&
		*sample.Speed > th.WrongGearMinSpeed

	if !active {
		s.wrongGearStart = time.Time{}
		s.wrongGearHeldSeconds = 0
		s.wrongGearEmitted = false
		return events
	}

	if s.wrongGearStart.IsZero() {
		s.wrongGearStart = now
	} else {
		s.wrongGearHeldSeconds += dt
	}
	s.wrongGearSeconds += dt
	s.fuelWaste[models.CategoryWrongGear] += th.GearWasteGalPerMin * dt / 60

	duration := s.wrongGearHeldSeconds
	if duration >= th.WrongGearMinSeconds && !s.wrongGearEmitted {
		s.wrongGearEmitted = true
		events = append(events, models.BehaviorEvent{
			VehicleID:       vehicleID,
			Timestamp:       now,
			Category:        models.CategoryWrongGear,
			Severity:        models.SeverityModerate,
			Value:           *sample.RPM,
			Threshold:       th.WrongGearRPM,
			DurationSeconds: duration,
			Context:         fmt.Sprintf("gear %d of %d at %.0f mph", *sample.Gear, th.AssumedMaxGear, *sample.Speed),
		})
	}
	return events
}

// detectOverspeeding tracks sustained road speed at or above the
// warning band. Fuel waste scales with how far over the warning
// threshold the vehicle is running; the event severity is chosen from
// the current speed band once the minimum duration is reached.
func (e *Engine) detectOverspeeding(vehicleID string, s *vehicleState, sample *models.TelemetrySample, dt float64, now time.Time, events []models.BehaviorEvent) []models.BehaviorEvent {
	if sample.Speed == nil {
		return events
	}
	th := e.thresholds
	speed := *sample.Speed

	if speed < th.SpeedWarning {
		s.overspeedStart = time.Time{}
		s.overspeedHeldSeconds = 0
		s.overspeedEmitted = false
		return events
	}

	if s.overspeedStart.IsZero() {
		s.overspeedStart = now
	} else {
		s.overspeedHeldSeconds += dt
	}
	s.overspeedSeconds += dt
	s.fuelWaste[models.CategoryOverspeeding] += th.SpeedWasteGalPerMinMPH * (speed - th.SpeedWarning) * dt / 60

	duration := s.overspeedHeldSeconds
	if duration >= th.SpeedMinSeconds && !s.overspeedEmitted {
		s.overspeedEmitted = true
		severity := models.SeverityMinor
		switch {
		case speed >= th.SpeedSevere:
			severity = models.SeveritySevere
		case speed >= th.SpeedExcessive:
			severity = models.SeverityModerate
		}
		events = append(events, models.BehaviorEvent{
			VehicleID:       vehicleID,
			Timestamp:       now,
			Category:        models.CategoryOverspeeding,
			Severity:        severity,
			Value:           speed,
			Threshold:       th.SpeedWarning,
			DurationSeconds: duration,
			Context:         fmt.Sprintf("sustained %.0f mph against a %.0f mph warning band", speed, th.SpeedWarning),
		})
	}
	return events
}
