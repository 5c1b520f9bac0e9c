// Package behavior implements the per-vehicle driving-behavior detection
// engine: threshold-based event detectors, fuel-waste accounting, the
// Heavy-Foot composite scorer, fuel-economy cross-validation, and fleet
// aggregation.
package behavior

// Thresholds holds every detection threshold and fuel-waste coefficient
// used by the engine. It is built once at startup and never mutated.
type Thresholds struct {
	// Acceleration tiers in mph per second (minor < moderate < severe)
	AccelMinor    float64
	AccelModerate float64
	AccelSevere   float64

	// Braking tiers in mph per second, negative (minor > moderate > severe)
	BrakeMinor    float64
	BrakeModerate float64
	BrakeSevere   float64

	// Engine speed bands in RPM
	RPMOptimalMin  float64
	RPMOptimalMax  float64
	RPMHighWarning float64
	RPMExcessive   float64
	RPMRedline     float64

	// Sustained seconds before an excessive-RPM event fires, and before
	// it escalates to critical (critical additionally requires redline)
	RPMMinSeconds      float64
	RPMCriticalSeconds float64

	// Wrong-gear detection: RPM floor, minimum sustained seconds, the
	// speed floor that excludes launch-from-stop, and the assumed top
	// gear for the vehicle type
	WrongGearRPM        float64
	WrongGearMinSeconds float64
	WrongGearMinSpeed   float64
	AssumedMaxGear      int

	// Road speed bands in mph and the sustained seconds before an
	// overspeeding event fires
	SpeedWarning    float64
	SpeedExcessive  float64
	SpeedSevere     float64
	SpeedMinSeconds float64

	// Fuel-waste coefficients: gallons per event for instantaneous
	// categories, gallons per minute for sustained ones. Overspeeding
	// waste is additionally scaled by mph over the warning threshold.
	AccelWasteGalPerEvent  float64
	BrakeWasteGalPerEvent  float64
	RPMWasteGalPerMin      float64
	GearWasteGalPerMin     float64
	SpeedWasteGalPerMinMPH float64

	// Scorer baselines: expected hard events per driving hour and the
	// expected fraction of driving time spent in each sustained condition
	ExpectedAccelPerHour  float64
	ExpectedBrakePerHour  float64
	ExpectedRPMFraction   float64
	ExpectedGearFraction  float64
	ExpectedSpeedFraction float64

	// Scorer penalty factors: points deducted per excess event or per
	// excess minute
	AccelPenaltyPerEvent  float64
	BrakePenaltyPerEvent  float64
	RPMPenaltyPerMinute   float64
	GearPenaltyPerMinute  float64
	SpeedPenaltyPerMinute float64

	// Maximum allowed percent difference between the Kalman and ECU
	// fuel-economy means before cross-validation fails
	CrossValidationTolerancePct float64
}

// DefaultThresholds returns the threshold table tuned for a medium-duty
// fleet vehicle.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AccelMinor:    6.0,
		AccelModerate: 8.0,
		AccelSevere:   10.0,

		BrakeMinor:    -7.0,
		BrakeModerate: -9.0,
		BrakeSevere:   -11.0,

		RPMOptimalMin:  1300,
		RPMOptimalMax:  1900,
		RPMHighWarning: 2000,
		RPMExcessive:   2200,
		RPMRedline:     2500,

		RPMMinSeconds:      5,
		RPMCriticalSeconds: 10,

		WrongGearRPM:        2000,
		WrongGearMinSeconds: 10,
		WrongGearMinSpeed:   25,
		AssumedMaxGear:      10,

		SpeedWarning:    65,
		SpeedExcessive:  75,
		SpeedSevere:     85,
		SpeedMinSeconds: 60,

		AccelWasteGalPerEvent:  0.015,
		BrakeWasteGalPerEvent:  0.010,
		RPMWasteGalPerMin:      0.020,
		GearWasteGalPerMin:     0.025,
		SpeedWasteGalPerMinMPH: 0.002,

		ExpectedAccelPerHour:  2.0,
		ExpectedBrakePerHour:  3.0,
		ExpectedRPMFraction:   0.10,
		ExpectedGearFraction:  0.05,
		ExpectedSpeedFraction: 0.05,

		AccelPenaltyPerEvent:  8.0,
		BrakePenaltyPerEvent:  6.0,
		RPMPenaltyPerMinute:   2.0,
		GearPenaltyPerMinute:  2.5,
		SpeedPenaltyPerMinute: 2.0,

		CrossValidationTolerancePct: 15.0,
	}
}
