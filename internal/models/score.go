package models

import "time"

// HeavyFootScore is the composite 0-100 driving-quality score for a
// vehicle over a scoring period, with its fuel-waste breakdown.
type HeavyFootScore struct {
	VehicleID   string    `json:"vehicleId"`
	GeneratedAt time.Time `json:"generatedAt"`

	// Scoring-period metadata
	PeriodHours  float64 `json:"periodHours"`
	DrivingHours float64 `json:"drivingHours"`

	// Category sub-scores (0-100)
	AccelScore float64 `json:"accelScore"`
	BrakeScore float64 `json:"brakeScore"`
	RPMScore   float64 `json:"rpmScore"`
	GearScore  float64 `json:"gearScore"`
	SpeedScore float64 `json:"speedScore"`

	// Weighted overall score and its letter grade
	OverallScore float64 `json:"overallScore"`
	Grade        string  `json:"grade"`

	// Observed occurrence counts and sustained minutes
	HardAccelCount   int     `json:"hardAccelCount"`
	HardBrakeCount   int     `json:"hardBrakeCount"`
	HighRPMMinutes   float64 `json:"highRpmMinutes"`
	WrongGearMinutes float64 `json:"wrongGearMinutes"`
	OverspeedMinutes float64 `json:"overspeedMinutes"`

	// Estimated fuel waste, total and per category, in gallons
	FuelWasteByCategory map[EventCategory]float64 `json:"fuelWasteByCategory"`
	TotalFuelWaste      float64                   `json:"totalFuelWaste"`
}

// CrossValidationResult compares the Kalman-filtered and ECU-reported
// fuel-economy estimates for one vehicle.
type CrossValidationResult struct {
	VehicleID      string    `json:"vehicleId"`
	Timestamp      time.Time `json:"timestamp"`
	KalmanMeanMPG  float64   `json:"kalmanMeanMpg"`
	ECUMeanMPG     float64   `json:"ecuMeanMpg"`
	DifferencePct  float64   `json:"differencePct"`
	IsValid        bool      `json:"isValid"`
	Recommendation string    `json:"recommendation"`
}

// VehicleRanking pairs a vehicle with its overall score for fleet views.
type VehicleRanking struct {
	VehicleID    string  `json:"vehicleId"`
	OverallScore float64 `json:"overallScore"`
	Grade        string  `json:"grade"`
}

// FleetSummary aggregates scores and fuel waste across every tracked
// vehicle.
type FleetSummary struct {
	GeneratedAt  time.Time `json:"generatedAt"`
	PeriodHours  float64   `json:"periodHours"`
	VehicleCount int       `json:"vehicleCount"`
	AverageScore float64   `json:"averageScore"`

	// Worst first / best first
	WorstPerformers []VehicleRanking `json:"worstPerformers"`
	BestPerformers  []VehicleRanking `json:"bestPerformers"`

	FuelWasteByCategory   map[EventCategory]float64 `json:"fuelWasteByCategory"`
	TotalFuelWaste        float64                   `json:"totalFuelWaste"`
	DominantWasteCategory EventCategory             `json:"dominantWasteCategory"`

	Recommendations []string `json:"recommendations"`
}
