// Package models contains data models for the DriveSense service.
package models

import "time"

// TelemetrySample represents one periodic telemetry reading from a vehicle.
// All signal fields are optional: a missing field disables only the
// detectors that need it.
type TelemetrySample struct {
	// Vehicle identifier (fleet asset ID)
	VehicleID string `json:"vehicleId"`

	// UTC timestamp of the reading
	Timestamp time.Time `json:"timestamp"`

	// Road speed in mph
	Speed *float64 `json:"speed,omitempty"`

	// Engine speed in RPM
	RPM *float64 `json:"rpm,omitempty"`

	// Current gear (1..N)
	Gear *int `json:"gear,omitempty"`

	// Instantaneous fuel consumption in gallons per hour
	FuelRate *float64 `json:"fuelRate,omitempty"`

	// ECU-reported fuel economy in MPG
	FuelEconomy *float64 `json:"fuelEconomy,omitempty"`

	// Kalman-filtered fuel economy estimate in MPG, produced upstream
	KalmanMPG *float64 `json:"kalmanMpg,omitempty"`

	// Brake pedal switch state
	BrakePressed *bool `json:"brakePressed,omitempty"`

	// Brake line pressure in PSI
	BrakePressure *float64 `json:"brakePressure,omitempty"`

	// Harsh-event counts reported by the onboard accelerometer firmware.
	// When present and non-zero these take precedence over the
	// speed-delta detectors.
	DeviceHarshAccel *int `json:"deviceHarshAccel,omitempty"`
	DeviceHarshBrake *int `json:"deviceHarshBrake,omitempty"`
}
