package behavior

import (
	"math"
	"time"

	"github.com/sebasr/drivesense/internal/models"
)

// Sub-score weights for the overall Heavy-Foot score.
const (
	weightAccel = 0.30
	weightBrake = 0.20
	weightRPM   = 0.20
	weightGear  = 0.15
	weightSpeed = 0.15
)

// drivingHoursFraction estimates time actually spent driving when the
// caller does not supply it: 40% of the scoring period.
const drivingHoursFraction = 0.4

// Score computes the Heavy-Foot Score for a vehicle over periodHours.
// drivingHours may be nil, in which case it is estimated from the
// period. Returns ErrInsufficientData for an untracked vehicle.
func (e *Engine) Score(vehicleID string, periodHours float64, drivingHours *float64) (*models.HeavyFootScore, error) {
	s := e.store.get(vehicleID)
	if s == nil {
		return nil, ErrInsufficientData
	}

	s.mu.Lock()
	accelCount := s.hardAccelCount
	brakeCount := s.hardBrakeCount
	rpmMinutes := s.rpmSeconds / 60
	gearMinutes := s.wrongGearSeconds / 60
	speedMinutes := s.overspeedSeconds / 60
	waste := make(map[models.EventCategory]float64, len(s.fuelWaste))
	for cat, g := range s.fuelWaste {
		waste[cat] = g
	}
	total := s.totalFuelWaste()
	s.mu.Unlock()

	driving := periodHours * drivingHoursFraction
	if drivingHours != nil {
		driving = *drivingHours
	}

	th := e.thresholds
	accelScore := subScore(float64(accelCount), th.ExpectedAccelPerHour*driving, th.AccelPenaltyPerEvent)
	brakeScore := subScore(float64(brakeCount), th.ExpectedBrakePerHour*driving, th.BrakePenaltyPerEvent)
	rpmScore := subScore(rpmMinutes, th.ExpectedRPMFraction*driving*60, th.RPMPenaltyPerMinute)
	speedScore := subScore(speedMinutes, th.ExpectedSpeedFraction*driving*60, th.SpeedPenaltyPerMinute)

	// No wrong-gear time ever recorded means no gear data worth
	// penalizing, not a perfect record being rewarded.
	gearScore := 100.0
	if gearMinutes > 0 {
		gearScore = subScore(gearMinutes, th.ExpectedGearFraction*driving*60, th.GearPenaltyPerMinute)
	}

	overall := weightAccel*accelScore +
		weightBrake*brakeScore +
		weightRPM*rpmScore +
		weightGear*gearScore +
		weightSpeed*speedScore
	overall = math.Round(overall*10) / 10

	return &models.HeavyFootScore{
		VehicleID:           vehicleID,
		GeneratedAt:         time.Now().UTC(),
		PeriodHours:         periodHours,
		DrivingHours:        driving,
		AccelScore:          accelScore,
		BrakeScore:          brakeScore,
		RPMScore:            rpmScore,
		GearScore:           gearScore,
		SpeedScore:          speedScore,
		OverallScore:        overall,
		Grade:               gradeFor(overall),
		HardAccelCount:      accelCount,
		HardBrakeCount:      brakeCount,
		HighRPMMinutes:      rpmMinutes,
		WrongGearMinutes:    gearMinutes,
		OverspeedMinutes:    speedMinutes,
		FuelWasteByCategory: waste,
		TotalFuelWaste:      total,
	}, nil
}

// subScore deducts factor points per unit the observation exceeds the
// expected baseline, clamped to [0, 100].
func subScore(observed, expected, factor float64) float64 {
	penalty := math.Max(0, observed-expected) * factor
	return math.Max(0, 100-penalty)
}

// gradeFor maps an overall score to its letter grade.
func gradeFor(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}
