package behavior

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/sebasr/drivesense/internal/models"
)

// minCrossValidationSamples is the number of MPG samples both windows
// must hold before the estimates can be compared.
const minCrossValidationSamples = 5

// epsilonMPG guards percent-difference denominators against a zero or
// near-zero ECU mean.
const epsilonMPG = 1e-6

// CrossValidate compares the Kalman-filtered and ECU-reported
// fuel-economy windows for a vehicle. Returns ErrInsufficientData when
// either window holds fewer than minCrossValidationSamples samples or
// the ECU mean is unusable.
func (e *Engine) CrossValidate(vehicleID string) (*models.CrossValidationResult, error) {
	s := e.store.get(vehicleID)
	if s == nil {
		return nil, ErrInsufficientData
	}

	s.mu.Lock()
	kalman := s.kalmanMPG.Samples()
	ecu := s.ecuMPG.Samples()
	s.mu.Unlock()

	if len(kalman) < minCrossValidationSamples || len(ecu) < minCrossValidationSamples {
		return nil, ErrInsufficientData
	}

	kalmanMean := stat.Mean(kalman, nil)
	ecuMean := stat.Mean(ecu, nil)
	if math.Abs(ecuMean) < epsilonMPG {
		return nil, ErrInsufficientData
	}

	diffPct := math.Abs(kalmanMean-ecuMean) / ecuMean * 100
	valid := diffPct <= e.thresholds.CrossValidationTolerancePct

	var recommendation string
	switch {
	case valid:
		recommendation = "estimates validated: Kalman and ECU fuel economy agree within tolerance"
	case kalmanMean > ecuMean:
		recommendation = fmt.Sprintf("Kalman estimate runs %.1f%% higher than ECU: check ECU fuel-rate calibration", diffPct)
	default:
		recommendation = fmt.Sprintf("Kalman estimate runs %.1f%% lower than ECU: check speed/fuel sensor inputs to the filter", diffPct)
	}

	return &models.CrossValidationResult{
		VehicleID:      vehicleID,
		Timestamp:      time.Now().UTC(),
		KalmanMeanMPG:  kalmanMean,
		ECUMeanMPG:     ecuMean,
		DifferencePct:  diffPct,
		IsValid:        valid,
		Recommendation: recommendation,
	}, nil
}
