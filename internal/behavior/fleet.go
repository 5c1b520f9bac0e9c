package behavior

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/sebasr/drivesense/internal/models"
)

// Fleet recommendation thresholds.
const (
	fleetTrainingScore  = 70 // fleet average below this suggests training
	fleetAttentionScore = 50 // a vehicle below this needs immediate attention
	fleetRankingSize    = 5  // vehicles listed per ranking
)

// FleetSummary scores every tracked vehicle and aggregates the results:
// worst/best rankings, fleet-wide fuel-waste totals, the dominant waste
// category, and recommendations. Returns ErrInsufficientData when no
// vehicle could be scored.
func (e *Engine) FleetSummary(periodHours float64) (*models.FleetSummary, error) {
	ids := e.store.ids()

	rankings := make([]models.VehicleRanking, 0, len(ids))
	scores := make([]float64, 0, len(ids))
	wasteByCategory := make(map[models.EventCategory]float64)
	var totalWaste float64
	var flagged []string

	for _, id := range ids {
		score, err := e.Score(id, periodHours, nil)
		if err != nil {
			// Evicted between snapshot and scoring.
			continue
		}
		rankings = append(rankings, models.VehicleRanking{
			VehicleID:    id,
			OverallScore: score.OverallScore,
			Grade:        score.Grade,
		})
		scores = append(scores, score.OverallScore)
		for cat, g := range score.FuelWasteByCategory {
			wasteByCategory[cat] += g
		}
		totalWaste += score.TotalFuelWaste
		if score.OverallScore < fleetAttentionScore {
			flagged = append(flagged, id)
		}
	}

	if len(rankings) == 0 {
		return nil, ErrInsufficientData
	}

	// Worst first, tie-broken by ID for determinism.
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].OverallScore != rankings[j].OverallScore {
			return rankings[i].OverallScore < rankings[j].OverallScore
		}
		return rankings[i].VehicleID < rankings[j].VehicleID
	})
	worst := topN(rankings, fleetRankingSize)

	best := make([]models.VehicleRanking, len(rankings))
	copy(best, rankings)
	sort.Slice(best, func(i, j int) bool {
		if best[i].OverallScore != best[j].OverallScore {
			return best[i].OverallScore > best[j].OverallScore
		}
		return best[i].VehicleID < best[j].VehicleID
	})
	best = topN(best, fleetRankingSize)

	avg := stat.Mean(scores, nil)
	dominant := dominantCategory(wasteByCategory)

	return &models.FleetSummary{
		GeneratedAt:           time.Now().UTC(),
		PeriodHours:           periodHours,
		VehicleCount:          len(rankings),
		AverageScore:          avg,
		WorstPerformers:       worst,
		BestPerformers:        best,
		FuelWasteByCategory:   wasteByCategory,
		TotalFuelWaste:        totalWaste,
		DominantWasteCategory: dominant,
		Recommendations:       recommendations(avg, dominant, totalWaste, flagged),
	}, nil
}

func topN(rankings []models.VehicleRanking, n int) []models.VehicleRanking {
	if len(rankings) > n {
		rankings = rankings[:n]
	}
	out := make([]models.VehicleRanking, len(rankings))
	copy(out, rankings)
	return out
}

// dominantCategory returns the category wasting the most fuel
// fleet-wide, or empty when nothing has been wasted yet.
func dominantCategory(waste map[models.EventCategory]float64) models.EventCategory {
	var dominant models.EventCategory
	var max float64
	for _, cat := range models.Categories() {
		if g := waste[cat]; g > max {
			max = g
			dominant = cat
		}
	}
	return dominant
}

// recommendations applies the independent fleet recommendation rules;
// any subset may fire.
func recommendations(avg float64, dominant models.EventCategory, totalWaste float64, flagged []string) []string {
	var recs []string

	if avg < fleetTrainingScore {
		recs = append(recs, fmt.Sprintf("Fleet average score is %.1f: schedule a driver training program", avg))
	}

	if totalWaste > 0 {
		switch dominant {
		case models.CategoryHardAcceleration, models.CategoryHardBraking:
			recs = append(recs, "Largest fuel waste comes from aggressive acceleration and braking: coach smoother throttle and earlier braking")
		case models.CategoryExcessiveRPM:
			recs = append(recs, "Largest fuel waste comes from excessive engine speed: coach earlier upshifts and review governor settings")
		case models.CategoryWrongGear:
			recs = append(recs, "Largest fuel waste comes from wrong-gear operation: coach progressive shifting to keep the engine in its optimal band")
		case models.CategoryOverspeeding:
			recs = append(recs, "Largest fuel waste comes from overspeeding: enforce highway speed limits or enable speed governors")
		}
	}

	if len(flagged) > 0 {
		sort.Strings(flagged)
		if len(flagged) > 5 {
			flagged = flagged[:5]
		}
		recs = append(recs, fmt.Sprintf("Vehicles needing immediate attention (score below %d): %s",
			fleetAttentionScore, strings.Join(flagged, ", ")))
	}

	return recs
}
