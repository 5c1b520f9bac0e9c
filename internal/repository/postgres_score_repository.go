package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sebasr/drivesense/internal/database"
	"github.com/sebasr/drivesense/internal/models"
)

// PostgresScoreRepository implements ScoreRepository using PostgreSQL
type PostgresScoreRepository struct {
	db *database.DB
}

// NewPostgresScoreRepository creates a new PostgreSQL score repository
func NewPostgresScoreRepository(db *database.DB) *PostgresScoreRepository {
	return &PostgresScoreRepository{db: db}
}

// Save persists one score snapshot
func (r *PostgresScoreRepository) Save(ctx context.Context, score *models.HeavyFootScore) error {
	wasteJSON, err := json.Marshal(score.FuelWasteByCategory)
	if err != nil {
		return fmt.Errorf("failed to encode fuel waste breakdown: %w", err)
	}

	query := `
		INSERT INTO driver_scores (
			vehicle_id, generated_at, period_hours, driving_hours,
			accel_score, brake_score, rpm_score, gear_score, speed_score,
			overall_score, grade,
			hard_accel_count, hard_brake_count,
			high_rpm_minutes, wrong_gear_minutes, overspeed_minutes,
			fuel_waste_by_category, total_fuel_waste
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11,
			$12, $13,
			$14, $15, $16,
			$17, $18
		)
	`

	_, err = r.db.ExecContext(ctx, query,
		score.VehicleID, score.GeneratedAt, score.PeriodHours, score.DrivingHours,
		score.AccelScore, score.BrakeScore, score.RPMScore, score.GearScore, score.SpeedScore,
		score.OverallScore, score.Grade,
		score.HardAccelCount, score.HardBrakeCount,
		score.HighRPMMinutes, score.WrongGearMinutes, score.OverspeedMinutes,
		wasteJSON, score.TotalFuelWaste,
	)
	if err != nil {
		return fmt.Errorf("failed to insert score snapshot: %w", err)
	}

	return nil
}

// GetHistory retrieves the most recent score snapshots for a vehicle, newest first
func (r *PostgresScoreRepository) GetHistory(ctx context.Context, vehicleID string, limit int) ([]*models.HeavyFootScore, error) {
	if limit <= 0 {
		limit = 50
	}

	query := selectScoreColumns + `
		WHERE vehicle_id = $1
		ORDER BY generated_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, vehicleID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query score history: %w", err)
	}
	defer rows.Close()

	scores := make([]*models.HeavyFootScore, 0, limit)
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate score history: %w", err)
	}

	return scores, nil
}

// GetLatest retrieves the newest score snapshot for a vehicle
func (r *PostgresScoreRepository) GetLatest(ctx context.Context, vehicleID string) (*models.HeavyFootScore, error) {
	query := selectScoreColumns + `
		WHERE vehicle_id = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`

	row := r.db.QueryRowContext(ctx, query, vehicleID)
	score, err := scanScore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return score, nil
}

const selectScoreColumns = `
	SELECT
		vehicle_id, generated_at, period_hours, driving_hours,
		accel_score, brake_score, rpm_score, gear_score, speed_score,
		overall_score, grade,
		hard_accel_count, hard_brake_count,
		high_rpm_minutes, wrong_gear_minutes, overspeed_minutes,
		fuel_waste_by_category, total_fuel_waste
	FROM driver_scores
`

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScore(row rowScanner) (*models.HeavyFootScore, error) {
	var score models.HeavyFootScore
	var wasteJSON []byte

	err := row.Scan(
		&score.VehicleID, &score.GeneratedAt, &score.PeriodHours, &score.DrivingHours,
		&score.AccelScore, &score.BrakeScore, &score.RPMScore, &score.GearScore, &score.SpeedScore,
		&score.OverallScore, &score.Grade,
		&score.HardAccelCount, &score.HardBrakeCount,
		&score.HighRPMMinutes, &score.WrongGearMinutes, &score.OverspeedMinutes,
		&wasteJSON, &score.TotalFuelWaste,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan score row: %w", err)
	}

	if len(wasteJSON) > 0 {
		if err := json.Unmarshal(wasteJSON, &score.FuelWasteByCategory); err != nil {
			return nil, fmt.Errorf("failed to decode fuel waste breakdown: %w", err)
		}
	}

	return &score, nil
}
