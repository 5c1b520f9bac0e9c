// Package repository provides data access interfaces and implementations.
package repository

import (
	"context"

	"github.com/sebasr/drivesense/internal/models"
)

// ScoreRepository defines the interface for Heavy-Foot score history access
type ScoreRepository interface {
	// Save persists one score snapshot
	Save(ctx context.Context, score *models.HeavyFootScore) error

	// GetHistory retrieves the most recent score snapshots for a vehicle,
	// newest first
	GetHistory(ctx context.Context, vehicleID string, limit int) ([]*models.HeavyFootScore, error)

	// GetLatest retrieves the newest score snapshot for a vehicle, or
	// nil when none has been persisted
	GetLatest(ctx context.Context, vehicleID string) (*models.HeavyFootScore, error)
}
