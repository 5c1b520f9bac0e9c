package repository

import (
	"context"

	"github.com/sebasr/drivesense/internal/models"
)

// MockScoreRepository is a mock implementation of ScoreRepository for testing
type MockScoreRepository struct {
	SaveFunc       func(ctx context.Context, score *models.HeavyFootScore) error
	GetHistoryFunc func(ctx context.Context, vehicleID string, limit int) ([]*models.HeavyFootScore, error)
	GetLatestFunc  func(ctx context.Context, vehicleID string) (*models.HeavyFootScore, error)

	// Saved collects everything passed to Save with the default SaveFunc
	Saved []*models.HeavyFootScore
}

// NewMockScoreRepository creates a new mock score repository with default implementations
func NewMockScoreRepository() *MockScoreRepository {
	m := &MockScoreRepository{}
	m.SaveFunc = func(_ context.Context, score *models.HeavyFootScore) error {
		m.Saved = append(m.Saved, score)
		return nil
	}
	m.GetHistoryFunc = func(_ context.Context, _ string, _ int) ([]*models.HeavyFootScore, error) {
		return []*models.HeavyFootScore{}, nil
	}
	m.GetLatestFunc = func(_ context.Context, _ string) (*models.HeavyFootScore, error) {
		return nil, nil
	}
	return m
}

// Save implements ScoreRepository.Save
func (m *MockScoreRepository) Save(ctx context.Context, score *models.HeavyFootScore) error {
	return m.SaveFunc(ctx, score)
}

// GetHistory implements ScoreRepository.GetHistory
func (m *MockScoreRepository) GetHistory(ctx context.Context, vehicleID string, limit int) ([]*models.HeavyFootScore, error) {
	return m.GetHistoryFunc(ctx, vehicleID, limit)
}

// GetLatest implements ScoreRepository.GetLatest
func (m *MockScoreRepository) GetLatest(ctx context.Context, vehicleID string) (*models.HeavyFootScore, error) {
	return m.GetLatestFunc(ctx, vehicleID)
}
