package alerting

import (
	"context"
	"sync"

	"github.com/sebasr/drivesense/internal/models"
)

// MockNotifier is a mock notifier implementation for testing.
// It stores delivered events in memory for verification in tests.
type MockNotifier struct {
	mu     sync.Mutex
	Events []models.BehaviorEvent

	// Err, when set, is returned by NotifyEvents
	Err error
}

// NewMockNotifier creates a new mock alert notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// NotifyEvents records the delivered events.
func (n *MockNotifier) NotifyEvents(_ context.Context, events []models.BehaviorEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Events = append(n.Events, events...)
	return nil
}

// Delivered returns a copy of everything delivered so far.
func (n *MockNotifier) Delivered() []models.BehaviorEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.BehaviorEvent, len(n.Events))
	copy(out, n.Events)
	return out
}
