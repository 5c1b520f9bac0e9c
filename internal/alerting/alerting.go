// Package alerting delivers driving-behavior alerts to fleet managers.
package alerting

import (
	"context"

	"github.com/sebasr/drivesense/internal/models"
)

// Notifier is the interface for delivering behavior events to the
// alerting channel. Implementations include Mailgun for production,
// Console for local development and Mock for testing.
type Notifier interface {
	// NotifyEvents delivers a batch of behavior events for one vehicle.
	// Callers are expected to filter by severity before delivery.
	// Returns an error if delivery fails.
	NotifyEvents(ctx context.Context, events []models.BehaviorEvent) error
}

// FilterBySeverity returns the events at or above min severity.
func FilterBySeverity(events []models.BehaviorEvent, min models.Severity) []models.BehaviorEvent {
	var out []models.BehaviorEvent
	for _, ev := range events {
		if ev.Severity.AtLeast(min) {
			out = append(out, ev)
		}
	}
	return out
}
