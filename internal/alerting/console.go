package alerting

import (
	"context"
	"log"
	"strings"

	"github.com/sebasr/drivesense/internal/models"
)

// ConsoleNotifier is a notifier that logs alerts to the console.
// This is useful for local development and testing.
type ConsoleNotifier struct{}

// NewConsoleNotifier creates a new console-based alert notifier
func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

// NotifyEvents logs the events to the console
func (n *ConsoleNotifier) NotifyEvents(_ context.Context, events []models.BehaviorEvent) error {
	for _, ev := range events {
		log.Printf("ALERT [%s] vehicle=%s category=%s value=%.1f threshold=%.1f duration=%.0fs waste=%.3fgal %s",
			strings.ToUpper(string(ev.Severity)), ev.VehicleID, ev.Category,
			ev.Value, ev.Threshold, ev.DurationSeconds, ev.FuelWasteGallons, ev.Context)
	}
	return nil
}
