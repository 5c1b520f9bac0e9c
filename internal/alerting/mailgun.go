package alerting

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v5"

	"github.com/sebasr/drivesense/internal/models"
)

// MailgunNotifier implements the Notifier interface using Mailgun's API,
// emailing an event digest to the fleet manager.
type MailgunNotifier struct {
	client      mailgun.Mailgun
	domain      string
	fromAddress string
	fromName    string
	toAddress   string
}

// NewMailgunNotifier creates a new Mailgun alert notifier.
// domain: Mailgun domain (e.g., "mg.example.com")
// apiKey: Mailgun API key
// fromAddress: Sender email address (e.g., "alerts@example.com")
// fromName: Sender display name (e.g., "DriveSense Alerts")
// toAddress: Fleet manager address receiving the alerts
func NewMailgunNotifier(domain, apiKey, fromAddress, fromName, toAddress string) *MailgunNotifier {
	// Trim whitespace from inputs (important when loaded from env files)
	domain = strings.TrimSpace(domain)
	apiKey = strings.TrimSpace(apiKey)
	fromAddress = strings.TrimSpace(fromAddress)
	fromName = strings.TrimSpace(fromName)
	toAddress = strings.TrimSpace(toAddress)

	// Mailgun v5 NewMailgun takes the API key as the parameter
	mg := mailgun.NewMailgun(apiKey)

	// Check if EU region should be used (set via MAILGUN_EU=true)
	if os.Getenv("MAILGUN_EU") == "true" {
		// Note: Mailgun v5 doesn't want the /v3 suffix - it adds it automatically
		_ = mg.SetAPIBase("https://api.eu.mailgun.net")
	}
	return &MailgunNotifier{
		client:      mg,
		domain:      domain,
		fromAddress: fromAddress,
		fromName:    fromName,
		toAddress:   toAddress,
	}
}

// NotifyEvents emails a digest of the events to the fleet manager.
func (n *MailgunNotifier) NotifyEvents(ctx context.Context, events []models.BehaviorEvent) error {
	if len(events) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Driving alert: %s (%d event(s))", events[0].VehicleID, len(events))

	var body strings.Builder
	body.WriteString("The following driving-behavior events were detected:\n\n")
	for _, ev := range events {
		fmt.Fprintf(&body, "- [%s] %s %s", strings.ToUpper(string(ev.Severity)), ev.VehicleID, ev.Category)
		if ev.DurationSeconds > 0 {
			fmt.Fprintf(&body, " for %.0fs", ev.DurationSeconds)
		}
		fmt.Fprintf(&body, " (value %.1f, threshold %.1f, est. %.3f gal wasted)", ev.Value, ev.Threshold, ev.FuelWasteGallons)
		if ev.Context != "" {
			fmt.Fprintf(&body, " - %s", ev.Context)
		}
		fmt.Fprintf(&body, " at %s\n", ev.Timestamp.Format(time.RFC3339))
	}
	body.WriteString("\n---\nThis is an automated message, please do not reply.")

	sender := fmt.Sprintf("%s <%s>", n.fromName, n.fromAddress)
	message := mailgun.NewMessage(n.domain, sender, subject, body.String(), n.toAddress)

	// Set timeout for the request
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := n.client.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}
