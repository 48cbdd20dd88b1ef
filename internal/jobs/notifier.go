package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"pagewatch/internal/metrics"
	"pagewatch/internal/models"
)

// AlertStore persists alerts.
type AlertStore interface {
	CreateAlert(ctx context.Context, a *models.Alert) error
}

// Mailer emails an alert to a target's recipients.
type Mailer interface {
	NotifyKeywordAlert(ctx context.Context, target *models.Target, alert *models.Alert)
}

// AlertNotifier records alerts, counts them per keyword and emails them.
type AlertNotifier struct {
	store  AlertStore
	mailer Mailer
	logger *slog.Logger
}

// NewAlertNotifier creates an AlertNotifier. A nil mailer disables email.
func NewAlertNotifier(store AlertStore, mailer Mailer, logger *slog.Logger) *AlertNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertNotifier{store: store, mailer: mailer, logger: logger}
}

// Notify stores the alert and then sends it. Only a storage failure is
// returned; email is delivered in the background.
func (n *AlertNotifier) Notify(ctx context.Context, target *models.Target, alert *models.Alert) error {
	if err := n.store.CreateAlert(ctx, alert); err != nil {
		return fmt.Errorf("failed to store alert: %w", err)
	}

	metrics.RecordKeywordAlerts(alert.Keywords)
	n.logger.Info("keyword alert",
		"target", target.Name,
		"url", alert.URL,
		"keywords", alert.Keywords,
		"alert_id", alert.ID,
	)

	if n.mailer != nil {
		n.mailer.NotifyKeywordAlert(ctx, target, alert)
	}
	return nil
}
