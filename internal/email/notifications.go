package email

import (
	"context"
	"log/slog"

	"pagewatch/internal/config"
	"pagewatch/internal/models"
)

// Notifier sends alert emails to the address configured on each target.
type Notifier struct {
	service   *Service
	templates *Templates
	cfg       *config.Config

	send func(to []string, subject, htmlBody, textBody string)
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg *config.Config, logger *slog.Logger) *Notifier {
	svc := NewService(cfg, logger)
	return &Notifier{
		service:   svc,
		templates: NewTemplates(cfg),
		cfg:       cfg,
		send:      svc.SendAsync,
	}
}

// Enabled reports whether alert emails will be sent.
func (n *Notifier) Enabled() bool {
	return n.service.IsEnabled()
}

// NotifyKeywordAlert emails the target's notify address about an alert.
// Targets without an address are skipped.
func (n *Notifier) NotifyKeywordAlert(ctx context.Context, target *models.Target, alert *models.Alert) {
	if !n.service.IsEnabled() || target.NotifyEmail == "" || len(alert.Keywords) == 0 {
		return
	}

	subject, htmlBody, textBody := n.templates.KeywordAlert(target, alert)
	n.send([]string{target.NotifyEmail}, subject, htmlBody, textBody)
}
