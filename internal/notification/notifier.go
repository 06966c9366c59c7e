package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/signals-service/internal/domain"
	"github.com/spec-kit/signals-service/internal/observability"
)

// Integration is one rule-based email integration: a predicate over an
// immutable signal snapshot, a renderer and a statically configured
// recipient. New integrations register a triple instead of being
// special-cased in control flow.
type Integration struct {
	Name       string
	Recipient  string
	Subject    string
	Applicable func(signal *domain.Signal) bool
	Render     func(signal *domain.Signal) string
}

// Notifier evaluates every registered integration independently per
// signal event. A failed send for one integration never prevents the
// others from being evaluated or sent.
type Notifier struct {
	mailer       Mailer
	logger       *zap.Logger
	metrics      *observability.Metrics
	from         string
	integrations []Integration
}

// NewNotifier creates the notifier.
func NewNotifier(mailer Mailer, logger *zap.Logger, metrics *observability.Metrics, from string) *Notifier {
	return &Notifier{
		mailer:  mailer,
		logger:  logger,
		metrics: metrics,
		from:    from,
	}
}

// Register adds an integration. Integrations without a configured
// recipient address are registered but never fire.
func (n *Notifier) Register(integration Integration) {
	n.integrations = append(n.integrations, integration)
}

// SendMail evaluates all integrations for the signal and returns the
// number of messages actually sent.
func (n *Notifier) SendMail(ctx context.Context, signal *domain.Signal) int {
	sent := 0
	for _, integration := range n.integrations {
		if integration.Recipient == "" {
			continue
		}
		if !integration.Applicable(signal) {
			continue
		}

		msg := Message{
			From:    n.from,
			To:      []string{integration.Recipient},
			Subject: integration.Subject,
			Body:    integration.Render(signal),
		}
		if err := n.mailer.Send(ctx, msg); err != nil {
			n.logger.Error("integration mail failed",
				zap.String("integration", integration.Name),
				zap.String("signal_id", signal.SignalID),
				zap.Error(err))
			n.metrics.RecordMail(integration.Name, false)
			continue
		}
		n.metrics.RecordMail(integration.Name, true)
		sent++
	}
	return sent
}

// DefaultNotificationMessage renders the shared plain-text body used
// by the district integrations. The frontend link is resolved from
// the environment mapping at construction time.
func DefaultNotificationMessage(signal *domain.Signal, frontendURL string) string {
	category := ""
	if signal.CategoryAssignment != nil && signal.CategoryAssignment.Category != nil {
		category = signal.CategoryAssignment.Category.Name
	}
	address := ""
	if signal.Location != nil {
		address = signal.Location.AddressText
	}
	return fmt.Sprintf(
		"Er is een nieuwe melding binnengekomen.\n\n"+
			"Melding: %s\n"+
			"Categorie: %s\n"+
			"Adres: %s\n\n"+
			"Bekijk de melding: %s/manage/incident/%d\n",
		signal.Text, category, address, frontendURL, signal.ID)
}
