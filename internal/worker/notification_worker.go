package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/signals-service/internal/events"
	"github.com/spec-kit/signals-service/internal/notification"
	"github.com/spec-kit/signals-service/internal/repository"
)

const sendTimeout = 30 * time.Second

// NotificationWorker bridges domain events to the mail integrations.
// Dispatch happens on a separate goroutine so a slow SMTP server never
// delays the request that triggered the event.
type NotificationWorker struct {
	signals  repository.SignalRepository
	notifier *notification.Notifier
	logger   *zap.Logger
}

// NewNotificationWorker wires the worker.
func NewNotificationWorker(signals repository.SignalRepository, notifier *notification.Notifier, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{signals: signals, notifier: notifier, logger: logger}
}

// Subscribe registers the worker on the dispatcher for the events that
// can make an integration applicable.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventSignalCreated, w.handle)
	dispatcher.Subscribe(events.EventSignalStatusChanged, w.handle)
}

func (w *NotificationWorker) handle(_ context.Context, event events.Event) error {
	go w.dispatch(event)
	return nil
}

func (w *NotificationWorker) dispatch(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	signal, err := w.signals.GetByID(ctx, event.SignalID)
	if err != nil {
		w.logger.Error("notification dispatch: signal load failed",
			zap.Int64("signal_id", event.SignalID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return
	}

	sent := w.notifier.SendMail(ctx, signal)
	if sent > 0 {
		w.logger.Info("integration mail sent",
			zap.Int64("signal_id", signal.ID),
			zap.Int("count", sent))
	}
}
