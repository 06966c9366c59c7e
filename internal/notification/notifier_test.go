package notification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/signals-service/internal/domain"
	"github.com/spec-kit/signals-service/internal/observability"
)

type fakeMailer struct {
	sent    []Message
	failFor map[string]error
}

func (f *fakeMailer) Send(_ context.Context, msg Message) error {
	if err, ok := f.failFor[msg.To[0]]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func alwaysApplicable(name, recipient string) Integration {
	return Integration{
		Name:       name,
		Recipient:  recipient,
		Subject:    SubjectNewSignal,
		Applicable: func(*domain.Signal) bool { return true },
		Render:     func(*domain.Signal) string { return "body" },
	}
}

func TestNotifierSendsApplicableIntegrations(t *testing.T) {
	mailer := &fakeMailer{}
	notifier := NewNotifier(mailer, zap.NewNop(), observability.NewMetrics(), "noreply@example.test")
	notifier.Register(alwaysApplicable("one", "one@example.test"))
	notifier.Register(Integration{
		Name:       "never",
		Recipient:  "never@example.test",
		Subject:    SubjectNewSignal,
		Applicable: func(*domain.Signal) bool { return false },
		Render:     func(*domain.Signal) string { return "body" },
	})

	sent := notifier.SendMail(context.Background(), &domain.Signal{ID: 1})
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].To[0] != "one@example.test" {
		t.Fatalf("unexpected messages: %+v", mailer.sent)
	}
	if mailer.sent[0].From != "noreply@example.test" {
		t.Fatalf("from = %q", mailer.sent[0].From)
	}
}

func TestNotifierSkipsUnconfiguredRecipients(t *testing.T) {
	mailer := &fakeMailer{}
	notifier := NewNotifier(mailer, zap.NewNop(), observability.NewMetrics(), "noreply@example.test")
	notifier.Register(alwaysApplicable("unconfigured", ""))

	if sent := notifier.SendMail(context.Background(), &domain.Signal{ID: 1}); sent != 0 {
		t.Fatalf("sent = %d, want 0", sent)
	}
}

func TestNotifierIsolatesFailures(t *testing.T) {
	mailer := &fakeMailer{failFor: map[string]error{
		"broken@example.test": errors.New("smtp unavailable"),
	}}
	notifier := NewNotifier(mailer, zap.NewNop(), observability.NewMetrics(), "noreply@example.test")
	notifier.Register(alwaysApplicable("broken", "broken@example.test"))
	notifier.Register(alwaysApplicable("working", "working@example.test"))

	sent := notifier.SendMail(context.Background(), &domain.Signal{ID: 1})
	if sent != 1 {
		t.Fatalf("sent = %d, want 1 despite a failing integration", sent)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].To[0] != "working@example.test" {
		t.Fatalf("the working integration should still deliver, got %+v", mailer.sent)
	}
}

func TestDefaultNotificationMessage(t *testing.T) {
	signal := &domain.Signal{
		ID:   99,
		Text: "Kapotte lantaarnpaal",
		Location: &domain.Location{
			AddressText: "Dam 1",
		},
		CategoryAssignment: &domain.CategoryAssignment{
			Category: &domain.Category{Name: "Straatverlichting"},
		},
	}
	body := DefaultNotificationMessage(signal, "http://dummy_link")

	for _, want := range []string{
		"Kapotte lantaarnpaal",
		"Straatverlichting",
		"Dam 1",
		"http://dummy_link/manage/incident/99",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}
