package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/signals-service/internal/api/http/handlers"
	"github.com/spec-kit/signals-service/internal/domain"
	"github.com/spec-kit/signals-service/internal/observability"
	"github.com/spec-kit/signals-service/internal/service"
)

type stubStatusRepo struct {
	statuses map[int64]*domain.Status
}

func (f *stubStatusRepo) GetByID(_ context.Context, id int64) (*domain.Status, error) {
	status, ok := f.statuses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *status
	return &copied, nil
}

func (f *stubStatusRepo) List(context.Context, int, int) ([]domain.Status, int, error) {
	return nil, 0, nil
}

func (f *stubStatusRepo) ListBySignal(context.Context, int64) ([]domain.Status, error) {
	return nil, nil
}

func newStatusDetailTestApp() *fiber.App {
	statuses := &stubStatusRepo{statuses: map[int64]*domain.Status{
		1: {
			ID:        1,
			SignalID:  12,
			State:     domain.StateBehandeling,
			Text:      "Opgepakt door handhaving.",
			CreatedAt: time.Date(2018, 9, 5, 21, 0, 0, 0, time.UTC),
		},
	}}
	signalService := service.NewSignalService(nil, statuses, nil, nil, nil, nil, zap.NewNop())
	handler := handlers.NewSignalResourcesHandler(signalService)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)

	group := app.Group("/signals/auth")
	registerHistoryResource(group, "/status/", handler.ListStatuses, handler.CreateStatus, handler.GetStatus)
	return app
}

func TestStatusDetailEndpoint(t *testing.T) {
	app := newStatusDetailTestApp()

	req := httptest.NewRequest("GET", "/signals/auth/status/1/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		ID           int64  `json:"id"`
		Signal       int64  `json:"_signal"`
		State        string `json:"state"`
		StateDisplay string `json:"state_display"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != 1 || body.Signal != 12 {
		t.Fatalf("body = %+v", body)
	}
	if body.State != "b" || body.StateDisplay != "In behandeling" {
		t.Fatalf("state = %q display = %q", body.State, body.StateDisplay)
	}
}

func TestStatusDetailNotFound(t *testing.T) {
	app := newStatusDetailTestApp()

	req := httptest.NewRequest("GET", "/signals/auth/status/99/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
