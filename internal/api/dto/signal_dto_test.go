package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/spec-kit/signals-service/internal/domain"
)

func TestPublicSignalResponseExposesStatusOnly(t *testing.T) {
	signal := &domain.Signal{
		ID:       12,
		SignalID: "8df51c28-7e0c-4bb1-8c0b-6a2c62a5b7a7",
		Text:     "Er ligt een fietswrak op de stoep.",
		Status:   &domain.Status{ID: 1, State: domain.StateGemeld},
		Location: &domain.Location{AddressText: "Dam 1"},
		Reporter: &domain.Reporter{Email: "melder@example.test"},
	}

	raw, err := json.Marshal(NewPublicSignalResponse(signal))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	status, ok := body["status"].(map[string]any)
	if !ok {
		t.Fatalf("status = %v, want nested object", body["status"])
	}
	if status["state"] != "m" || status["id"] != float64(1) {
		t.Fatalf("status = %v, want id 1 and state m", status)
	}
	if status["state_display"] != "Gemeld" {
		t.Fatalf("state_display = %v", status["state_display"])
	}
	for _, field := range []string{"text", "location", "category", "reporter"} {
		if body[field] != nil {
			t.Fatalf("%s = %v, want null", field, body[field])
		}
	}
	if _, ok := body["source"]; ok {
		t.Fatalf("public view must not expose source")
	}
}

func TestNewSignalResponseNestsChildren(t *testing.T) {
	now := time.Date(2018, 9, 5, 21, 0, 0, 0, time.UTC)
	signal := &domain.Signal{
		ID:                12,
		SignalID:          "8df51c28-7e0c-4bb1-8c0b-6a2c62a5b7a7",
		Text:              "Er ligt een fietswrak op de stoep.",
		IncidentDateStart: now,
		Status:            &domain.Status{ID: 1, SignalID: 12, State: domain.StateBehandeling},
		CategoryAssignment: &domain.CategoryAssignment{
			ID:       2,
			SignalID: 12,
			Category: &domain.Category{
				Name:   "Fietswrak",
				Slug:   "fietswrak",
				Parent: &domain.MainCategory{Name: "Overlast in de openbare ruimte"},
			},
		},
		Priority: &domain.Priority{ID: 3, SignalID: 12, Priority: domain.PriorityHigh},
		Location: &domain.Location{ID: 4, SignalID: 12, Stadsdeel: domain.StadsdeelOost},
	}

	resp := NewSignalResponse(signal)
	if resp.Status == nil || resp.Status.StateDisplay != "In behandeling" {
		t.Fatalf("status = %+v", resp.Status)
	}
	if resp.Category == nil || resp.Category.Main != "Overlast in de openbare ruimte" || resp.Category.Sub != "Fietswrak" {
		t.Fatalf("category = %+v", resp.Category)
	}
	if resp.Location == nil || resp.Location.StadsdeelDisplay != "Oost" {
		t.Fatalf("location = %+v", resp.Location)
	}
	if resp.Reporter != nil {
		t.Fatalf("missing reporter must map to nil")
	}
}
