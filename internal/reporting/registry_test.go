package reporting

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubIndicator struct {
	code  string
	value float64
	err   error
	got   Window
}

func (s *stubIndicator) Code() string { return s.code }

func (s *stubIndicator) Compute(_ context.Context, window Window) (float64, error) {
	s.got = window
	return s.value, s.err
}

func TestRegistryComputeRoutesByCode(t *testing.T) {
	registry := NewRegistry()
	indicator := &stubIndicator{code: "N_MELDING_NIEUW", value: 12}
	registry.Register(indicator)

	window := Window{
		Start: time.Date(2018, 9, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2018, 9, 8, 0, 0, 0, 0, time.UTC),
	}
	value, err := registry.Compute(context.Background(), "N_MELDING_NIEUW", window)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if value != 12 {
		t.Fatalf("value = %v, want 12", value)
	}
	if !indicator.got.Start.Equal(window.Start) || !indicator.got.End.Equal(window.End) {
		t.Fatalf("window not passed through: %+v", indicator.got)
	}
}

func TestRegistryUnknownCode(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Compute(context.Background(), "N_ONBEKEND", Window{})
	if !errors.Is(err, ErrUnknownIndicator) {
		t.Fatalf("err = %v, want ErrUnknownIndicator", err)
	}
}

func TestRegistryReplacesDuplicateCode(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubIndicator{code: "X", value: 1})
	registry.Register(&stubIndicator{code: "X", value: 2})

	value, err := registry.Compute(context.Background(), "X", Window{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if value != 2 {
		t.Fatalf("value = %v, want the later registration", value)
	}
}

func TestRegistryCodes(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubIndicator{code: "A"})
	registry.Register(&stubIndicator{code: "B"})

	codes := registry.Codes()
	if len(codes) != 2 {
		t.Fatalf("codes = %v", codes)
	}
}
