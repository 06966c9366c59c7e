package reporting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrUnknownIndicator is returned when a code has no registered
// indicator.
var ErrUnknownIndicator = errors.New("unknown indicator code")

// Window bounds an indicator computation in time; Start inclusive,
// End exclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// Indicator is a named, independently pluggable read-side aggregation
// over signal history. Implementations never mutate state and must be
// safe to run concurrently with writes.
type Indicator interface {
	Code() string
	Compute(ctx context.Context, window Window) (float64, error)
}

// Registry routes indicator codes to implementations.
type Registry struct {
	mu         sync.RWMutex
	indicators map[string]Indicator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{indicators: make(map[string]Indicator)}
}

// Register adds an indicator; a duplicate code replaces the previous
// registration.
func (r *Registry) Register(indicator Indicator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indicators[indicator.Code()] = indicator
}

// Codes lists the registered indicator codes.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.indicators))
	for code := range r.indicators {
		codes = append(codes, code)
	}
	return codes
}

// Compute runs the indicator registered under code for the window.
func (r *Registry) Compute(ctx context.Context, code string, window Window) (float64, error) {
	r.mu.RLock()
	indicator, ok := r.indicators[code]
	r.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownIndicator, code)
	}
	return indicator.Compute(ctx, window)
}
