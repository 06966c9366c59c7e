package reporting

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Indicator codes computed by the scheduled reporting runs.
const (
	CodeNMeldingNieuw       = "N_MELDING_NIEUW"
	CodeNMeldingOpen        = "N_MELDING_OPEN"
	CodeNMeldingGesloten    = "N_MELDING_GESLOTEN"
	CodePMeldingIntakeIn12H = "P_MELDING_INTAKE_IN_12H"
)

// NewDefaultRegistry registers the built-in indicators against the
// given pool.
func NewDefaultRegistry(pool *pgxpool.Pool) *Registry {
	registry := NewRegistry()
	registry.Register(&nMeldingNieuw{pool: pool})
	registry.Register(&nMeldingOpen{pool: pool})
	registry.Register(&nMeldingGesloten{pool: pool})
	registry.Register(&pMeldingIntakeIn12H{pool: pool})
	return registry
}

// nMeldingNieuw counts signals created inside the window.
type nMeldingNieuw struct {
	pool *pgxpool.Pool
}

func (i *nMeldingNieuw) Code() string { return CodeNMeldingNieuw }

func (i *nMeldingNieuw) Compute(ctx context.Context, window Window) (float64, error) {
	const query = `
        SELECT COUNT(*) FROM signals
        WHERE created_at >= $1 AND created_at < $2`
	var count int64
	if err := i.pool.QueryRow(ctx, query, window.Start, window.End).Scan(&count); err != nil {
		return 0, err
	}
	return float64(count), nil
}

// nMeldingOpen counts signals whose current status is not a terminal
// state at the end of the window.
type nMeldingOpen struct {
	pool *pgxpool.Pool
}

func (i *nMeldingOpen) Code() string { return CodeNMeldingOpen }

func (i *nMeldingOpen) Compute(ctx context.Context, window Window) (float64, error) {
	const query = `
        SELECT COUNT(*) FROM signals s
        JOIN statuses st ON st.id = s.status_id
        WHERE s.created_at < $1 AND st.state NOT IN ('o','a','s')`
	var count int64
	if err := i.pool.QueryRow(ctx, query, window.End).Scan(&count); err != nil {
		return 0, err
	}
	return float64(count), nil
}

// nMeldingGesloten counts signals that entered a terminal state inside
// the window.
type nMeldingGesloten struct {
	pool *pgxpool.Pool
}

func (i *nMeldingGesloten) Code() string { return CodeNMeldingGesloten }

func (i *nMeldingGesloten) Compute(ctx context.Context, window Window) (float64, error) {
	const query = `
        SELECT COUNT(DISTINCT signal_id) FROM statuses
        WHERE state IN ('o','a','s') AND created_at >= $1 AND created_at < $2`
	var count int64
	if err := i.pool.QueryRow(ctx, query, window.Start, window.End).Scan(&count); err != nil {
		return 0, err
	}
	return float64(count), nil
}

// pMeldingIntakeIn12H computes the percentage of signals created in
// the window that left the initial reported state within 12 hours.
type pMeldingIntakeIn12H struct {
	pool *pgxpool.Pool
}

func (i *pMeldingIntakeIn12H) Code() string { return CodePMeldingIntakeIn12H }

func (i *pMeldingIntakeIn12H) Compute(ctx context.Context, window Window) (float64, error) {
	const query = `
        WITH created AS (
            SELECT id, created_at FROM signals
            WHERE created_at >= $1 AND created_at < $2
        ),
        intake AS (
            SELECT c.id
            FROM created c
            JOIN statuses st ON st.signal_id = c.id AND st.state <> 'm'
            GROUP BY c.id, c.created_at
            HAVING MIN(st.created_at) <= c.created_at + INTERVAL '12 hours'
        )
        SELECT (SELECT COUNT(*) FROM created), (SELECT COUNT(*) FROM intake)`
	var total, within int64
	if err := i.pool.QueryRow(ctx, query, window.Start, window.End).Scan(&total, &within); err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	return float64(within) / float64(total) * 100, nil
}
