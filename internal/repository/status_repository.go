package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/signals-service/internal/domain"
)

// StatusRepository reads the append-only status history. Rows are
// never updated or deleted.
type StatusRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Status, error)
	List(ctx context.Context, limit, offset int) ([]domain.Status, int, error)
	ListBySignal(ctx context.Context, signalID int64) ([]domain.Status, error)
}

type statusRepository struct {
	pool *pgxpool.Pool
}

// NewStatusRepository builds the repository.
func NewStatusRepository(pool *pgxpool.Pool) StatusRepository {
	return &statusRepository{pool: pool}
}

func (r *statusRepository) GetByID(ctx context.Context, id int64) (*domain.Status, error) {
	return fetchStatus(ctx, r.pool, &id)
}

func (r *statusRepository) List(ctx context.Context, limit, offset int) ([]domain.Status, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM statuses`).Scan(&count); err != nil {
		return nil, 0, err
	}

	const query = `
        SELECT id, signal_id, state, text, "user", target_api, extra_properties, created_at
        FROM statuses ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	result, err := scanStatuses(rows)
	return result, count, err
}

func (r *statusRepository) ListBySignal(ctx context.Context, signalID int64) ([]domain.Status, error) {
	const query = `
        SELECT id, signal_id, state, text, "user", target_api, extra_properties, created_at
        FROM statuses WHERE signal_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, signalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStatuses(rows)
}

func scanStatuses(rows pgx.Rows) ([]domain.Status, error) {
	var result []domain.Status
	for rows.Next() {
		var status domain.Status
		if err := rows.Scan(
			&status.ID,
			&status.SignalID,
			&status.State,
			&status.Text,
			&status.User,
			&status.TargetAPI,
			&status.ExtraProperties,
			&status.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, status)
	}
	return result, rows.Err()
}

func insertStatus(ctx context.Context, q rowQuerier, status *domain.Status) error {
	const query = `
        INSERT INTO statuses (signal_id, state, text, "user", target_api, extra_properties)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return q.QueryRow(ctx, query,
		status.SignalID,
		status.State,
		status.Text,
		status.User,
		status.TargetAPI,
		status.ExtraProperties,
	).Scan(&status.ID, &status.CreatedAt)
}

func fetchStatus(ctx context.Context, q rowQuerier, id *int64) (*domain.Status, error) {
	if id == nil {
		return nil, nil
	}
	const query = `
        SELECT id, signal_id, state, text, "user", target_api, extra_properties, created_at
        FROM statuses WHERE id=$1`
	var status domain.Status
	if err := q.QueryRow(ctx, query, *id).Scan(
		&status.ID,
		&status.SignalID,
		&status.State,
		&status.Text,
		&status.User,
		&status.TargetAPI,
		&status.ExtraProperties,
		&status.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &status, nil
}
