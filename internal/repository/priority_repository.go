package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/signals-service/internal/domain"
)

// PriorityRepository reads the append-only priority history.
type PriorityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Priority, error)
	List(ctx context.Context, limit, offset int) ([]domain.Priority, int, error)
	ListBySignal(ctx context.Context, signalID int64) ([]domain.Priority, error)
}

type priorityRepository struct {
	pool *pgxpool.Pool
}

// NewPriorityRepository builds the repository.
func NewPriorityRepository(pool *pgxpool.Pool) PriorityRepository {
	return &priorityRepository{pool: pool}
}

func (r *priorityRepository) GetByID(ctx context.Context, id int64) (*domain.Priority, error) {
	return fetchPriority(ctx, r.pool, &id)
}

func (r *priorityRepository) List(ctx context.Context, limit, offset int) ([]domain.Priority, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM priorities`).Scan(&count); err != nil {
		return nil, 0, err
	}

	const query = `
        SELECT id, signal_id, priority, created_by, created_at
        FROM priorities ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	result, err := scanPriorities(rows)
	return result, count, err
}

func (r *priorityRepository) ListBySignal(ctx context.Context, signalID int64) ([]domain.Priority, error) {
	const query = `
        SELECT id, signal_id, priority, created_by, created_at
        FROM priorities WHERE signal_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, signalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPriorities(rows)
}

func scanPriorities(rows pgx.Rows) ([]domain.Priority, error) {
	var result []domain.Priority
	for rows.Next() {
		var priority domain.Priority
		if err := rows.Scan(
			&priority.ID,
			&priority.SignalID,
			&priority.Priority,
			&priority.CreatedBy,
			&priority.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, priority)
	}
	return result, rows.Err()
}

func insertPriority(ctx context.Context, q rowQuerier, priority *domain.Priority) error {
	const query = `
        INSERT INTO priorities (signal_id, priority, created_by)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return q.QueryRow(ctx, query,
		priority.SignalID,
		priority.Priority,
		priority.CreatedBy,
	).Scan(&priority.ID, &priority.CreatedAt)
}

func fetchPriority(ctx context.Context, q rowQuerier, id *int64) (*domain.Priority, error) {
	if id == nil {
		return nil, nil
	}
	const query = `
        SELECT id, signal_id, priority, created_by, created_at
        FROM priorities WHERE id=$1`
	var priority domain.Priority
	if err := q.QueryRow(ctx, query, *id).Scan(
		&priority.ID,
		&priority.SignalID,
		&priority.Priority,
		&priority.CreatedBy,
		&priority.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &priority, nil
}

func fetchReporter(ctx context.Context, q rowQuerier, id *int64) (*domain.Reporter, error) {
	if id == nil {
		return nil, nil
	}
	const query = `
        SELECT id, signal_id, email, phone, remove_at, extra_properties, created_at
        FROM reporters WHERE id=$1`
	var reporter domain.Reporter
	if err := q.QueryRow(ctx, query, *id).Scan(
		&reporter.ID,
		&reporter.SignalID,
		&reporter.Email,
		&reporter.Phone,
		&reporter.RemoveAt,
		&reporter.ExtraProperties,
		&reporter.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &reporter, nil
}
