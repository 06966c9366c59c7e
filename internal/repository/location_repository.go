package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/signals-service/internal/domain"
)

// LocationRepository reads the append-only location history.
type LocationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Location, error)
	List(ctx context.Context, limit, offset int) ([]domain.Location, int, error)
	ListBySignal(ctx context.Context, signalID int64) ([]domain.Location, error)
}

type locationRepository struct {
	pool *pgxpool.Pool
}

// NewLocationRepository builds the repository.
func NewLocationRepository(pool *pgxpool.Pool) LocationRepository {
	return &locationRepository{pool: pool}
}

func (r *locationRepository) GetByID(ctx context.Context, id int64) (*domain.Location, error) {
	return fetchLocation(ctx, r.pool, &id)
}

func (r *locationRepository) List(ctx context.Context, limit, offset int) ([]domain.Location, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM locations`).Scan(&count); err != nil {
		return nil, 0, err
	}

	const query = `
        SELECT id, signal_id, stadsdeel, address, address_text, buurt_code, latitude, longitude, extra_properties, created_at
        FROM locations ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	result, err := scanLocations(rows)
	return result, count, err
}

func (r *locationRepository) ListBySignal(ctx context.Context, signalID int64) ([]domain.Location, error) {
	const query = `
        SELECT id, signal_id, stadsdeel, address, address_text, buurt_code, latitude, longitude, extra_properties, created_at
        FROM locations WHERE signal_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, signalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLocations(rows)
}

func scanLocations(rows pgx.Rows) ([]domain.Location, error) {
	var result []domain.Location
	for rows.Next() {
		var loc domain.Location
		if err := rows.Scan(
			&loc.ID,
			&loc.SignalID,
			&loc.Stadsdeel,
			&loc.Address,
			&loc.AddressText,
			&loc.BuurtCode,
			&loc.Latitude,
			&loc.Longitude,
			&loc.ExtraProperties,
			&loc.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, loc)
	}
	return result, rows.Err()
}

func insertLocation(ctx context.Context, q rowQuerier, loc *domain.Location) error {
	const query = `
        INSERT INTO locations (signal_id, stadsdeel, address, address_text, buurt_code, latitude, longitude, extra_properties)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return q.QueryRow(ctx, query,
		loc.SignalID,
		loc.Stadsdeel,
		loc.Address,
		loc.AddressText,
		loc.BuurtCode,
		loc.Latitude,
		loc.Longitude,
		loc.ExtraProperties,
	).Scan(&loc.ID, &loc.CreatedAt)
}

func fetchLocation(ctx context.Context, q rowQuerier, id *int64) (*domain.Location, error) {
	if id == nil {
		return nil, nil
	}
	const query = `
        SELECT id, signal_id, stadsdeel, address, address_text, buurt_code, latitude, longitude, extra_properties, created_at
        FROM locations WHERE id=$1`
	var loc domain.Location
	if err := q.QueryRow(ctx, query, *id).Scan(
		&loc.ID,
		&loc.SignalID,
		&loc.Stadsdeel,
		&loc.Address,
		&loc.AddressText,
		&loc.BuurtCode,
		&loc.Latitude,
		&loc.Longitude,
		&loc.ExtraProperties,
		&loc.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &loc, nil
}
