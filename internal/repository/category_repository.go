package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/signals-service/internal/domain"
)

// CategoryRepository resolves category terms and reads the
// append-only category assignment history.
type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	GetBySlugs(ctx context.Context, mainSlug, subSlug string) (*domain.Category, error)
	GetByNames(ctx context.Context, mainName, subName string) (*domain.Category, error)
	ListMainCategories(ctx context.Context) ([]domain.MainCategory, error)
	GetMainBySlug(ctx context.Context, slug string) (*domain.MainCategory, error)
	ListByMain(ctx context.Context, mainCategoryID int64) ([]domain.Category, error)

	GetAssignmentByID(ctx context.Context, id int64) (*domain.CategoryAssignment, error)
	ListAssignments(ctx context.Context, limit, offset int) ([]domain.CategoryAssignment, int, error)
	ListAssignmentsBySignal(ctx context.Context, signalID int64) ([]domain.CategoryAssignment, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository builds the repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

const categoryColumns = `
        c.id, c.parent_id, c.slug, c.name, c.handling, c.is_active,
        m.id, m.slug, m.name`

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `
        SELECT ` + categoryColumns + `
        FROM categories c JOIN main_categories m ON m.id = c.parent_id
        WHERE c.id=$1`
	return scanCategoryRow(r.pool.QueryRow(ctx, query, id))
}

func (r *categoryRepository) GetBySlugs(ctx context.Context, mainSlug, subSlug string) (*domain.Category, error) {
	query := `
        SELECT ` + categoryColumns + `
        FROM categories c JOIN main_categories m ON m.id = c.parent_id
        WHERE m.slug=$1 AND c.slug=$2`
	return scanCategoryRow(r.pool.QueryRow(ctx, query, mainSlug, subSlug))
}

func (r *categoryRepository) GetByNames(ctx context.Context, mainName, subName string) (*domain.Category, error) {
	query := `
        SELECT ` + categoryColumns + `
        FROM categories c JOIN main_categories m ON m.id = c.parent_id
        WHERE m.name=$1 AND c.name=$2`
	return scanCategoryRow(r.pool.QueryRow(ctx, query, mainName, subName))
}

func (r *categoryRepository) ListMainCategories(ctx context.Context) ([]domain.MainCategory, error) {
	const query = `SELECT id, slug, name FROM main_categories ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MainCategory
	for rows.Next() {
		var main domain.MainCategory
		if err := rows.Scan(&main.ID, &main.Slug, &main.Name); err != nil {
			return nil, err
		}
		result = append(result, main)
	}
	return result, rows.Err()
}

func (r *categoryRepository) GetMainBySlug(ctx context.Context, slug string) (*domain.MainCategory, error) {
	const query = `SELECT id, slug, name FROM main_categories WHERE slug=$1`
	var main domain.MainCategory
	if err := r.pool.QueryRow(ctx, query, slug).Scan(&main.ID, &main.Slug, &main.Name); err != nil {
		return nil, err
	}
	return &main, nil
}

func (r *categoryRepository) ListByMain(ctx context.Context, mainCategoryID int64) ([]domain.Category, error) {
	query := `
        SELECT ` + categoryColumns + `
        FROM categories c JOIN main_categories m ON m.id = c.parent_id
        WHERE c.parent_id=$1 ORDER BY c.name ASC`
	rows, err := r.pool.Query(ctx, query, mainCategoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *category)
	}
	return result, rows.Err()
}

func (r *categoryRepository) GetAssignmentByID(ctx context.Context, id int64) (*domain.CategoryAssignment, error) {
	return fetchCategoryAssignment(ctx, r.pool, &id)
}

func (r *categoryRepository) ListAssignments(ctx context.Context, limit, offset int) ([]domain.CategoryAssignment, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM category_assignments`).Scan(&count); err != nil {
		return nil, 0, err
	}

	const query = `
        SELECT id, signal_id, category_id, created_by, created_at
        FROM category_assignments ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := r.scanAssignmentsWithCategory(ctx, rows)
	return result, count, err
}

func (r *categoryRepository) ListAssignmentsBySignal(ctx context.Context, signalID int64) ([]domain.CategoryAssignment, error) {
	const query = `
        SELECT id, signal_id, category_id, created_by, created_at
        FROM category_assignments WHERE signal_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, signalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAssignmentsWithCategory(ctx, rows)
}

func (r *categoryRepository) scanAssignmentsWithCategory(ctx context.Context, rows pgx.Rows) ([]domain.CategoryAssignment, error) {
	var result []domain.CategoryAssignment
	for rows.Next() {
		var assignment domain.CategoryAssignment
		if err := rows.Scan(
			&assignment.ID,
			&assignment.SignalID,
			&assignment.CategoryID,
			&assignment.CreatedBy,
			&assignment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		category, err := r.GetByID(ctx, result[i].CategoryID)
		if err != nil {
			return nil, err
		}
		result[i].Category = category
	}
	return result, nil
}

func scanCategory(rows pgx.Rows) (*domain.Category, error) {
	return scanCategoryRow(rows)
}

func scanCategoryRow(row pgx.Row) (*domain.Category, error) {
	var category domain.Category
	var main domain.MainCategory
	if err := row.Scan(
		&category.ID,
		&category.ParentID,
		&category.Slug,
		&category.Name,
		&category.Handling,
		&category.IsActive,
		&main.ID,
		&main.Slug,
		&main.Name,
	); err != nil {
		return nil, err
	}
	category.Parent = &main
	return &category, nil
}

func insertCategoryAssignment(ctx context.Context, q rowQuerier, assignment *domain.CategoryAssignment) error {
	const query = `
        INSERT INTO category_assignments (signal_id, category_id, created_by)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return q.QueryRow(ctx, query,
		assignment.SignalID,
		assignment.CategoryID,
		assignment.CreatedBy,
	).Scan(&assignment.ID, &assignment.CreatedAt)
}

func fetchCategoryAssignment(ctx context.Context, q rowQuerier, id *int64) (*domain.CategoryAssignment, error) {
	if id == nil {
		return nil, nil
	}
	const query = `
        SELECT a.id, a.signal_id, a.category_id, a.created_by, a.created_at,
               c.id, c.parent_id, c.slug, c.name, c.handling, c.is_active,
               m.id, m.slug, m.name
        FROM category_assignments a
        JOIN categories c ON c.id = a.category_id
        JOIN main_categories m ON m.id = c.parent_id
        WHERE a.id=$1`
	var assignment domain.CategoryAssignment
	var category domain.Category
	var main domain.MainCategory
	if err := q.QueryRow(ctx, query, *id).Scan(
		&assignment.ID,
		&assignment.SignalID,
		&assignment.CategoryID,
		&assignment.CreatedBy,
		&assignment.CreatedAt,
		&category.ID,
		&category.ParentID,
		&category.Slug,
		&category.Name,
		&category.Handling,
		&category.IsActive,
		&main.ID,
		&main.Slug,
		&main.Name,
	); err != nil {
		return nil, err
	}
	category.Parent = &main
	assignment.Category = &category
	return &assignment, nil
}
