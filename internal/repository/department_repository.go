package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/signals-service/internal/domain"
)

// DepartmentRepository manages departments and their category links.
// Writing a link with is_responsible=true demotes any previous
// responsible department for that category inside the same
// transaction, so at most one responsible link per category survives.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department, links []domain.CategoryDepartment) error
	Update(ctx context.Context, dept *domain.Department, links []domain.CategoryDepartment, replaceLinks bool) error
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context, limit, offset int) ([]domain.Department, int, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]domain.CategoryDepartment, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department, links []domain.CategoryDepartment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO departments (name, code, is_intern)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		dept.Name,
		dept.Code,
		dept.IsIntern,
	).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt); err != nil {
		return err
	}

	if err := insertCategoryLinks(ctx, tx, dept.ID, links); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department, links []domain.CategoryDepartment, replaceLinks bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE departments SET name=$1, code=$2, is_intern=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := tx.Exec(ctx, query,
		dept.Name,
		dept.Code,
		dept.IsIntern,
		dept.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if replaceLinks {
		if _, err := tx.Exec(ctx, `DELETE FROM category_departments WHERE department_id=$1`, dept.ID); err != nil {
			return err
		}
		if err := insertCategoryLinks(ctx, tx, dept.ID, links); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func insertCategoryLinks(ctx context.Context, tx pgx.Tx, departmentID int64, links []domain.CategoryDepartment) error {
	for i := range links {
		link := &links[i]
		link.DepartmentID = departmentID
		// a responsible department can always view its categories
		link.CanView = link.CanView || link.IsResponsible

		if link.IsResponsible {
			const demote = `
                UPDATE category_departments SET is_responsible=FALSE
                WHERE category_id=$1 AND is_responsible=TRUE`
			if _, err := tx.Exec(ctx, demote, link.CategoryID); err != nil {
				return err
			}
		}

		const insert = `
            INSERT INTO category_departments (category_id, department_id, is_responsible, can_view)
            VALUES ($1,$2,$3,$4)
            RETURNING id`
		if err := tx.QueryRow(ctx, insert,
			link.CategoryID,
			link.DepartmentID,
			link.IsResponsible,
			link.CanView,
		).Scan(&link.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	const query = `
        SELECT id, name, code, is_intern, created_at, updated_at
        FROM departments WHERE id=$1`
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&dept.ID,
		&dept.Name,
		&dept.Code,
		&dept.IsIntern,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		return nil, err
	}

	links, err := r.listLinksByDepartment(ctx, dept.ID)
	if err != nil {
		return nil, err
	}
	dept.Categories = links
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context, limit, offset int) ([]domain.Department, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM departments`).Scan(&count); err != nil {
		return nil, 0, err
	}

	const query = `
        SELECT id, name, code, is_intern, created_at, updated_at
        FROM departments ORDER BY name ASC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.Code, &dept.IsIntern, &dept.CreatedAt, &dept.UpdatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, dept)
	}
	return result, count, rows.Err()
}

// ListByCategory returns the department links of one category,
// responsible department first.
func (r *departmentRepository) ListByCategory(ctx context.Context, categoryID int64) ([]domain.CategoryDepartment, error) {
	const query = `
        SELECT l.id, l.category_id, l.department_id, l.is_responsible, l.can_view,
               d.id, d.name, d.code, d.is_intern, d.created_at, d.updated_at
        FROM category_departments l
        JOIN departments d ON d.id = l.department_id
        WHERE l.category_id=$1
        ORDER BY l.is_responsible DESC, d.code ASC`
	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CategoryDepartment
	for rows.Next() {
		var link domain.CategoryDepartment
		var dept domain.Department
		if err := rows.Scan(
			&link.ID,
			&link.CategoryID,
			&link.DepartmentID,
			&link.IsResponsible,
			&link.CanView,
			&dept.ID,
			&dept.Name,
			&dept.Code,
			&dept.IsIntern,
			&dept.CreatedAt,
			&dept.UpdatedAt,
		); err != nil {
			return nil, err
		}
		link.Department = &dept
		result = append(result, link)
	}
	return result, rows.Err()
}

func (r *departmentRepository) listLinksByDepartment(ctx context.Context, departmentID int64) ([]domain.CategoryDepartment, error) {
	const query = `
        SELECT l.id, l.category_id, l.department_id, l.is_responsible, l.can_view,
               c.id, c.parent_id, c.slug, c.name, c.handling, c.is_active,
               m.id, m.slug, m.name
        FROM category_departments l
        JOIN categories c ON c.id = l.category_id
        JOIN main_categories m ON m.id = c.parent_id
        WHERE l.department_id=$1
        ORDER BY c.name ASC`
	rows, err := r.pool.Query(ctx, query, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CategoryDepartment
	for rows.Next() {
		var link domain.CategoryDepartment
		var category domain.Category
		var main domain.MainCategory
		if err := rows.Scan(
			&link.ID,
			&link.CategoryID,
			&link.DepartmentID,
			&link.IsResponsible,
			&link.CanView,
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
		link.Category = &category
		result = append(result, link)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// load department back-references for each linked category
	for i := range result {
		backRefs, err := r.ListByCategory(ctx, result[i].CategoryID)
		if err != nil {
			return nil, err
		}
		result[i].Category.Departments = backRefs
	}
	return result, nil
}
