package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/signals-service/internal/api/http/handlers"
	"github.com/spec-kit/signals-service/internal/domain"
	"github.com/spec-kit/signals-service/internal/observability"
	"github.com/spec-kit/signals-service/internal/service"
)

type stubDepartmentRepo struct {
	mu          sync.Mutex
	nextID      int64
	departments map[int64]*domain.Department
}

func (f *stubDepartmentRepo) Create(_ context.Context, dept *domain.Department, links []domain.CategoryDepartment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	dept.ID = f.nextID
	for i := range links {
		links[i].DepartmentID = dept.ID
	}
	dept.Categories = links
	stored := *dept
	f.departments[dept.ID] = &stored
	return nil
}

func (f *stubDepartmentRepo) Update(_ context.Context, dept *domain.Department, links []domain.CategoryDepartment, replaceLinks bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.departments[dept.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.Name = dept.Name
	existing.Code = dept.Code
	existing.IsIntern = dept.IsIntern
	if replaceLinks {
		for i := range links {
			links[i].DepartmentID = dept.ID
		}
		existing.Categories = links
	}
	return nil
}

func (f *stubDepartmentRepo) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dept, ok := f.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *dept
	copied.Categories = make([]domain.CategoryDepartment, len(dept.Categories))
	copy(copied.Categories, dept.Categories)
	// hydrate the category of each link with its department
	// back-references, as the database repository does
	for i := range copied.Categories {
		link := &copied.Categories[i]
		category := &domain.Category{ID: link.CategoryID, Slug: "fietswrak", Name: "Fietswrak"}
		for _, other := range f.departments {
			for _, otherLink := range other.Categories {
				if otherLink.CategoryID != link.CategoryID {
					continue
				}
				backRef := otherLink
				ref := *other
				ref.Categories = nil
				backRef.Department = &ref
				category.Departments = append(category.Departments, backRef)
			}
		}
		link.Category = category
	}
	return &copied, nil
}

func (f *stubDepartmentRepo) List(_ context.Context, _, _ int) ([]domain.Department, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Department
	for _, dept := range f.departments {
		result = append(result, *dept)
	}
	return result, len(result), nil
}

func (f *stubDepartmentRepo) ListByCategory(context.Context, int64) ([]domain.CategoryDepartment, error) {
	return nil, nil
}

type stubCategoryRepo struct{}

func (stubCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	if id != 7 {
		return nil, pgx.ErrNoRows
	}
	return &domain.Category{ID: 7, Slug: "fietswrak", Name: "Fietswrak"}, nil
}

func (stubCategoryRepo) GetBySlugs(context.Context, string, string) (*domain.Category, error) {
	return nil, pgx.ErrNoRows
}

func (stubCategoryRepo) GetByNames(context.Context, string, string) (*domain.Category, error) {
	return nil, pgx.ErrNoRows
}

func (stubCategoryRepo) ListMainCategories(context.Context) ([]domain.MainCategory, error) {
	return nil, nil
}

func (stubCategoryRepo) GetMainBySlug(context.Context, string) (*domain.MainCategory, error) {
	return nil, pgx.ErrNoRows
}

func (stubCategoryRepo) ListByMain(context.Context, int64) ([]domain.Category, error) {
	return nil, nil
}

func (stubCategoryRepo) GetAssignmentByID(context.Context, int64) (*domain.CategoryAssignment, error) {
	return nil, pgx.ErrNoRows
}

func (stubCategoryRepo) ListAssignments(context.Context, int, int) ([]domain.CategoryAssignment, int, error) {
	return nil, 0, nil
}

func (stubCategoryRepo) ListAssignmentsBySignal(context.Context, int64) ([]domain.CategoryAssignment, error) {
	return nil, nil
}

func newDepartmentTestApp() *fiber.App {
	repo := &stubDepartmentRepo{departments: map[int64]*domain.Department{}}
	departmentService := service.NewDepartmentService(repo, stubCategoryRepo{}, zap.NewNop())
	handler := handlers.NewDepartmentsHandler(departmentService)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)

	group := app.Group("/signals/v1/private/departments")
	group.Get("/", handler.List)
	group.Post("/", handler.Create)
	group.Get("/:id", handler.Get)
	group.Patch("/:id", handler.Update)
	group.Delete("/:id", handlers.MethodNotAllowed)
	return app
}

func TestDepartmentCreateEndpoint(t *testing.T) {
	app := newDepartmentTestApp()

	body := `{"name":"Actie Service Centrum","code":"ASC","is_intern":true,"categories":[{"category_id":7,"is_responsible":true}]}`
	req := httptest.NewRequest("POST", "/signals/v1/private/departments/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var created struct {
		Code       string `json:"code"`
		Categories []struct {
			IsResponsible bool `json:"is_responsible"`
			CanView       bool `json:"can_view"`
			Category      struct {
				Slug        string `json:"slug"`
				Departments []struct {
					Code          string `json:"code"`
					IsResponsible bool   `json:"is_responsible"`
				} `json:"departments"`
			} `json:"category"`
		} `json:"categories"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Code != "ASC" {
		t.Fatalf("code = %q", created.Code)
	}
	if len(created.Categories) != 1 || !created.Categories[0].CanView {
		t.Fatalf("responsible link must expose can_view, got %+v", created.Categories)
	}
	category := created.Categories[0].Category
	if category.Slug != "fietswrak" {
		t.Fatalf("category slug = %q", category.Slug)
	}
	if len(category.Departments) != 1 || category.Departments[0].Code != "ASC" || !category.Departments[0].IsResponsible {
		t.Fatalf("category back-reference must echo the new department, got %+v", category.Departments)
	}
}

func TestDepartmentCodeValidationBody(t *testing.T) {
	app := newDepartmentTestApp()

	body := `{"name":"Omgevingsdienst","code":"OMGD"}`
	req := httptest.NewRequest("POST", "/signals/v1/private/departments/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	// the validation body is the bare field -> messages map
	var fields map[string][]string
	if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
		t.Fatalf("decode: %v", err)
	}
	msgs := fields["code"]
	if len(msgs) != 1 || msgs[0] != domain.MsgDepartmentCodeTooLong {
		t.Fatalf("code messages = %v", msgs)
	}
	if _, ok := fields["error"]; ok {
		t.Fatalf("validation body must not be wrapped in an error envelope")
	}
}

func TestDepartmentDeleteNotAllowed(t *testing.T) {
	app := newDepartmentTestApp()

	req := httptest.NewRequest("DELETE", "/signals/v1/private/departments/1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != 405 {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "METHOD_NOT_ALLOWED") {
		t.Fatalf("body = %s", raw)
	}
}

func TestDepartmentNotFound(t *testing.T) {
	app := newDepartmentTestApp()

	req := httptest.NewRequest("GET", "/signals/v1/private/departments/99", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
