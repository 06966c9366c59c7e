package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/signals-service/internal/domain"
	"github.com/spec-kit/signals-service/internal/repository"
	apperrors "github.com/spec-kit/signals-service/pkg/util"
)

// CategoryLinkInput links a department to one category.
type CategoryLinkInput struct {
	CategoryID    int64
	IsResponsible bool
	CanView       bool
}

// DepartmentInput carries the writable department fields. Pointer
// fields distinguish "absent" from "zero" so PATCH can merge.
type DepartmentInput struct {
	Name       *string
	Code       *string
	IsIntern   *bool
	Categories []CategoryLinkInput
	// HasCategories marks whether the categories key was present in
	// the request at all; an empty present list clears the links.
	HasCategories bool
}

// DepartmentService manages departments and their category links.
type DepartmentService struct {
	departments repository.DepartmentRepository
	categories  repository.CategoryRepository
	logger      *zap.Logger
}

// NewDepartmentService wires the service.
func NewDepartmentService(departments repository.DepartmentRepository, categories repository.CategoryRepository, logger *zap.Logger) *DepartmentService {
	return &DepartmentService{departments: departments, categories: categories, logger: logger}
}

// Create stores a new department with its category links.
func (s *DepartmentService) Create(ctx context.Context, input DepartmentInput) (*domain.Department, error) {
	dept := &domain.Department{}
	if input.Name != nil {
		dept.Name = *input.Name
	}
	if input.Code != nil {
		dept.Code = *input.Code
	}
	if input.IsIntern != nil {
		dept.IsIntern = *input.IsIntern
	}

	if err := s.validate(ctx, dept, input.Categories); err != nil {
		return nil, err
	}

	links := buildCategoryLinks(input.Categories)
	if err := s.departments.Create(ctx, dept, links); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.Get(ctx, dept.ID)
}

// Update merges the input into an existing department. Only fields
// present in the request change; the category links are replaced only
// when the request carries a categories key.
func (s *DepartmentService) Update(ctx context.Context, id int64, input DepartmentInput) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if input.Name != nil {
		dept.Name = *input.Name
	}
	if input.Code != nil {
		dept.Code = *input.Code
	}
	if input.IsIntern != nil {
		dept.IsIntern = *input.IsIntern
	}

	if err := s.validate(ctx, dept, input.Categories); err != nil {
		return nil, err
	}

	links := buildCategoryLinks(input.Categories)
	if err := s.departments.Update(ctx, dept, links, input.HasCategories); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.Get(ctx, dept.ID)
}

// Get loads one department with its category links.
func (s *DepartmentService) Get(ctx context.Context, id int64) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// List pages over departments.
func (s *DepartmentService) List(ctx context.Context, limit, offset int) ([]domain.Department, int, error) {
	departments, count, err := s.departments.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return departments, count, nil
}

func (s *DepartmentService) validate(ctx context.Context, dept *domain.Department, links []CategoryLinkInput) error {
	fields := map[string][]string{}
	if dept.Name == "" {
		fields["name"] = append(fields["name"], msgFieldRequired)
	}
	if dept.Code == "" {
		fields["code"] = append(fields["code"], msgFieldRequired)
	} else if msg, ok := domain.ValidateDepartmentCode(dept.Code); !ok {
		fields["code"] = append(fields["code"], msg)
	}
	for _, link := range links {
		if _, err := s.categories.GetByID(ctx, link.CategoryID); err != nil {
			if apperrors.ToDomainError(err).Code == "NOT_FOUND" {
				fields["categories"] = append(fields["categories"], "Category does not exist.")
				continue
			}
			return apperrors.MapError(err)
		}
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields)
	}
	return nil
}

func buildCategoryLinks(inputs []CategoryLinkInput) []domain.CategoryDepartment {
	links := make([]domain.CategoryDepartment, 0, len(inputs))
	for _, input := range inputs {
		links = append(links, domain.CategoryDepartment{
			CategoryID:    input.CategoryID,
			IsResponsible: input.IsResponsible,
			CanView:       input.CanView || input.IsResponsible,
		})
	}
	return links
}
