package dto

import (
	"time"

	"github.com/spec-kit/signals-service/internal/domain"
	"github.com/spec-kit/signals-service/internal/service"
)

// CategoryLinkPayload links a department to one category in a write
// request. can_view defaults to the value of is_responsible.
type CategoryLinkPayload struct {
	CategoryID    int64 `json:"category_id"`
	IsResponsible bool  `json:"is_responsible"`
	CanView       bool  `json:"can_view"`
}

// DepartmentRequest is the department write payload. Pointers keep
// absent and zero apart so PATCH merges instead of clearing.
type DepartmentRequest struct {
	Name       *string               `json:"name"`
	Code       *string               `json:"code"`
	IsIntern   *bool                 `json:"is_intern"`
	Categories []CategoryLinkPayload `json:"categories"`
}

// ToInput maps the request onto the service input.
func (r *DepartmentRequest) ToInput() service.DepartmentInput {
	input := service.DepartmentInput{
		Name:          r.Name,
		Code:          r.Code,
		IsIntern:      r.IsIntern,
		HasCategories: r.Categories != nil,
	}
	for _, link := range r.Categories {
		input.Categories = append(input.Categories, service.CategoryLinkInput{
			CategoryID:    link.CategoryID,
			IsResponsible: link.IsResponsible,
			CanView:       link.CanView,
		})
	}
	return input
}

// DepartmentRefResponse is one department serving a category, as
// echoed inside the category back-reference.
type DepartmentRefResponse struct {
	ID            int64  `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	IsIntern      bool   `json:"is_intern"`
	IsResponsible bool   `json:"is_responsible"`
	CanView       bool   `json:"can_view"`
}

// LinkedCategoryResponse is the category of a department link, with
// the departments serving it so a write echoes the routing that
// resulted from it.
type LinkedCategoryResponse struct {
	ID          int64                   `json:"id"`
	Slug        string                  `json:"slug"`
	Name        string                  `json:"name"`
	Departments []DepartmentRefResponse `json:"departments"`
}

// CategoryLinkResponse is one category link of a department.
type CategoryLinkResponse struct {
	ID            int64                   `json:"id"`
	CategoryID    int64                   `json:"category_id"`
	Category      *LinkedCategoryResponse `json:"category,omitempty"`
	IsResponsible bool                    `json:"is_responsible"`
	CanView       bool                    `json:"can_view"`
}

// DepartmentResponse is the read view of a department.
type DepartmentResponse struct {
	ID         int64                  `json:"id"`
	Name       string                 `json:"name"`
	Code       string                 `json:"code"`
	IsIntern   bool                   `json:"is_intern"`
	Categories []CategoryLinkResponse `json:"categories"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// NewDepartmentResponse maps a department with its links.
func NewDepartmentResponse(dept *domain.Department) *DepartmentResponse {
	resp := &DepartmentResponse{
		ID:         dept.ID,
		Name:       dept.Name,
		Code:       dept.Code,
		IsIntern:   dept.IsIntern,
		Categories: []CategoryLinkResponse{},
		CreatedAt:  dept.CreatedAt,
		UpdatedAt:  dept.UpdatedAt,
	}
	for _, link := range dept.Categories {
		item := CategoryLinkResponse{
			ID:            link.ID,
			CategoryID:    link.CategoryID,
			IsResponsible: link.IsResponsible,
			CanView:       link.CanView,
		}
		if link.Category != nil {
			category := &LinkedCategoryResponse{
				ID:          link.Category.ID,
				Slug:        link.Category.Slug,
				Name:        link.Category.Name,
				Departments: []DepartmentRefResponse{},
			}
			for _, backRef := range link.Category.Departments {
				ref := DepartmentRefResponse{
					ID:            backRef.DepartmentID,
					IsResponsible: backRef.IsResponsible,
					CanView:       backRef.CanView,
				}
				if backRef.Department != nil {
					ref.Code = backRef.Department.Code
					ref.Name = backRef.Department.Name
					ref.IsIntern = backRef.Department.IsIntern
				}
				category.Departments = append(category.Departments, ref)
			}
			item.Category = category
		}
		resp.Categories = append(resp.Categories, item)
	}
	return resp
}
