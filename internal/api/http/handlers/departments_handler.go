package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/signals-service/internal/api/dto"
	"github.com/spec-kit/signals-service/internal/service"
	apperrors "github.com/spec-kit/signals-service/pkg/util"
)

// DepartmentsHandler serves the private department endpoints.
type DepartmentsHandler struct {
	service *service.DepartmentService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departmentService *service.DepartmentService) *DepartmentsHandler {
	return &DepartmentsHandler{service: departmentService}
}

// List GET /signals/v1/private/departments/.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	limit, offset := parseListQuery(c)
	departments, count, err := h.service.List(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}

	results := make([]*dto.DepartmentResponse, 0, len(departments))
	for i := range departments {
		results = append(results, dto.NewDepartmentResponse(&departments[i]))
	}
	return c.JSON(dto.ListResponse{Count: count, Results: results})
}

// Create POST /signals/v1/private/departments/.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewFieldError("non_field_errors", "Invalid payload.")
	}

	dept, err := h.service.Create(c.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewDepartmentResponse(dept))
}

// Get GET /signals/v1/private/departments/:id.
func (h *DepartmentsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return apperrors.NewNotFound("department")
	}
	dept, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDepartmentResponse(dept))
}

// Update PATCH /signals/v1/private/departments/:id. Only the fields
// present in the request change.
func (h *DepartmentsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return apperrors.NewNotFound("department")
	}
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewFieldError("non_field_errors", "Invalid payload.")
	}

	dept, err := h.service.Update(c.UserContext(), id, req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDepartmentResponse(dept))
}
