package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/signals-service/internal/api/dto"
	"github.com/spec-kit/signals-service/internal/auth"
	"github.com/spec-kit/signals-service/internal/domain"
	"github.com/spec-kit/signals-service/internal/service"
	apperrors "github.com/spec-kit/signals-service/pkg/util"
)

// SignalResourcesHandler serves the authenticated views over signals
// and their append-only child histories.
type SignalResourcesHandler struct {
	service *service.SignalService
}

// NewSignalResourcesHandler constructs handler.
func NewSignalResourcesHandler(signalService *service.SignalService) *SignalResourcesHandler {
	return &SignalResourcesHandler{service: signalService}
}

// ListSignals GET /signals/auth/signal/.
func (h *SignalResourcesHandler) ListSignals(c *fiber.Ctx) error {
	limit, offset := parseListQuery(c)
	signals, count, err := h.service.List(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}

	results := make([]*dto.SignalResponse, 0, len(signals))
	for i := range signals {
		results = append(results, dto.NewSignalResponse(&signals[i]))
	}
	return c.JSON(dto.ListResponse{Count: count, Results: results})
}

// GetSignal GET /signals/auth/signal/:id/.
func (h *SignalResourcesHandler) GetSignal(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	signal, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSignalResponse(signal))
}

// GetSignalHistory GET /signals/auth/signal/:id/history/.
func (h *SignalResourcesHandler) GetSignalHistory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	history, err := h.service.History(c.UserContext(), id)
	if err != nil {
		return err
	}

	statuses := make([]*dto.StatusResponse, 0, len(history.Statuses))
	for i := range history.Statuses {
		statuses = append(statuses, dto.NewStatusResponse(&history.Statuses[i]))
	}
	categories := make([]*dto.CategoryAssignmentResponse, 0, len(history.Categories))
	for i := range history.Categories {
		categories = append(categories, dto.NewCategoryAssignmentResponse(&history.Categories[i]))
	}
	priorities := make([]*dto.PriorityResponse, 0, len(history.Priorities))
	for i := range history.Priorities {
		priorities = append(priorities, dto.NewPriorityResponse(&history.Priorities[i]))
	}
	locations := make([]*dto.LocationResponse, 0, len(history.Locations))
	for i := range history.Locations {
		locations = append(locations, dto.NewLocationResponse(&history.Locations[i]))
	}
	return c.JSON(fiber.Map{
		"statuses":   statuses,
		"categories": categories,
		"priorities": priorities,
		"locations":  locations,
	})
}

// ListStatuses GET /signals/auth/status/.
func (h *SignalResourcesHandler) ListStatuses(c *fiber.Ctx) error {
	limit, offset := parseListQuery(c)
	statuses, count, err := h.service.ListStatuses(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}

	results := make([]*dto.StatusResponse, 0, len(statuses))
	for i := range statuses {
		results = append(results, dto.NewStatusResponse(&statuses[i]))
	}
	return c.JSON(dto.ListResponse{Count: count, Results: results})
}

// CreateStatus POST /signals/auth/status/.
func (h *SignalResourcesHandler) CreateStatus(c *fiber.Ctx) error {
	var req dto.StatusPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewFieldError("non_field_errors", "Invalid payload.")
	}
	if req.Signal == 0 {
		return apperrors.NewFieldError("_signal", "This field is required.")
	}

	status, err := h.service.UpdateStatus(c.UserContext(), service.StatusUpdateInput{
		SignalID:        req.Signal,
		State:           domain.StatusState(req.State),
		Text:            req.Text,
		User:            actor(c),
		TargetAPI:       req.TargetAPI,
		ExtraProperties: req.ExtraProperties,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewStatusResponse(status))
}

// GetStatus GET /signals/auth/status/:id/.
func (h *SignalResourcesHandler) GetStatus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	status, err := h.service.GetStatus(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewStatusResponse(status))
}

// ListCategories GET /signals/auth/category/.
func (h *SignalResourcesHandler) ListCategories(c *fiber.Ctx) error {
	limit, offset := parseListQuery(c)
	assignments, count, err := h.service.ListCategoryAssignments(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}

	results := make([]*dto.CategoryAssignmentResponse, 0, len(assignments))
	for i := range assignments {
		results = append(results, dto.NewCategoryAssignmentResponse(&assignments[i]))
	}
	return c.JSON(dto.ListResponse{Count: count, Results: results})
}

// CreateCategory POST /signals/auth/category/.
func (h *SignalResourcesHandler) CreateCategory(c *fiber.Ctx) error {
	var req struct {
		Signal      int64  `json:"_signal"`
		SubCategory string `json:"sub_category,omitempty"`
		MainSlug    string `json:"main_slug,omitempty"`
		SubSlug     string `json:"sub_slug,omitempty"`
		Main        string `json:"main,omitempty"`
		Sub         string `json:"sub,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewFieldError("non_field_errors", "Invalid payload.")
	}
	if req.Signal == 0 {
		return apperrors.NewFieldError("_signal", "This field is required.")
	}

	assignment, err := h.service.AssignCategory(c.UserContext(), req.Signal, service.CategoryRef{
		TermURL:  req.SubCategory,
		MainSlug: req.MainSlug,
		SubSlug:  req.SubSlug,
		MainName: req.Main,
		SubName:  req.Sub,
	}, actor(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewCategoryAssignmentResponse(assignment))
}

// GetCategory GET /signals/auth/category/:id/.
func (h *SignalResourcesHandler) GetCategory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	assignment, err := h.service.GetCategoryAssignment(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCategoryAssignmentResponse(assignment))
}

// ListPriorities GET /signals/auth/priority/.
func (h *SignalResourcesHandler) ListPriorities(c *fiber.Ctx) error {
	limit, offset := parseListQuery(c)
	priorities, count, err := h.service.ListPriorities(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}

	results := make([]*dto.PriorityResponse, 0, len(priorities))
	for i := range priorities {
		results = append(results, dto.NewPriorityResponse(&priorities[i]))
	}
	return c.JSON(dto.ListResponse{Count: count, Results: results})
}

// CreatePriority POST /signals/auth/priority/.
func (h *SignalResourcesHandler) CreatePriority(c *fiber.Ctx) error {
	var req struct {
		Signal   int64  `json:"_signal"`
		Priority string `json:"priority"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewFieldError("non_field_errors", "Invalid payload.")
	}
	if req.Signal == 0 {
		return apperrors.NewFieldError("_signal", "This field is required.")
	}

	priority, err := h.service.UpdatePriority(c.UserContext(), req.Signal, domain.PriorityLevel(req.Priority), actor(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewPriorityResponse(priority))
}

// GetPriority GET /signals/auth/priority/:id/.
func (h *SignalResourcesHandler) GetPriority(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	priority, err := h.service.GetPriority(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPriorityResponse(priority))
}

// ListLocations GET /signals/auth/location/.
func (h *SignalResourcesHandler) ListLocations(c *fiber.Ctx) error {
	limit, offset := parseListQuery(c)
	locations, count, err := h.service.ListLocations(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}

	results := make([]*dto.LocationResponse, 0, len(locations))
	for i := range locations {
		results = append(results, dto.NewLocationResponse(&locations[i]))
	}
	return c.JSON(dto.ListResponse{Count: count, Results: results})
}

// CreateLocation POST /signals/auth/location/.
func (h *SignalResourcesHandler) CreateLocation(c *fiber.Ctx) error {
	var req struct {
		Signal int64 `json:"_signal"`
		dto.LocationPayload
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewFieldError("non_field_errors", "Invalid payload.")
	}
	if req.Signal == 0 {
		return apperrors.NewFieldError("_signal", "This field is required.")
	}

	location, err := h.service.UpdateLocation(c.UserContext(), req.Signal, service.LocationInput{
		Stadsdeel:       domain.Stadsdeel(req.Stadsdeel),
		Address:         req.Address,
		AddressText:     req.AddressText,
		BuurtCode:       req.BuurtCode,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		ExtraProperties: req.ExtraProperties,
	}, actor(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewLocationResponse(location))
}

// GetLocation GET /signals/auth/location/:id/.
func (h *SignalResourcesHandler) GetLocation(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	location, err := h.service.GetLocation(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewLocationResponse(location))
}

func actor(c *fiber.Ctx) string {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return ""
	}
	return principal.User.Email
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewNotFound("signal")
	}
	return id, nil
}
