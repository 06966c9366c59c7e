package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/signals-service/internal/reporting"
	apperrors "github.com/spec-kit/signals-service/pkg/util"
)

// ReportsHandler serves the reporting indicators.
type ReportsHandler struct {
	registry *reporting.Registry
}

// NewReportsHandler constructs handler.
func NewReportsHandler(registry *reporting.Registry) *ReportsHandler {
	return &ReportsHandler{registry: registry}
}

// List GET /signals/v1/private/reports/.
func (h *ReportsHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"results": h.registry.Codes()})
}

// Get GET /signals/v1/private/reports/:code. The window defaults to
// the trailing seven days.
func (h *ReportsHandler) Get(c *fiber.Ctx) error {
	code := c.Params("code")

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -7)
	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperrors.NewFieldError("start", "Datetime has wrong format. Use RFC 3339.")
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperrors.NewFieldError("end", "Datetime has wrong format. Use RFC 3339.")
		}
		end = parsed
	}
	if !end.After(start) {
		return apperrors.NewFieldError("end", "End must come after start.")
	}

	value, err := h.registry.Compute(c.UserContext(), code, reporting.Window{Start: start, End: end})
	if err != nil {
		if errors.Is(err, reporting.ErrUnknownIndicator) {
			return apperrors.NewNotFound("indicator")
		}
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{
		"code":  code,
		"start": start,
		"end":   end,
		"value": value,
	})
}
