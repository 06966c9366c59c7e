package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/signals-service/internal/api/dto"
	"github.com/spec-kit/signals-service/internal/service"
	apperrors "github.com/spec-kit/signals-service/pkg/util"
)

// SignalsHandler serves the public signal endpoints used by citizens.
type SignalsHandler struct {
	service *service.SignalService
}

// NewSignalsHandler constructs handler.
func NewSignalsHandler(signalService *service.SignalService) *SignalsHandler {
	return &SignalsHandler{service: signalService}
}

// Create POST /signals/signal/.
func (h *SignalsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSignalRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewFieldError("non_field_errors", "Invalid payload.")
	}

	signal, err := h.service.CreateSignal(c.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewSignalResponse(signal))
}

// Get GET /signals/signal/:signal_id/. Citizens only learn the
// workflow state; the remaining fields stay null.
func (h *SignalsHandler) Get(c *fiber.Ctx) error {
	signal, err := h.service.GetByPublicID(c.UserContext(), c.Params("signal_id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPublicSignalResponse(signal))
}

// AttachImage POST /signals/signal/image/. Accepted for asynchronous
// processing; a second upload on the same signal is rejected.
func (h *SignalsHandler) AttachImage(c *fiber.Ctx) error {
	var req dto.AttachImageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewFieldError("non_field_errors", "Invalid payload.")
	}
	if req.SignalID == "" {
		return apperrors.NewFieldError("signal_id", "This field is required.")
	}

	if err := h.service.AttachImage(c.UserContext(), req.SignalID, req.Image); err != nil {
		return err
	}
	return c.SendStatus(http.StatusAccepted)
}

// Index GET /signals/.
func (h *SignalsHandler) Index(c *fiber.Ctx) error {
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

// MethodNotAllowed serves the verbs the append-only resources reject.
func MethodNotAllowed(c *fiber.Ctx) error {
	return apperrors.NewMethodNotAllowed()
}

func parseListQuery(c *fiber.Ctx) (int, int) {
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
