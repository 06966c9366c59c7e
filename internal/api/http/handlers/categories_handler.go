package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/signals-service/internal/service"
)

// CategoriesHandler serves the public category vocabulary.
type CategoriesHandler struct {
	service *service.CategoryService
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categoryService *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{service: categoryService}
}

// ListTerms GET /signals/v1/public/terms/categories.
func (h *CategoriesHandler) ListTerms(c *fiber.Ctx) error {
	terms, err := h.service.ListTerms(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"results": terms})
}

// GetMainTerm GET /signals/v1/public/terms/categories/:slug.
func (h *CategoriesHandler) GetMainTerm(c *fiber.Ctx) error {
	term, err := h.service.GetMainTerm(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(term)
}

// GetSubTerm GET /signals/v1/public/terms/categories/:slug/sub_categories/:sub_slug.
func (h *CategoriesHandler) GetSubTerm(c *fiber.Ctx) error {
	term, err := h.service.GetSubTerm(c.UserContext(), c.Params("slug"), c.Params("sub_slug"))
	if err != nil {
		return err
	}
	return c.JSON(term)
}
