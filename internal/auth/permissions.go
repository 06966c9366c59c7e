package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/signals-service/pkg/util"
)

// RequirePermission gates a route group on an object-level permission
// codename. Superusers pass every check.
func RequirePermission(codename string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.User.HasPermission(codename) {
			return apperrors.NewForbidden("permission required: " + codename)
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a caller is logged in without checking
// specific permissions.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
