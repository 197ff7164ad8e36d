package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

// RequireSupervisor ensures the caller supervises at least one role or
// is an admin.
func RequireSupervisor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !session.IsSupervisor() {
			return apperrors.NewForbidden("supervisor access required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller is an administrator.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !session.IsAdmin {
			return apperrors.NewForbidden("admin access required")
		}
		return c.Next()
	}
}
