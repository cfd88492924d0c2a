package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-ops/grievance-service/internal/domain"
	apperrors "github.com/campus-ops/grievance-service/pkg/util"
)

// RequireUser ensures a student subject is authenticated.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeUser {
			return apperrors.NewPermissionDenied("student account required")
		}
		return c.Next()
	}
}

// RequireStaff ensures a staff subject is authenticated. Department-level
// authority is checked by the services against the staff directory, not here.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeStaff {
			return apperrors.NewPermissionDenied("staff account required")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures caller is authenticated (student or staff).
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
