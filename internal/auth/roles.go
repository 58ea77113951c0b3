package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/opsdesk/internal/domain"
	apperrors "github.com/opsdesk/opsdesk/pkg/util"
)

// RequireRole ensures the actor holds one of the allowed roles. With no
// roles given it only requires authentication.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[actor.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireStaff ensures the actor is admin or employee.
func RequireStaff() fiber.Handler {
	return RequireRole(domain.RoleAdmin, domain.RoleEmployee)
}

// RequireTenant ensures the actor is client or client_user.
func RequireTenant() fiber.Handler {
	return RequireRole(domain.RoleClient, domain.RoleClientUser)
}
