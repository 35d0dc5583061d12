package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/servicenest/helpdesk/internal/domain"
	apperrors "github.com/servicenest/helpdesk/pkg/util"
)

// RequireRoles allows only principals holding one of the given roles. It
// must run after AuthMiddleware.Handle.
func RequireRoles(roles ...domain.UserRole) fiber.Handler {
	allowed := make(map[domain.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if _, ok := allowed[principal.User.Role]; !ok {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
