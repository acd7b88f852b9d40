package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-tracker/internal/domain"
)

// RequireRole ensures the caller holds one of the allowed roles. With no
// arguments any authenticated member passes.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Profile == nil {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Profile.Role]; !exists {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// RequireCapability gates a route on a role capability check.
func RequireCapability(check func(domain.Role) bool, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Profile == nil {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if !check(principal.Profile.Role) {
			return fiber.NewError(http.StatusForbidden, message)
		}
		return c.Next()
	}
}

// RequirePriorityControl limits priority toggling to managers and logistics.
func RequirePriorityControl() fiber.Handler {
	return RequireCapability(domain.Role.CanSetPriority, "priority control requires manager or logistics role")
}

// RequireReassign limits reassignment to managers and head technicians.
func RequireReassign() fiber.Handler {
	return RequireCapability(domain.Role.CanReassign, "reassignment requires manager or head technician role")
}

// RequireRoleManagement limits role changes to managers and head technicians.
func RequireRoleManagement() fiber.Handler {
	return RequireCapability(domain.Role.CanManageRoles, "role management requires manager or head technician role")
}

// RequireMasterData limits master-data edits to managers.
func RequireMasterData() fiber.Handler {
	return RequireCapability(domain.Role.CanEditMasterData, "master data requires manager role")
}

// RequireReset limits destructive resets to managers.
func RequireReset() fiber.Handler {
	return RequireCapability(domain.Role.CanResetDatabase, "database reset requires manager role")
}
