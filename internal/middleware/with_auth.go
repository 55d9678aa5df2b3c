package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/marktrack-api/internal/utils"
)

// Roles carried in the token role claim.
const (
	AuthRoleAny     = "any"
	AuthRoleAdmin   = "admin"
	AuthRoleTeacher = "teacher"
	AuthRoleStudent = "student"
)

// AuthOptions configures WithAuth. Every role except AuthRoleAny requires an
// authenticated user; AllowAnonymous only applies to AuthRoleAny.
type AuthOptions struct {
	Role           string
	AllowAnonymous bool
}

// WithAuth guards a single handler. Teacher routes also admit admins, while
// student routes are reserved for students.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := normalizeRoleValue(opts.Role)
	if role == "" {
		role = AuthRoleAny
	}
	anonymous := opts.AllowAnonymous && role == AuthRoleAny

	return func(c *fiber.Ctx) error {
		if c.Locals("user_id") == nil {
			if anonymous {
				return handler(c)
			}
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		if !roleSatisfies(normalizeRoleValue(c.Locals("user_role")), role) {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}
		return handler(c)
	}
}

func roleSatisfies(current, required string) bool {
	switch required {
	case AuthRoleAny:
		return true
	case AuthRoleTeacher:
		return current == AuthRoleTeacher || current == AuthRoleAdmin
	default:
		return current == required
	}
}
