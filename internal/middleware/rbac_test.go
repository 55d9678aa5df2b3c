package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func rbacStatus(t *testing.T, role string) int {
	t.Helper()

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role != "" {
			c.Locals("user_role", role)
		}
		return c.Next()
	})
	app.Use(RequireRole(AuthRoleTeacher))
	app.Get("/marks", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/marks", nil))
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireRoleAllowsListedRoleAndAdmin(t *testing.T) {
	require.Equal(t, fiber.StatusOK, rbacStatus(t, "teacher"))
	require.Equal(t, fiber.StatusOK, rbacStatus(t, " Admin "))
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	require.Equal(t, fiber.StatusForbidden, rbacStatus(t, "student"))
	require.Equal(t, fiber.StatusUnauthorized, rbacStatus(t, ""))
}
