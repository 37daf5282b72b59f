package middleware

import (
	"strings"

	"tooltrack/internal/service"

	"github.com/gofiber/fiber/v2"
)

// DefaultActor puts the placeholder operator into the request context.
// RequireAuth replaces it on authenticated routes.
func DefaultActor(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if name != "" {
			c.SetUserContext(service.WithActor(c.UserContext(), service.Actor{Name: name}))
		}
		return c.Next()
	}
}

// RequireAuth validates the bearer token, enforces the single session and
// puts the operator into the request context for the services.
func RequireAuth(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		session, err := authService.ValidateToken(c.UserContext(), parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}

		user := session.User
		c.Locals("user_id", user.ID.String())
		c.Locals("user_email", user.Email)
		c.Locals("user_name", user.FullName)
		c.Locals("user_privileges", session.Privileges)
		c.SetUserContext(service.WithActor(c.UserContext(), service.Actor{
			ID:    user.ID.String(),
			Name:  user.FullName,
			Email: user.Email,
		}))

		return c.Next()
	}
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return RequireAnyPrivilege(requiredPrivilege)
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals("user_privileges").([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, userPriv := range privileges {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(requiredPrivileges, ", "),
		})
	}
}
