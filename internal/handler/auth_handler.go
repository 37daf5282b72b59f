package handler

import (
	"errors"
	"strings"

	"tooltrack/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AuthHandler serves the operator session endpoints under /auth.
type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
	Token       string `json:"token"`
}

// bindCredentials parses the body and checks the required fields. On a nil
// result the 400 response is already written and err is the write result.
func bindCredentials(c *fiber.Ctx, required ...string) (*credentials, error) {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return nil, badRequest(c, "Invalid JSON")
	}
	in.Email = strings.TrimSpace(in.Email)
	values := map[string]string{
		"email":        in.Email,
		"password":     in.Password,
		"old_password": in.OldPassword,
		"new_password": in.NewPassword,
		"token":        in.Token,
	}
	for _, name := range required {
		if values[name] == "" {
			return nil, badRequest(c, name+" is required")
		}
	}
	return &in, nil
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}

// POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	in, err := bindCredentials(c, "email", "password")
	if in == nil {
		return err
	}
	session, err := h.auth.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return unauthorized(c, err.Error())
	}
	return c.JSON(session)
}

// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	in, err := bindCredentials(c, "email", "old_password", "new_password")
	if in == nil {
		return err
	}
	err = h.auth.ResetPassword(c.UserContext(), in.Email, in.OldPassword, in.NewPassword)
	switch {
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrWrongPassword):
		return badRequest(c, err.Error())
	case err != nil:
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}

// POST /auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	in, err := bindCredentials(c, "token")
	if in == nil {
		return err
	}
	session, err := h.auth.ValidateToken(c.UserContext(), in.Token)
	if err != nil {
		return unauthorized(c, err.Error())
	}
	return c.JSON(session)
}

// POST /auth/heartbeat marks the calling operator online. Mounted behind
// RequireAuth, which puts the operator into the request context.
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	id, err := uuid.Parse(service.ActorFrom(c.UserContext()).ID)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	if err := h.auth.Heartbeat(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "online"})
}
