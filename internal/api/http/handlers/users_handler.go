package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/training-service/internal/api/dto"
	"github.com/spec-kit/training-service/internal/auth"
	"github.com/spec-kit/training-service/internal/service"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

// UsersHandler exposes admin account management.
type UsersHandler struct {
	users *service.UserService
	auth  *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService, authService *service.AuthService) *UsersHandler {
	return &UsersHandler{users: userService, auth: authService}
}

// List handles GET /admin/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	accounts, err := h.users.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"users": accounts, "total": len(accounts)}})
}

// Create handles POST /admin/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	err := h.users.Create(c.Context(), session.Email, service.CreateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Position:  req.Position,
		Password:  req.Password,
		IsAdmin:   req.IsAdmin,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"email": req.Email, "position": req.Position},
	})
}

// Update handles PUT /admin/users/:email.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	email := c.Params("email")

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	err := h.users.Update(c.Context(), email, service.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Position:  req.Position,
		IsAdmin:   req.IsAdmin,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"email": email, "updated": true}})
}

// Delete handles DELETE /admin/users/:email.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	email := c.Params("email")

	if err := h.users.Delete(c.Context(), session.Email, email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"email": email, "deleted": true}})
}

// ResetPassword handles POST /admin/users/:email/password/reset. The
// response carries the new password exactly once so the admin can
// hand it over.
func (h *UsersHandler) ResetPassword(c *fiber.Ctx) error {
	email := c.Params("email")

	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	password, err := h.auth.ResetPassword(c.Context(), email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"email": email, "password": password}})
}
