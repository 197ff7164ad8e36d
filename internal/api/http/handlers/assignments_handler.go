package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/training-service/internal/api/dto"
	"github.com/spec-kit/training-service/internal/auth"
	"github.com/spec-kit/training-service/internal/service"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

// AssignmentsHandler exposes supervisor-pushed scenarios.
type AssignmentsHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{assignments: assignmentService}
}

// Roles handles GET /assignments/roles.
func (h *AssignmentsHandler) Roles(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	roles, err := h.assignments.AssignableRoles(c.Context(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"roles": roles}})
}

// Staff handles GET /assignments/roles/:role/staff.
func (h *AssignmentsHandler) Staff(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	role, err := url.PathUnescape(c.Params("role"))
	if err != nil {
		return apperrors.NewValidationError("invalid role name", nil)
	}
	staff, err := h.assignments.StaffInRole(c.Context(), session, role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"role": role, "staff": staff}})
}

// Create handles POST /assignments.
func (h *AssignmentsHandler) Create(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	created, err := h.assignments.Create(c.Context(), session, service.CreateAssignmentInput{
		Role:        req.Role,
		Topic:       req.Topic,
		ContactType: req.ContactType,
		StaffEmails: req.StaffEmails,
		Model:       req.Model,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"assignments": created, "total": len(created)},
	})
}

// Mine handles GET /assignments/mine.
func (h *AssignmentsHandler) Mine(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	lists, err := h.assignments.ListMine(c.Context(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lists})
}

// Respond handles POST /assignments/:id/response.
func (h *AssignmentsHandler) Respond(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AssignmentResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	updated, err := h.assignments.SubmitResponse(c.Context(), session, c.Params("id"), req.Response, req.Model)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"id":        updated.ID,
			"completed": updated.Completed,
			"message":   "Response submitted and analyzed. Your supervisor will review it soon.",
		},
	})
}

// Delete handles DELETE /assignments/:id.
func (h *AssignmentsHandler) Delete(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.assignments.Delete(c.Context(), session, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}
