package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/training-service/internal/api/dto"
	"github.com/spec-kit/training-service/internal/auth"
	"github.com/spec-kit/training-service/internal/service"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

// ReviewsHandler exposes the supervisor review queue.
type ReviewsHandler struct {
	scenarios   *service.ScenarioService
	assignments *service.AssignmentService
}

// NewReviewsHandler constructs handler.
func NewReviewsHandler(scenarioService *service.ScenarioService, assignmentService *service.AssignmentService) *ReviewsHandler {
	return &ReviewsHandler{scenarios: scenarioService, assignments: assignmentService}
}

// Pending handles GET /reviews/pending: results awaiting review plus
// completed assignments not yet reviewed, both scoped to the caller's
// reporting line.
func (h *ReviewsHandler) Pending(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	results, err := h.scenarios.PendingResults(c.Context(), session)
	if err != nil {
		return err
	}
	assignments, err := h.assignments.PendingReview(c.Context(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"results":     results,
			"assignments": assignments,
			"total":       len(results) + len(assignments),
		},
	})
}

// ReviewResult handles POST /reviews/results/:index.
func (h *ReviewsHandler) ReviewResult(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return apperrors.NewValidationError("invalid result index", nil)
	}

	var req dto.ReviewResultRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.scenarios.Review(c.Context(), session, index, req.Notes); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"index": index, "reviewed": true}})
}

// ReviewAssignment handles POST /reviews/assignments/:id.
func (h *ReviewsHandler) ReviewAssignment(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ReviewAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	id := c.Params("id")
	if err := h.assignments.Review(c.Context(), session, id, req.Feedback); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "reviewed": true}})
}
