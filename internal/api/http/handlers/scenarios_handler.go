package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/training-service/internal/api/dto"
	"github.com/spec-kit/training-service/internal/auth"
	"github.com/spec-kit/training-service/internal/service"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

// ScenariosHandler exposes the practice simulator.
type ScenariosHandler struct {
	scenarios *service.ScenarioService
}

// NewScenariosHandler constructs handler.
func NewScenariosHandler(scenarioService *service.ScenarioService) *ScenariosHandler {
	return &ScenariosHandler{scenarios: scenarioService}
}

// Models handles GET /models.
func (h *ScenariosHandler) Models(c *fiber.Ctx) error {
	models, err := h.scenarios.Models(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"models": models}})
}

// Generate handles POST /scenarios/generate.
func (h *ScenariosHandler) Generate(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.GenerateScenarioRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	out, err := h.scenarios.Generate(c.Context(), session, service.GenerateInput{
		Role:            req.Role,
		Difficulty:      req.Difficulty,
		Model:           req.Model,
		LastScenario:    req.LastScenario,
		BuildingHistory: req.BuildingHistory,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": out})
}

// Submit handles POST /scenarios/submit. The evaluation stays hidden
// from the submitter; only a confirmation returns.
func (h *ScenariosHandler) Submit(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.SubmitScenarioRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	submitted, err := h.scenarios.Submit(c.Context(), session, service.SubmitInput{
		Role:       req.Role,
		Difficulty: req.Difficulty,
		Scenario:   req.Scenario,
		Response:   req.Response,
		Model:      req.Model,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"index":   submitted.Index,
			"status":  "pending",
			"message": "Response submitted to your supervisor for review.",
		},
	})
}
