package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/training-service/internal/api/dto"
	"github.com/spec-kit/training-service/internal/service"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

// AdminHandler exposes maintenance tools over stored records.
type AdminHandler struct {
	scenarios *service.ScenarioService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(scenarioService *service.ScenarioService) *AdminHandler {
	return &AdminHandler{scenarios: scenarioService}
}

// RetroFixScores handles POST /admin/scores/retrofix.
func (h *AdminHandler) RetroFixScores(c *fiber.Ctx) error {
	report, err := h.scenarios.RetroFixScores(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// RerunAnalyses handles POST /admin/analyses/rerun.
func (h *AdminHandler) RerunAnalyses(c *fiber.Ctx) error {
	var req dto.RerunAnalysesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Targets) == 0 {
		return apperrors.NewValidationError("select at least one analysis to rerun", nil)
	}

	report, err := h.scenarios.RerunAnalyses(c.Context(), req.Targets, req.Model)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// DeleteResult handles DELETE /admin/results/:index.
func (h *AdminHandler) DeleteResult(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return apperrors.NewValidationError("invalid result index", nil)
	}

	if err := h.scenarios.DeleteResult(c.Context(), index); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"index": index, "deleted": true}})
}
