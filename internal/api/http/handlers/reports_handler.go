package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/training-service/internal/auth"
	"github.com/spec-kit/training-service/internal/service"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

// ReportsHandler exposes the score dashboard.
type ReportsHandler struct {
	reporting *service.ReportingService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportingService *service.ReportingService) *ReportsHandler {
	return &ReportsHandler{reporting: reportingService}
}

// Overview handles GET /reports/overview. Optional "role" and "email"
// query parameters narrow the dashboard within the caller's scope.
func (h *ReportsHandler) Overview(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	overview, err := h.reporting.Overview(c.Context(), session, service.OverviewFilter{
		Role:  c.Query("role"),
		Email: c.Query("email"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": overview})
}
