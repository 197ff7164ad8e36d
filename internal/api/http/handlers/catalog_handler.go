package handlers

import (
	"io"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/training-service/internal/api/dto"
	"github.com/spec-kit/training-service/internal/service"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

// CatalogHandler exposes role catalog and org chart management.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalogService}
}

// Get handles GET /catalog.
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	catalog, err := h.catalog.Get(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": catalog})
}

// Chart handles GET /orgchart.
func (h *CatalogHandler) Chart(c *fiber.Ctx) error {
	chart, err := h.catalog.Chart(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chart})
}

// CreateRole handles POST /admin/catalog/roles.
func (h *CatalogHandler) CreateRole(c *fiber.Ctx) error {
	var req dto.CreateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.catalog.CreateRole(c.Context(), req.Name); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"role": req.Name}})
}

// UpdateRole handles PUT /admin/catalog/roles/:role.
func (h *CatalogHandler) UpdateRole(c *fiber.Ctx) error {
	role, err := roleParam(c)
	if err != nil {
		return err
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	err = h.catalog.UpdateRole(c.Context(), role, service.UpdateRoleInput{
		Description:       req.Description,
		SystemInstruction: req.SystemInstruction,
		Supervisor:        req.Supervisor,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"role": role, "updated": true}})
}

// DeleteRole handles DELETE /admin/catalog/roles/:role.
func (h *CatalogHandler) DeleteRole(c *fiber.Ctx) error {
	role, err := roleParam(c)
	if err != nil {
		return err
	}

	if err := h.catalog.DeleteRole(c.Context(), role); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"role": role, "deleted": true}})
}

// UploadDescription handles POST /admin/catalog/roles/:role/description.
// The body is a multipart form with a "file" part holding the PDF.
func (h *CatalogHandler) UploadDescription(c *fiber.Ctx) error {
	role, err := roleParam(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("a PDF file is required", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("could not open uploaded file", nil)
	}
	defer file.Close()

	pdf, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewValidationError("could not read uploaded file", nil)
	}

	text, err := h.catalog.UploadDescription(c.Context(), role, pdf)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"role": role, "description": text}})
}

// AddEdge handles POST /admin/catalog/edges.
func (h *CatalogHandler) AddEdge(c *fiber.Ctx) error {
	var req dto.EdgeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.catalog.AddEdge(c.Context(), req.Source, req.Target); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"source": req.Source, "target": req.Target},
	})
}

// RemoveEdge handles DELETE /admin/catalog/edges.
func (h *CatalogHandler) RemoveEdge(c *fiber.Ctx) error {
	var req dto.EdgeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.catalog.RemoveEdge(c.Context(), req.Source, req.Target); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"removed": true}})
}

// roleParam decodes the :role path segment, which may carry spaces.
func roleParam(c *fiber.Ctx) (string, error) {
	role, err := url.PathUnescape(c.Params("role"))
	if err != nil || role == "" {
		return "", apperrors.NewValidationError("invalid role name", nil)
	}
	return role, nil
}
