package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/training-service/internal/api/dto"
	"github.com/spec-kit/training-service/internal/service"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

// AnalysisHandler exposes call analysis and tone polishing.
type AnalysisHandler struct {
	analysis *service.AnalysisService
}

// NewAnalysisHandler constructs handler.
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysisService}
}

// Transcript handles POST /analysis/call.
func (h *AnalysisHandler) Transcript(c *fiber.Ctx) error {
	var req dto.TranscriptAnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	outcome, err := h.analysis.AnalyzeTranscript(c.Context(), service.CallAnalysisInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      req.Role,
		Model:     req.Model,
	}, req.Transcript)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": outcome})
}

// Audio handles POST /analysis/call/audio. The request is a multipart
// form: an "audio" file part plus the staff identity fields.
func (h *AnalysisHandler) Audio(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return apperrors.NewValidationError("an audio file is required", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("could not open uploaded file", nil)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewValidationError("could not read uploaded file", nil)
	}

	outcome, err := h.analysis.AnalyzeAudio(c.Context(), service.CallAnalysisInput{
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Email:     c.FormValue("email"),
		Role:      c.FormValue("role"),
		Model:     c.FormValue("model"),
	}, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": outcome})
}

// Polish handles POST /analysis/polish.
func (h *AnalysisHandler) Polish(c *fiber.Ctx) error {
	var req dto.PolishToneRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	polished, err := h.analysis.PolishTone(c.Context(), req.Text, req.Model)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"text": polished}})
}
