package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spec-kit/training-service/internal/domain"
	"github.com/spec-kit/training-service/internal/llm"
	"github.com/spec-kit/training-service/internal/prompt"
	"github.com/spec-kit/training-service/internal/repository"
	"github.com/spec-kit/training-service/internal/scoring"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

// Generation parameters for call analysis and tone polishing.
const (
	callAnalysisTemperature = 0.7
	tonePolishTemperature   = 0.6
	tonePolishMaxTokens     = 500

	// Only the first chunk of an audio analysis is stored as the
	// record's response text; the full analysis lives in evaluation.
	audioResponseLimit = 1000
)

var allowedAudioMIMETypes = map[string]bool{
	"audio/mp3":  true,
	"audio/mp4":  true,
	"audio/mpeg": true,
	"audio/mpga": true,
	"audio/m4a":  true,
	"audio/wav":  true,
	"audio/webm": true,
	"audio/flac": true,
}

// CallAnalysisInput identifies the staff member a recorded call
// belongs to. The subject need not hold an account.
type CallAnalysisInput struct {
	FirstName string
	LastName  string
	Email     string
	Role      string
	Model     string
}

// CallAnalysisOutcome is a stored call analysis.
type CallAnalysisOutcome struct {
	Index        int    `json:"index"`
	Analysis     string `json:"analysis"`
	OverallScore string `json:"overall_score"`
}

// AnalysisService evaluates real customer calls against the rubric,
// outside the review workflow.
type AnalysisService struct {
	catalog   repository.CatalogRepository
	results   repository.ResultRepository
	generator llm.Generator
	builder   *prompt.Builder
}

// AnalysisDependencies encapsulates requirements for the analysis service.
type AnalysisDependencies struct {
	CatalogRepo repository.CatalogRepository
	ResultRepo  repository.ResultRepository
	Generator   llm.Generator
	Builder     *prompt.Builder
}

// NewAnalysisService builds the service.
func NewAnalysisService(deps AnalysisDependencies) *AnalysisService {
	return &AnalysisService{
		catalog:   deps.CatalogRepo,
		results:   deps.ResultRepo,
		generator: deps.Generator,
		builder:   deps.Builder,
	}
}

func (s *AnalysisService) validate(ctx context.Context, input CallAnalysisInput) (domain.Role, domain.Catalog, error) {
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return domain.Role{}, domain.Catalog{}, apperrors.NewValidationError("first and last name are required", nil)
	}
	catalog, err := s.catalog.Get(ctx)
	if err != nil {
		return domain.Role{}, domain.Catalog{}, apperrors.NewPersistenceError("load catalog", err)
	}
	roleInfo, ok := catalog.StaffRoles[input.Role]
	if !ok {
		return domain.Role{}, domain.Catalog{}, apperrors.NewNotFound("role", map[string]any{"role": input.Role})
	}
	return roleInfo, catalog, nil
}

func (s *AnalysisService) store(ctx context.Context, input CallAnalysisInput, difficulty, scenario, response, analysis string) (*CallAnalysisOutcome, error) {
	// Call analyses skip the review queue, so no status is set.
	result := domain.Result{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Timestamp:    time.Now().Format(time.RFC3339),
		Role:         input.Role,
		Difficulty:   difficulty,
		Scenario:     scenario,
		UserResponse: response,
		Evaluation:   analysis,
		OverallScore: scoring.ExtractLine(analysis),
	}
	index, err := s.results.Append(ctx, result)
	if err != nil {
		return nil, apperrors.NewPersistenceError("save results", err)
	}
	return &CallAnalysisOutcome{
		Index:        index,
		Analysis:     analysis,
		OverallScore: result.OverallScore,
	}, nil
}

// AnalyzeTranscript scores a written call transcript against the
// rubric and stores the outcome as a call-analysis record.
func (s *AnalysisService) AnalyzeTranscript(ctx context.Context, input CallAnalysisInput, transcript string) (*CallAnalysisOutcome, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, apperrors.NewValidationError("transcript is required", nil)
	}
	roleInfo, catalog, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	analysis, err := s.generator.Generate(ctx, llm.Request{
		Kind:        llm.KindCallAnalysis,
		Model:       input.Model,
		Prompt:      s.builder.CallAnalysis(input.Role, roleInfo, catalog.OrgChart.Edges, input.FirstName, input.LastName, transcript),
		Temperature: callAnalysisTemperature,
		MaxTokens:   longFormMaxTokens,
	})
	if err != nil {
		return nil, apperrors.NewExternalServiceError("analyze transcript", err)
	}

	scenario := fmt.Sprintf("Phone Call Transcript (Length: %d chars)", len(transcript))
	return s.store(ctx, input, domain.DifficultyCallAnalysis, scenario, transcript, analysis)
}

// AnalyzeAudio scores a call recording. The audio travels to the model
// inline alongside the analysis prompt.
func (s *AnalysisService) AnalyzeAudio(ctx context.Context, input CallAnalysisInput, filename, mimeType string, audio []byte) (*CallAnalysisOutcome, error) {
	if len(audio) == 0 {
		return nil, apperrors.NewValidationError("audio file is required", nil)
	}
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}
	if !allowedAudioMIMETypes[mimeType] {
		return nil, apperrors.NewValidationError("unsupported audio format", map[string]any{"mime_type": mimeType})
	}
	roleInfo, catalog, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	analysis, err := s.generator.Generate(ctx, llm.Request{
		Kind:   llm.KindCallAnalysis,
		Model:  input.Model,
		Prompt: s.builder.AudioAnalysis(input.Role, roleInfo, catalog.OrgChart.Edges, input.FirstName, input.LastName),
		Attachment: &llm.Attachment{
			MIMEType: mimeType,
			Data:     audio,
		},
		Temperature: callAnalysisTemperature,
		MaxTokens:   longFormMaxTokens,
	})
	if err != nil {
		return nil, apperrors.NewExternalServiceError("analyze recording", err)
	}

	response := clipOnRuneBoundary(analysis, audioResponseLimit)
	scenario := fmt.Sprintf("Phone Call Recording (%s)", filename)
	return s.store(ctx, input, domain.DifficultyCallAnalysisAudio, scenario, response, analysis)
}

// PolishTone rewrites a drafted response in a more professional,
// empathetic register without changing its content.
func (s *AnalysisService) PolishTone(ctx context.Context, text, model string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewValidationError("text is required", nil)
	}

	polished, err := s.generator.Generate(ctx, llm.Request{
		Kind:        llm.KindTonePolish,
		Model:       model,
		Prompt:      s.builder.TonePolish(text),
		Temperature: tonePolishTemperature,
		MaxTokens:   tonePolishMaxTokens,
	})
	if err != nil {
		return "", apperrors.NewExternalServiceError("polish tone", err)
	}
	polished = strings.TrimSpace(polished)
	if polished == "" {
		return text, nil
	}
	return polished, nil
}

// clipOnRuneBoundary shortens s to at most limit bytes without
// splitting a multi-byte rune.
func clipOnRuneBoundary(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
