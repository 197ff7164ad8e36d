package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/training-service/internal/domain"
	"github.com/spec-kit/training-service/internal/events"
	"github.com/spec-kit/training-service/internal/llm"
	"github.com/spec-kit/training-service/internal/prompt"
	"github.com/spec-kit/training-service/internal/repository"
	"github.com/spec-kit/training-service/internal/scoring"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

// Generation parameters per call site. Scenario generation runs hot
// for variety; evaluation runs cooler for consistency.
const (
	scenarioTemperature   = 0.9
	evaluationTemperature = 0.5
	longFormMaxTokens     = 15000
)

// GenerateInput describes one scenario request. LastScenario and
// BuildingHistory feed the repetition guards; the client keeps them
// across a practice session.
type GenerateInput struct {
	Role            string
	Difficulty      string
	Model           string
	LastScenario    string
	BuildingHistory []string
}

// GeneratedScenario is a fresh scenario plus the building it mentions,
// when one was detected.
type GeneratedScenario struct {
	Scenario string `json:"scenario"`
	Building string `json:"building,omitempty"`
}

// SubmitInput carries one completed attempt for evaluation.
type SubmitInput struct {
	Role       string
	Difficulty string
	Scenario   string
	Response   string
	Model      string
}

// SubmittedResult is the stored outcome of a submission.
type SubmittedResult struct {
	Index        int    `json:"index"`
	Evaluation   string `json:"evaluation"`
	OverallScore string `json:"overall_score"`
}

// PendingResult pairs a pending record with its stable index in the
// results document, which the review call addresses it by.
type PendingResult struct {
	Index  int           `json:"index"`
	Result domain.Result `json:"result"`
}

// RetroFixReport counts records whose stored score was repaired.
type RetroFixReport struct {
	Results     int `json:"results"`
	Assignments int `json:"assignments"`
}

// RerunReport summarizes a batch re-evaluation.
type RerunReport struct {
	Results     int `json:"results"`
	Assignments int `json:"assignments"`
	Skipped     int `json:"skipped"`
	Errors      int `json:"errors"`
}

// ScenarioService drives the practice simulator: scenario generation,
// response evaluation, and the supervisor review queue over results.
type ScenarioService struct {
	catalog     repository.CatalogRepository
	results     repository.ResultRepository
	assignments repository.AssignmentRepository
	auth        *AuthService
	generator   llm.Generator
	builder     *prompt.Builder
	dispatcher  events.Dispatcher
}

// ScenarioDependencies encapsulates requirements for the scenario service.
type ScenarioDependencies struct {
	CatalogRepo    repository.CatalogRepository
	ResultRepo     repository.ResultRepository
	AssignmentRepo repository.AssignmentRepository
	Auth           *AuthService
	Generator      llm.Generator
	Builder        *prompt.Builder
	Dispatcher     events.Dispatcher
}

// NewScenarioService builds the service.
func NewScenarioService(deps ScenarioDependencies) *ScenarioService {
	return &ScenarioService{
		catalog:     deps.CatalogRepo,
		results:     deps.ResultRepo,
		assignments: deps.AssignmentRepo,
		auth:        deps.Auth,
		generator:   deps.Generator,
		builder:     deps.Builder,
		dispatcher:  deps.Dispatcher,
	}
}

// Models lists the generation models available to the configured key.
func (s *ScenarioService) Models(ctx context.Context) ([]string, error) {
	models, err := s.generator.ListModels(ctx)
	if err != nil {
		return nil, apperrors.NewExternalServiceError("list models", err)
	}
	return models, nil
}

// roleFor validates the practice role and returns its catalog entry.
// Non-admins may only practice their own position.
func (s *ScenarioService) roleFor(ctx context.Context, session *domain.Session, role string) (domain.Role, domain.Catalog, error) {
	if !session.IsAdmin && role != session.Position {
		return domain.Role{}, domain.Catalog{}, apperrors.NewForbidden("you can only practice scenarios for your own position")
	}
	catalog, err := s.catalog.Get(ctx)
	if err != nil {
		return domain.Role{}, domain.Catalog{}, apperrors.NewPersistenceError("load catalog", err)
	}
	roleInfo, ok := catalog.StaffRoles[role]
	if !ok {
		return domain.Role{}, domain.Catalog{}, apperrors.NewNotFound("role", map[string]any{"role": role})
	}
	return roleInfo, catalog, nil
}

// Generate produces a fresh practice scenario for the given role and
// difficulty.
func (s *ScenarioService) Generate(ctx context.Context, session *domain.Session, input GenerateInput) (*GeneratedScenario, error) {
	if !difficultyAllowed(input.Difficulty) {
		return nil, apperrors.NewValidationError("unknown difficulty",
			map[string]any{"difficulty": input.Difficulty, "allowed": domain.Difficulties})
	}
	roleInfo, catalog, err := s.roleFor(ctx, session, input.Role)
	if err != nil {
		return nil, err
	}

	text, err := s.generator.Generate(ctx, llm.Request{
		Kind:        llm.KindScenario,
		Model:       input.Model,
		Prompt:      s.builder.Scenario(input.Role, roleInfo, catalog.OrgChart.Edges, input.Difficulty, input.LastScenario, input.BuildingHistory),
		Temperature: scenarioTemperature,
		MaxTokens:   longFormMaxTokens,
	})
	if err != nil {
		return nil, apperrors.NewExternalServiceError("generate scenario", err)
	}
	scenario := strings.TrimSpace(text)
	if scenario == "" {
		return nil, apperrors.NewExternalServiceError("generate scenario", fmt.Errorf("model returned empty scenario"))
	}

	return &GeneratedScenario{
		Scenario: scenario,
		Building: prompt.ExtractBuilding(scenario),
	}, nil
}

// Submit evaluates a response against its scenario and stores the
// attempt as a pending-review result. Nothing is persisted when the
// evaluation call fails.
func (s *ScenarioService) Submit(ctx context.Context, session *domain.Session, input SubmitInput) (*SubmittedResult, error) {
	if strings.TrimSpace(input.Scenario) == "" || strings.TrimSpace(input.Response) == "" {
		return nil, apperrors.NewValidationError("scenario and response are required", nil)
	}
	if !difficultyAllowed(input.Difficulty) {
		return nil, apperrors.NewValidationError("unknown difficulty",
			map[string]any{"difficulty": input.Difficulty, "allowed": domain.Difficulties})
	}
	roleInfo, catalog, err := s.roleFor(ctx, session, input.Role)
	if err != nil {
		return nil, err
	}

	evaluation, err := s.generator.Generate(ctx, llm.Request{
		Kind:        llm.KindEvaluation,
		Model:       input.Model,
		Prompt:      s.builder.Evaluation(input.Role, roleInfo, catalog.OrgChart.Edges, input.Scenario, input.Response),
		Temperature: evaluationTemperature,
		MaxTokens:   longFormMaxTokens,
	})
	if err != nil {
		return nil, apperrors.NewExternalServiceError("evaluate response", err)
	}

	result := domain.Result{
		FirstName:    session.FirstName,
		LastName:     session.LastName,
		Email:        session.Email,
		Timestamp:    time.Now().Format(time.RFC3339),
		Role:         input.Role,
		Difficulty:   input.Difficulty,
		Scenario:     input.Scenario,
		UserResponse: input.Response,
		Evaluation:   evaluation,
		OverallScore: scoring.ExtractLine(evaluation),
		Status:       domain.ReviewStatusPending,
	}
	index, err := s.results.Append(ctx, result)
	if err != nil {
		return nil, apperrors.NewPersistenceError("save results", err)
	}

	s.publish(ctx, events.EventResultSubmitted, session.Email, events.ResultSubmittedPayload{
		Email:       session.Email,
		Role:        input.Role,
		Difficulty:  input.Difficulty,
		ResultIndex: index,
	})

	return &SubmittedResult{
		Index:        index,
		Evaluation:   evaluation,
		OverallScore: result.OverallScore,
	}, nil
}

// PendingResults returns the pending-review results visible to the
// session, indexed for the review call.
func (s *ScenarioService) PendingResults(ctx context.Context, session *domain.Session) ([]PendingResult, error) {
	visible, err := s.auth.VisibleSubmitters(ctx, session)
	if err != nil {
		return nil, err
	}
	results, err := s.results.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load results", err)
	}

	pending := make([]PendingResult, 0)
	for i, result := range results {
		if result.Status == domain.ReviewStatusPending && visible[result.Email] {
			pending = append(pending, PendingResult{Index: i, Result: result})
		}
	}
	return pending, nil
}

// Review marks a pending result reviewed. A result leaves pending
// exactly once; re-reviewing is a conflict.
func (s *ScenarioService) Review(ctx context.Context, session *domain.Session, index int, notes string) error {
	visible, err := s.auth.VisibleSubmitters(ctx, session)
	if err != nil {
		return err
	}

	var reviewedEmail string
	err = s.results.UpdateAt(ctx, index, func(result *domain.Result) error {
		if !visible[result.Email] {
			return apperrors.NewForbidden("this submission is outside your reporting line")
		}
		if result.Status != domain.ReviewStatusPending {
			return apperrors.NewConflict("result is not pending review", map[string]any{"index": index})
		}
		now := time.Now().Format(time.RFC3339)
		result.Status = domain.ReviewStatusCompleted
		result.ReviewedBy = &session.Email
		result.ReviewDate = &now
		result.SupervisorNotes = notes
		reviewedEmail = result.Email
		return nil
	})
	if err != nil {
		var domainErr *apperrors.DomainError
		if apperrors.AsDomainError(err, &domainErr) {
			return domainErr
		}
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("result", map[string]any{"index": index})
		}
		return apperrors.NewPersistenceError("save results", err)
	}

	s.publish(ctx, events.EventResultReviewed, session.Email, events.ResultReviewedPayload{
		Email:       reviewedEmail,
		ReviewedBy:  session.Email,
		ResultIndex: index,
	})
	return nil
}

// DeleteResult removes a result by index. Admin only; enforced at the
// transport layer.
func (s *ScenarioService) DeleteResult(ctx context.Context, index int) error {
	if err := s.results.DeleteAt(ctx, index); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("result", map[string]any{"index": index})
		}
		return apperrors.NewPersistenceError("save results", err)
	}
	return nil
}

// RetroFixScores re-parses every stored evaluation and repairs scores
// that are missing, invalid, or stale.
func (s *ScenarioService) RetroFixScores(ctx context.Context) (*RetroFixReport, error) {
	report := &RetroFixReport{}

	fixedResults, err := s.results.MutateAll(ctx, func(results []domain.Result) (int, error) {
		changed := 0
		for i := range results {
			parsed, ok := scoring.Parse(results[i].Evaluation)
			if ok && (!scoring.IsValid(results[i].OverallScore) || results[i].OverallScore != parsed) {
				results[i].OverallScore = parsed
				changed++
			}
		}
		return changed, nil
	})
	if err != nil {
		return nil, apperrors.NewPersistenceError("save results", err)
	}
	report.Results = fixedResults

	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load assignments", err)
	}
	for _, assignment := range assignments {
		parsed, ok := scoring.Parse(assignment.AIAnalysis)
		if !ok || (scoring.IsValid(assignment.OverallScore) && assignment.OverallScore == parsed) {
			continue
		}
		score := parsed
		err := s.assignments.Update(ctx, assignment.ID, func(a *domain.Assignment) error {
			a.OverallScore = score
			return nil
		})
		if err != nil {
			return nil, apperrors.NewPersistenceError("save assignments", err)
		}
		report.Assignments++
	}
	return report, nil
}

// RerunAnalyses re-evaluates selected records with the current model.
// Targets are "result:<index>" or "assignment:<id>". Records with a
// missing scenario or response are skipped; model failures count as
// errors without aborting the batch.
func (s *ScenarioService) RerunAnalyses(ctx context.Context, targets []string, model string) (*RerunReport, error) {
	report := &RerunReport{}
	for _, target := range targets {
		kind, ref, ok := strings.Cut(target, ":")
		if !ok {
			report.Skipped++
			continue
		}
		switch kind {
		case "assignment":
			s.rerunAssignment(ctx, ref, model, report)
		case "result":
			s.rerunResult(ctx, ref, model, report)
		default:
			report.Skipped++
		}
	}
	return report, nil
}

func (s *ScenarioService) rerunResult(ctx context.Context, ref, model string, report *RerunReport) {
	index, err := strconv.Atoi(ref)
	if err != nil || index < 0 {
		report.Skipped++
		return
	}
	results, err := s.results.List(ctx)
	if err != nil || index >= len(results) {
		report.Skipped++
		return
	}
	record := results[index]
	if record.Scenario == "" || record.UserResponse == "" {
		report.Skipped++
		return
	}

	analysis, err := s.reevaluate(ctx, orDefault(record.Role, "Unknown Role"), record.Scenario, record.UserResponse, model)
	if err != nil {
		report.Errors++
		return
	}
	err = s.results.UpdateAt(ctx, index, func(result *domain.Result) error {
		result.Evaluation = analysis
		if parsed, ok := scoring.Parse(analysis); ok {
			result.OverallScore = parsed
		}
		return nil
	})
	if err != nil {
		report.Errors++
		return
	}
	report.Results++
}

func (s *ScenarioService) rerunAssignment(ctx context.Context, id, model string, report *RerunReport) {
	assignment, err := s.assignments.Get(ctx, id)
	if err != nil {
		report.Skipped++
		return
	}
	response := ""
	if assignment.Response != nil {
		response = *assignment.Response
	}
	if assignment.Scenario == "" || response == "" {
		report.Skipped++
		return
	}

	role := orDefault(assignment.AssignedRole, orDefault(assignment.StaffPosition, "Unknown Role"))
	analysis, err := s.reevaluate(ctx, role, assignment.Scenario, response, model)
	if err != nil {
		report.Errors++
		return
	}
	err = s.assignments.Update(ctx, id, func(a *domain.Assignment) error {
		a.AIAnalysis = analysis
		if parsed, ok := scoring.Parse(analysis); ok {
			a.OverallScore = parsed
		}
		return nil
	})
	if err != nil {
		report.Errors++
		return
	}
	report.Assignments++
}

func (s *ScenarioService) reevaluate(ctx context.Context, role, scenario, response, model string) (string, error) {
	text, err := s.generator.Generate(ctx, llm.Request{
		Kind:        llm.KindEvaluation,
		Model:       model,
		Prompt:      s.builder.Reevaluation(role, scenario, response),
		Temperature: evaluationTemperature,
		MaxTokens:   longFormMaxTokens,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "Unable to analyze response", nil
	}
	return text, nil
}

func (s *ScenarioService) publish(ctx context.Context, eventType events.EventType, actor string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func difficultyAllowed(difficulty string) bool {
	for _, d := range domain.Difficulties {
		if d == difficulty {
			return true
		}
	}
	return false
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
