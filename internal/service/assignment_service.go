package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/training-service/internal/domain"
	"github.com/spec-kit/training-service/internal/events"
	"github.com/spec-kit/training-service/internal/llm"
	"github.com/spec-kit/training-service/internal/orgchart"
	"github.com/spec-kit/training-service/internal/prompt"
	"github.com/spec-kit/training-service/internal/repository"
	"github.com/spec-kit/training-service/internal/scoring"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

// CreateAssignmentInput describes one fan-out assignment batch. The
// scenario is generated once and delivered to every listed address.
type CreateAssignmentInput struct {
	Role        string
	Topic       string
	ContactType string
	StaffEmails []string
	Model       string
}

// AssignmentLists splits a staff member's assignments by completion.
type AssignmentLists struct {
	Pending   []domain.Assignment `json:"pending"`
	Completed []domain.Assignment `json:"completed"`
}

// AssignmentService manages supervisor-pushed training scenarios.
type AssignmentService struct {
	catalog     repository.CatalogRepository
	users       repository.UserRepository
	assignments repository.AssignmentRepository
	auth        *AuthService
	generator   llm.Generator
	builder     *prompt.Builder
	dispatcher  events.Dispatcher
}

// AssignmentDependencies encapsulates requirements for the assignment service.
type AssignmentDependencies struct {
	CatalogRepo    repository.CatalogRepository
	UserRepo       repository.UserRepository
	AssignmentRepo repository.AssignmentRepository
	Auth           *AuthService
	Generator      llm.Generator
	Builder        *prompt.Builder
	Dispatcher     events.Dispatcher
}

// NewAssignmentService builds the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		catalog:     deps.CatalogRepo,
		users:       deps.UserRepo,
		assignments: deps.AssignmentRepo,
		auth:        deps.Auth,
		generator:   deps.Generator,
		builder:     deps.Builder,
		dispatcher:  deps.Dispatcher,
	}
}

// AssignableRoles returns the roles the session may assign scenarios
// to: every role for admins, the subordinate closure for supervisors.
func (s *AssignmentService) AssignableRoles(ctx context.Context, session *domain.Session) ([]string, error) {
	catalog, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load catalog", err)
	}
	if session.IsAdmin {
		names := catalog.RoleNames()
		sort.Strings(names)
		return names, nil
	}

	closure := orgchart.SubordinateClosure(session.Position, catalog.OrgChart.Edges)
	names := make([]string, 0, len(closure))
	for name := range closure {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// RoleStaff is one account eligible to receive an assignment.
type RoleStaff struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// StaffInRole lists the accounts holding a role the caller may assign
// to, so clients can build the recipient selection.
func (s *AssignmentService) StaffInRole(ctx context.Context, session *domain.Session, role string) ([]RoleStaff, error) {
	catalog, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load catalog", err)
	}
	if _, ok := catalog.StaffRoles[role]; !ok {
		return nil, apperrors.NewNotFound("role", map[string]any{"role": role})
	}
	if !session.IsAdmin {
		closure := orgchart.SubordinateClosure(session.Position, catalog.OrgChart.Edges)
		if !closure[role] {
			return nil, apperrors.NewForbidden("this role is outside your reporting line")
		}
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load users", err)
	}
	staff := make([]RoleStaff, 0)
	for email, user := range users {
		if user.Position != role {
			continue
		}
		staff = append(staff, RoleStaff{
			Email: email,
			Name:  strings.TrimSpace(user.FirstName + " " + user.LastName),
		})
	}
	sort.Slice(staff, func(i, j int) bool { return staff[i].Email < staff[j].Email })
	return staff, nil
}

// Create generates one scenario and assigns it to each listed staff
// member. The target role must fall inside the session's reporting
// line unless the session is an admin.
func (s *AssignmentService) Create(ctx context.Context, session *domain.Session, input CreateAssignmentInput) ([]domain.Assignment, error) {
	if len(input.StaffEmails) == 0 {
		return nil, apperrors.NewValidationError("select at least one staff member", nil)
	}
	if !containsString(domain.AssignmentTopics, input.Topic) {
		return nil, apperrors.NewValidationError("unknown topic", map[string]any{"topic": input.Topic})
	}
	if !containsString(domain.ContactTypes, input.ContactType) {
		return nil, apperrors.NewValidationError("unknown contact type", map[string]any{"contact_type": input.ContactType})
	}

	catalog, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load catalog", err)
	}
	if _, ok := catalog.StaffRoles[input.Role]; !ok {
		return nil, apperrors.NewNotFound("role", map[string]any{"role": input.Role})
	}
	if !session.IsAdmin {
		closure := orgchart.SubordinateClosure(session.Position, catalog.OrgChart.Edges)
		if !closure[input.Role] {
			return nil, apperrors.NewForbidden("this role is outside your reporting line")
		}
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load users", err)
	}
	for _, email := range input.StaffEmails {
		user, ok := users[email]
		if !ok {
			return nil, apperrors.NewValidationError("unknown staff member", map[string]any{"email": email})
		}
		if user.Position != input.Role {
			return nil, apperrors.NewValidationError("staff member does not hold the selected role", map[string]any{
				"email":    email,
				"position": user.Position,
			})
		}
	}

	text, err := s.generator.Generate(ctx, llm.Request{
		Kind:        llm.KindScenario,
		Model:       input.Model,
		Prompt:      s.builder.AssignmentScenario(input.Role, input.Topic, input.ContactType),
		Temperature: scenarioTemperature,
		MaxTokens:   longFormMaxTokens,
	})
	if err != nil {
		return nil, apperrors.NewExternalServiceError("generate scenario", err)
	}
	scenario := prompt.ScrubMetaCommentary(text)
	if strings.TrimSpace(scenario) == "" {
		scenario = "Unable to generate scenario"
	}

	now := time.Now()
	created := make([]domain.Assignment, 0, len(input.StaffEmails))
	for _, email := range input.StaffEmails {
		user := users[email]
		assignment := domain.Assignment{
			ID:              fmt.Sprintf("%d_%s", now.Unix(), email),
			SupervisorEmail: session.Email,
			SupervisorName:  session.FullName(),
			StaffEmail:      email,
			StaffName:       strings.TrimSpace(orDefault(user.FirstName, "Staff") + " " + orDefault(user.LastName, "Member")),
			AssignedRole:    input.Role,
			StaffPosition:   orDefault(user.Position, input.Role),
			Topic:           input.Topic,
			Scenario:        scenario,
			AssignedDate:    now.Format(time.RFC3339),
			Completed:       false,
		}
		created = append(created, assignment)
	}
	if err := s.assignments.AppendAll(ctx, created); err != nil {
		return nil, apperrors.NewPersistenceError("save assignments", err)
	}

	for _, assignment := range created {
		s.publish(ctx, events.EventAssignmentCreated, session.Email, events.AssignmentCreatedPayload{
			AssignmentID: assignment.ID,
			StaffEmail:   assignment.StaffEmail,
			Topic:        assignment.Topic,
			AssignedRole: assignment.AssignedRole,
		})
	}
	return created, nil
}

// ListMine returns the caller's assignments split into pending and
// completed.
func (s *AssignmentService) ListMine(ctx context.Context, session *domain.Session) (*AssignmentLists, error) {
	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load assignments", err)
	}

	lists := &AssignmentLists{Pending: []domain.Assignment{}, Completed: []domain.Assignment{}}
	for _, assignment := range assignments {
		if assignment.StaffEmail != session.Email {
			continue
		}
		if assignment.Completed {
			lists.Completed = append(lists.Completed, assignment)
		} else {
			lists.Pending = append(lists.Pending, assignment)
		}
	}
	return lists, nil
}

// SubmitResponse records the staff member's answer, analyzes it, and
// marks the assignment completed. Responses are write-once; nothing is
// persisted when the analysis call fails.
func (s *AssignmentService) SubmitResponse(ctx context.Context, session *domain.Session, id, response, model string) (*domain.Assignment, error) {
	if strings.TrimSpace(response) == "" {
		return nil, apperrors.NewValidationError("please enter your response", nil)
	}

	assignment, err := s.assignments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("assignment", map[string]any{"id": id})
		}
		return nil, apperrors.NewPersistenceError("load assignments", err)
	}
	if assignment.StaffEmail != session.Email {
		return nil, apperrors.NewForbidden("this assignment belongs to someone else")
	}
	if assignment.Completed {
		return nil, apperrors.NewConflict("assignment already completed", map[string]any{"id": id})
	}

	analysis, err := s.generator.Generate(ctx, llm.Request{
		Kind:        llm.KindEvaluation,
		Model:       model,
		Prompt:      s.builder.AssignmentAnalysis(assignment.Scenario, response),
		Temperature: evaluationTemperature,
		MaxTokens:   longFormMaxTokens,
	})
	if err != nil {
		return nil, apperrors.NewExternalServiceError("analyze response", err)
	}
	if strings.TrimSpace(analysis) == "" {
		analysis = "Unable to analyze response"
	}

	var updated domain.Assignment
	err = s.assignments.Update(ctx, id, func(a *domain.Assignment) error {
		if a.Completed {
			return apperrors.NewConflict("assignment already completed", map[string]any{"id": id})
		}
		now := time.Now().Format(time.RFC3339)
		a.Response = &response
		a.ResponseDate = &now
		a.Completed = true
		a.AIAnalysis = analysis
		if parsed, ok := scoring.Parse(analysis); ok {
			a.OverallScore = parsed
		}
		updated = *a
		return nil
	})
	if err != nil {
		var domainErr *apperrors.DomainError
		if apperrors.AsDomainError(err, &domainErr) {
			return nil, domainErr
		}
		return nil, apperrors.NewPersistenceError("save assignments", err)
	}

	s.publish(ctx, events.EventAssignmentCompleted, session.Email, events.AssignmentCompletedPayload{
		AssignmentID: id,
		StaffEmail:   session.Email,
		OverallScore: updated.OverallScore,
	})
	return &updated, nil
}

// PendingReview returns completed, not-yet-reviewed assignments from
// staff visible to the session.
func (s *AssignmentService) PendingReview(ctx context.Context, session *domain.Session) ([]domain.Assignment, error) {
	visible, err := s.auth.VisibleSubmitters(ctx, session)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load assignments", err)
	}

	pending := make([]domain.Assignment, 0)
	for _, assignment := range assignments {
		if assignment.Completed && !assignment.Reviewed && visible[assignment.StaffEmail] {
			pending = append(pending, assignment)
		}
	}
	return pending, nil
}

// Review marks a completed assignment reviewed. Reviewing is a
// one-way transition.
func (s *AssignmentService) Review(ctx context.Context, session *domain.Session, id, feedback string) error {
	visible, err := s.auth.VisibleSubmitters(ctx, session)
	if err != nil {
		return err
	}

	var staffEmail string
	err = s.assignments.Update(ctx, id, func(a *domain.Assignment) error {
		if !visible[a.StaffEmail] {
			return apperrors.NewForbidden("this assignment is outside your reporting line")
		}
		if !a.Completed {
			return apperrors.NewConflict("assignment has no response yet", map[string]any{"id": id})
		}
		if a.Reviewed {
			return apperrors.NewConflict("assignment already reviewed", map[string]any{"id": id})
		}
		a.Reviewed = true
		a.ReviewedBy = session.Email
		a.ReviewDate = time.Now().Format(time.RFC3339)
		a.SupervisorFeedback = feedback
		staffEmail = a.StaffEmail
		return nil
	})
	if err != nil {
		var domainErr *apperrors.DomainError
		if apperrors.AsDomainError(err, &domainErr) {
			return domainErr
		}
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("assignment", map[string]any{"id": id})
		}
		return apperrors.NewPersistenceError("save assignments", err)
	}

	s.publish(ctx, events.EventAssignmentReviewed, session.Email, events.AssignmentReviewedPayload{
		AssignmentID: id,
		StaffEmail:   staffEmail,
		ReviewedBy:   session.Email,
	})
	return nil
}

// Delete removes an assignment. Staff may remove their own unanswered
// assignments; admins may remove any.
func (s *AssignmentService) Delete(ctx context.Context, session *domain.Session, id string) error {
	assignment, err := s.assignments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("assignment", map[string]any{"id": id})
		}
		return apperrors.NewPersistenceError("load assignments", err)
	}
	if !session.IsAdmin {
		if assignment.StaffEmail != session.Email {
			return apperrors.NewForbidden("this assignment belongs to someone else")
		}
		if assignment.Completed {
			return apperrors.NewConflict("completed assignments cannot be deleted", map[string]any{"id": id})
		}
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("assignment", map[string]any{"id": id})
		}
		return apperrors.NewPersistenceError("save assignments", err)
	}
	return nil
}

func (s *AssignmentService) publish(ctx context.Context, eventType events.EventType, actor string, payload interface{}) {
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

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
