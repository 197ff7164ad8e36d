package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/training-service/internal/domain"
	"github.com/spec-kit/training-service/internal/extract"
	"github.com/spec-kit/training-service/internal/repository"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

const defaultRoleDescription = "Please upload a PDF job description below."

// ChartRole is one node of the org chart together with the people
// currently holding that position.
type ChartRole struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// ChartView is the rendered org chart.
type ChartView struct {
	Roles []ChartRole   `json:"roles"`
	Edges []domain.Edge `json:"edges"`
}

// CatalogService manages staff roles and the reporting structure.
type CatalogService struct {
	catalog   repository.CatalogRepository
	users     repository.UserRepository
	extractor extract.TextExtractor
}

// CatalogDependencies encapsulates requirements for the catalog service.
type CatalogDependencies struct {
	CatalogRepo repository.CatalogRepository
	UserRepo    repository.UserRepository
	Extractor   extract.TextExtractor
}

// NewCatalogService builds the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{
		catalog:   deps.CatalogRepo,
		users:     deps.UserRepo,
		extractor: deps.Extractor,
	}
}

// Get returns the full catalog.
func (s *CatalogService) Get(ctx context.Context) (domain.Catalog, error) {
	catalog, err := s.catalog.Get(ctx)
	if err != nil {
		return domain.EmptyCatalog(), apperrors.NewPersistenceError("load catalog", err)
	}
	return catalog, nil
}

// CreateRole registers a role with placeholder details. The real
// description arrives later through UploadDescription.
func (s *CatalogService) CreateRole(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.NewValidationError("role name cannot be empty", nil)
	}
	role := domain.Role{
		Description:       defaultRoleDescription,
		SystemInstruction: fmt.Sprintf("You are a practice partner for a %s. Evaluate responses based on their job description and the Guiding North Framework.", name),
	}
	if err := s.catalog.CreateRole(ctx, name, role); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.NewConflict("role already exists", map[string]any{"role": name})
		}
		return apperrors.NewPersistenceError("save catalog", err)
	}
	return nil
}

// UpdateRoleInput carries the editable fields of a role. Nil fields
// are left untouched.
type UpdateRoleInput struct {
	Description       *string
	SystemInstruction *string
	Supervisor        *string
}

// UpdateRole edits role details in place.
func (s *CatalogService) UpdateRole(ctx context.Context, name string, input UpdateRoleInput) error {
	err := s.catalog.UpdateRole(ctx, name, func(role *domain.Role) error {
		if input.Description != nil {
			role.Description = *input.Description
		}
		if input.SystemInstruction != nil {
			role.SystemInstruction = *input.SystemInstruction
		}
		if input.Supervisor != nil {
			role.Supervisor = *input.Supervisor
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("role", map[string]any{"role": name})
		}
		return apperrors.NewPersistenceError("save catalog", err)
	}
	return nil
}

// DeleteRole removes a role and every edge touching it.
func (s *CatalogService) DeleteRole(ctx context.Context, name string) error {
	if err := s.catalog.DeleteRole(ctx, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("role", map[string]any{"role": name})
		}
		return apperrors.NewPersistenceError("save catalog", err)
	}
	return nil
}

// UploadDescription extracts the text of a PDF job description and
// stores it as the role description.
func (s *CatalogService) UploadDescription(ctx context.Context, name string, pdf []byte) (string, error) {
	if len(pdf) == 0 {
		return "", apperrors.NewValidationError("empty file", nil)
	}
	text, err := s.extractor.Extract(pdf)
	if err != nil {
		return "", apperrors.NewValidationError("could not read PDF", map[string]any{"reason": err.Error()})
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.NewValidationError("PDF contained no extractable text", nil)
	}

	desc := text
	if err := s.UpdateRole(ctx, name, UpdateRoleInput{Description: &desc}); err != nil {
		return "", err
	}
	return text, nil
}

// AddEdge records that source reports to target.
func (s *CatalogService) AddEdge(ctx context.Context, source, target string) error {
	if source == "" || target == "" || source == target {
		return apperrors.NewValidationError("please select two different roles", nil)
	}
	catalog, err := s.catalog.Get(ctx)
	if err != nil {
		return apperrors.NewPersistenceError("load catalog", err)
	}
	for _, name := range []string{source, target} {
		if _, ok := catalog.StaffRoles[name]; !ok {
			return apperrors.NewNotFound("role", map[string]any{"role": name})
		}
	}

	if err := s.catalog.AddEdge(ctx, domain.Edge{Source: source, Target: target}); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.NewConflict("this relationship already exists", nil)
		}
		return apperrors.NewPersistenceError("save catalog", err)
	}
	return nil
}

// RemoveEdge deletes a reporting relationship.
func (s *CatalogService) RemoveEdge(ctx context.Context, source, target string) error {
	if err := s.catalog.RemoveEdge(ctx, domain.Edge{Source: source, Target: target}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("relationship", map[string]any{"source": source, "target": target})
		}
		return apperrors.NewPersistenceError("save catalog", err)
	}
	return nil
}

// Chart resolves the org chart into roles with their current holders.
// Every configured role appears as a node even when no edge touches it.
func (s *CatalogService) Chart(ctx context.Context) (ChartView, error) {
	catalog, err := s.catalog.Get(ctx)
	if err != nil {
		return ChartView{}, apperrors.NewPersistenceError("load catalog", err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return ChartView{}, apperrors.NewPersistenceError("load users", err)
	}

	membersByRole := make(map[string][]string)
	for _, user := range users {
		membersByRole[user.Position] = append(membersByRole[user.Position], user.FullName())
	}

	names := catalog.RoleNames()
	sort.Strings(names)
	roles := make([]ChartRole, 0, len(names))
	for _, name := range names {
		members := membersByRole[name]
		sort.Strings(members)
		roles = append(roles, ChartRole{Name: name, Members: members})
	}

	edges := catalog.OrgChart.Edges
	if edges == nil {
		edges = []domain.Edge{}
	}
	return ChartView{Roles: roles, Edges: edges}, nil
}
