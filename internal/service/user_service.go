package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/training-service/internal/auth"
	"github.com/spec-kit/training-service/internal/domain"
	"github.com/spec-kit/training-service/internal/events"
	"github.com/spec-kit/training-service/internal/repository"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

// UserAccount is the admin-facing view of one account.
type UserAccount struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Position    string `json:"position"`
	IsAdmin     bool   `json:"is_admin"`
	CreatedDate string `json:"created_date"`
}

// CreateUserInput carries the fields for a new account.
type CreateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Position  string
	Password  string
	IsAdmin   bool
}

// UserService covers admin account management.
type UserService struct {
	users      repository.UserRepository
	catalog    repository.CatalogRepository
	dispatcher events.Dispatcher
}

// UserDependencies encapsulates requirements for the user service.
type UserDependencies struct {
	UserRepo    repository.UserRepository
	CatalogRepo repository.CatalogRepository
	Dispatcher  events.Dispatcher
}

// NewUserService builds the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		catalog:    deps.CatalogRepo,
		dispatcher: deps.Dispatcher,
	}
}

// List returns every account sorted by email.
func (s *UserService) List(ctx context.Context) ([]UserAccount, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load users", err)
	}

	accounts := make([]UserAccount, 0, len(users))
	for email, user := range users {
		accounts = append(accounts, UserAccount{
			Email:       email,
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			Position:    user.Position,
			IsAdmin:     user.IsAdmin,
			CreatedDate: user.CreatedDate,
		})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Email < accounts[j].Email })
	return accounts, nil
}

// Create registers a new account. Duplicate detection is
// case-insensitive even though stored emails keep their case.
func (s *UserService) Create(ctx context.Context, actor string, input CreateUserInput) error {
	if input.Email == "" || input.FirstName == "" || input.Password == "" {
		return apperrors.NewValidationError("email, name, and password are required", nil)
	}
	if !emailRe.MatchString(input.Email) {
		return apperrors.NewValidationError("invalid email address", nil)
	}
	if len(input.Password) < minPasswordLen {
		return apperrors.NewValidationError("password must be at least 6 characters", nil)
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return apperrors.NewPersistenceError("load users", err)
	}
	for email := range users {
		if strings.EqualFold(email, input.Email) {
			return apperrors.NewConflict("email already registered", nil)
		}
	}

	catalog, err := s.catalog.Get(ctx)
	if err != nil {
		return apperrors.NewPersistenceError("load catalog", err)
	}
	if _, ok := catalog.StaffRoles[input.Position]; !ok {
		return apperrors.NewValidationError("position is not a configured role",
			map[string]any{"position": input.Position})
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user := domain.User{
		PasswordHash: hash,
		IsAdmin:      input.IsAdmin,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Position:     input.Position,
		CreatedDate:  time.Now().Format(time.RFC3339),
	}
	if err := s.users.Create(ctx, input.Email, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.NewConflict("email already registered", nil)
		}
		return apperrors.NewPersistenceError("save users", err)
	}

	s.publish(ctx, events.EventUserCreated, actor, events.UserCreatedPayload{
		Email:    input.Email,
		Position: input.Position,
		IsAdmin:  input.IsAdmin,
	})
	return nil
}

// UpdateUserInput carries the editable fields of an account. The
// email itself is immutable.
type UpdateUserInput struct {
	FirstName string
	LastName  string
	Position  string
	IsAdmin   bool
}

// Update edits name, position, and admin flag of an account.
func (s *UserService) Update(ctx context.Context, email string, input UpdateUserInput) error {
	if input.FirstName == "" {
		return apperrors.NewValidationError("first name is required", nil)
	}
	catalog, err := s.catalog.Get(ctx)
	if err != nil {
		return apperrors.NewPersistenceError("load catalog", err)
	}
	if _, ok := catalog.StaffRoles[input.Position]; !ok {
		return apperrors.NewValidationError("position is not a configured role",
			map[string]any{"position": input.Position})
	}

	err = s.users.Update(ctx, email, func(user *domain.User) error {
		user.FirstName = input.FirstName
		user.LastName = input.LastName
		user.Position = input.Position
		user.IsAdmin = input.IsAdmin
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return apperrors.NewPersistenceError("save users", err)
	}
	return nil
}

// Delete removes an account. Self-deletion is rejected.
func (s *UserService) Delete(ctx context.Context, actor, email string) error {
	if strings.EqualFold(actor, email) {
		return apperrors.NewForbidden("you cannot delete your own account")
	}
	if err := s.users.Delete(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return apperrors.NewPersistenceError("save users", err)
	}
	return nil
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, actor string, payload interface{}) {
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
