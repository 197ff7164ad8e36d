package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/spec-kit/training-service/internal/auth"
	"github.com/spec-kit/training-service/internal/config"
	"github.com/spec-kit/training-service/internal/domain"
	"github.com/spec-kit/training-service/internal/orgchart"
	"github.com/spec-kit/training-service/internal/repository"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const minPasswordLen = 6

// AuthService coordinates login, bootstrap, and session derivation.
type AuthService struct {
	users    repository.UserRepository
	catalog  repository.CatalogRepository
	tokenMgr *auth.TokenManager
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	CatalogRepo repository.CatalogRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:    deps.UserRepo,
		catalog:  deps.CatalogRepo,
		tokenMgr: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Bootstrap creates the first admin account. It refuses once any
// account exists.
func (s *AuthService) Bootstrap(ctx context.Context, email, password, confirm string) error {
	users, err := s.users.List(ctx)
	if err != nil {
		return apperrors.NewPersistenceError("load users", err)
	}
	if len(users) > 0 {
		return apperrors.NewConflict("accounts already exist; bootstrap is closed", nil)
	}
	if email == "" || password == "" {
		return apperrors.NewValidationError("email and password are required", nil)
	}
	if !emailRe.MatchString(email) {
		return apperrors.NewValidationError("invalid email address", nil)
	}
	if password != confirm {
		return apperrors.NewValidationError("passwords do not match", nil)
	}
	if len(password) < minPasswordLen {
		return apperrors.NewValidationError("password must be at least 6 characters", nil)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	admin := domain.User{
		PasswordHash: hash,
		IsAdmin:      true,
		FirstName:    "Admin",
		LastName:     "Account",
		Position:     "Administrator",
		CreatedDate:  time.Now().Format(time.RFC3339),
	}
	if err := s.users.Create(ctx, email, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.NewConflict("email already registered", nil)
		}
		return apperrors.NewPersistenceError("save users", err)
	}
	return nil
}

// Login verifies credentials and issues a token. Unknown accounts and
// bad passwords report distinct reasons.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.Session, error) {
	if email == "" || password == "" {
		return "", time.Time{}, nil, apperrors.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", time.Time{}, nil, apperrors.NewAuthError("email not registered; contact your administrator",
				map[string]any{"reason": "not_registered"})
		}
		return "", time.Time{}, nil, apperrors.NewPersistenceError("load users", err)
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return "", time.Time{}, nil, apperrors.NewAuthError("incorrect password",
			map[string]any{"reason": "bad_password"})
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(email)
	if err != nil {
		return "", time.Time{}, nil, apperrors.NewInternalError(err)
	}

	session, err := s.SessionFor(ctx, email)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expiresAt, session, nil
}

// SessionFor derives a live session from the directory and the current
// org chart. Supervisor standing follows from having direct reports.
func (s *AuthService) SessionFor(ctx context.Context, email string) (*domain.Session, error) {
	user, err := s.users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, apperrors.NewPersistenceError("load users", err)
	}

	catalog, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load catalog", err)
	}

	directReports := orgchart.DirectReports(user.Position, catalog.OrgChart.Edges)
	roleClass := domain.RoleClassStaff
	if len(directReports) > 0 {
		roleClass = domain.RoleClassSupervisor
	}

	return &domain.Session{
		Email:         email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Position:      user.Position,
		IsAdmin:       user.IsAdmin,
		DirectReports: directReports,
		RoleClass:     roleClass,
	}, nil
}

// ChangePassword re-verifies the current password before replacing it.
func (s *AuthService) ChangePassword(ctx context.Context, email, current, next, confirm string) error {
	user, err := s.users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return apperrors.NewPersistenceError("load users", err)
	}
	if !auth.VerifyPassword(user.PasswordHash, current) {
		return apperrors.NewAuthError("current password is incorrect", nil)
	}
	if len(next) < minPasswordLen {
		return apperrors.NewValidationError("new password must be at least 6 characters", nil)
	}
	if next != confirm {
		return apperrors.NewValidationError("new passwords do not match", nil)
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	err = s.users.Update(ctx, email, func(u *domain.User) error {
		u.PasswordHash = hash
		return nil
	})
	if err != nil {
		return apperrors.NewPersistenceError("save users", err)
	}
	return nil
}

// ResetPassword sets a new password on any account. With an empty
// password a temporary one is generated and returned.
func (s *AuthService) ResetPassword(ctx context.Context, email, password string) (string, error) {
	if password == "" {
		generated, err := auth.GenerateTempPassword()
		if err != nil {
			return "", apperrors.NewInternalError(err)
		}
		password = generated
	} else if len(password) < minPasswordLen {
		return "", apperrors.NewValidationError("password must be at least 6 characters", nil)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	err = s.users.Update(ctx, email, func(u *domain.User) error {
		u.PasswordHash = hash
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return "", apperrors.NewPersistenceError("save users", err)
	}
	return password, nil
}

// VisibleSubmitters returns the emails whose submissions the session
// may review. Admins see everyone; supervisors see users whose
// position falls inside their role's subordinate closure.
func (s *AuthService) VisibleSubmitters(ctx context.Context, session *domain.Session) (map[string]bool, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load users", err)
	}

	visible := make(map[string]bool, len(users))
	if session.IsAdmin {
		for email := range users {
			visible[email] = true
		}
		return visible, nil
	}

	catalog, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load catalog", err)
	}

	closure := orgchart.SubordinateClosure(session.Position, catalog.OrgChart.Edges)
	for email, user := range users {
		if closure[user.Position] {
			visible[email] = true
		}
	}
	return visible, nil
}
