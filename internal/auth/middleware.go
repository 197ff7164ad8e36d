package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/training-service/internal/domain"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

const sessionKey = "auth_session"

// SessionResolver turns a verified email into a live session. The
// lookup runs per request so that role edits, org chart changes, and
// account deletion take effect without reissuing tokens.
type SessionResolver interface {
	SessionFor(ctx context.Context, email string) (*domain.Session, error)
}

// Middleware validates bearer tokens and loads sessions.
type Middleware struct {
	tokens   *TokenManager
	resolver SessionResolver
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, resolver SessionResolver) *Middleware {
	return &Middleware{tokens: tokens, resolver: resolver}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	session, err := m.resolver.SessionFor(c.Context(), claims.Email)
	if err != nil {
		var domainErr *apperrors.DomainError
		if apperrors.AsDomainError(err, &domainErr) && domainErr.Code == apperrors.CodeNotFound {
			return apperrors.NewUnauthorized("account no longer exists")
		}
		return apperrors.MapError(err)
	}

	c.Locals(sessionKey, session)
	return c.Next()
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	session, ok := val.(*domain.Session)
	return session, ok
}
