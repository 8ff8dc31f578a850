package identity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/vendaflow/backend/internal/domain/identity"
	"github.com/vendaflow/backend/internal/domain/shared"
)

// ErrInvalidCredentials is returned for any failed login. It deliberately
// does not distinguish unknown email from wrong password.
var ErrInvalidCredentials = errors.New("identity: invalid credentials")

// TokenIssuer signs session tokens for an authenticated user
type TokenIssuer interface {
	Issue(userID, email, name string) (token string, expiresAt time.Time, err error)
}

// Session is the result of a successful login or registration
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *identity.User
}

// AuthService registers users and opens sessions
type AuthService struct {
	users  identity.Repository
	issuer TokenIssuer
	logger *zap.Logger
}

// NewAuthService creates an auth service
func NewAuthService(users identity.Repository, issuer TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, issuer: issuer, logger: logger}
}

// Register creates a user and opens their first session
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*Session, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Email already registered")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	user, err := identity.NewUser(email, name, password)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.openSession(user)
}

// Login verifies the credentials and opens a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return s.openSession(user)
}

func (s *AuthService) openSession(user *identity.User) (*Session, error) {
	token, expiresAt, err := s.issuer.Issue(user.ID.String(), user.Email, user.Name)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
