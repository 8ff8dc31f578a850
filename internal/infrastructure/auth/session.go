package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vendaflow/backend/internal/infrastructure/config"
)

// Session token errors
var (
	ErrInvalidToken  = errors.New("invalid session token")
	ErrExpiredToken  = errors.New("session token has expired")
	ErrInvalidClaims = errors.New("invalid session claims")
	ErrMissingUserID = errors.New("missing sub in session claims")
)

// SessionClaims are the claims carried by a session token. The subject is
// the user id.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is the verified identity extracted from a token
type Session struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

// SessionService issues and verifies HS256 session tokens
type SessionService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewSessionService creates a session service
func NewSessionService(cfg config.SessionConfig) *SessionService {
	return &SessionService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.Expiration,
		issuer:     cfg.Issuer,
	}
}

// Issue signs a session token for the user
func (s *SessionService) Issue(userID, email, name string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiration)
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: email,
		Name:  name,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify validates a token and returns the session. Invalid and expired
// tokens are distinguishable so handlers can word the error.
func (s *SessionService) Verify(tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.Subject == "" {
		return nil, ErrMissingUserID
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidClaims
	}

	return &Session{UserID: userID, Email: claims.Email, Name: claims.Name}, nil
}

// TryVerify is the soft variant: it returns nil instead of an error for
// anonymous or invalid tokens, for endpoints that only personalize when a
// session happens to be present.
func (s *SessionService) TryVerify(tokenString string) *Session {
	if tokenString == "" {
		return nil
	}
	session, err := s.Verify(tokenString)
	if err != nil {
		return nil
	}
	return session
}
