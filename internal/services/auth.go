package services

import (
	"context"
	"fmt"
	"time"

	"tourzen-backend/internal/apperr"
	"tourzen-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Session identifies the authenticated caller of a request.
type Session struct {
	UserID string
	Email  string
}

// UserStore is the persistence surface the auth and domain services need
// for users.
type UserStore interface {
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// AuthService exchanges identity assertions for application session tokens
type AuthService struct {
	users     UserStore
	verifier  IdentityVerifier
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, verifier IdentityVerifier, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		verifier:  verifier,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// ExchangeIdentity verifies a third-party identity assertion and issues an
// application session token. The user row is created on first exchange and
// has its profile fields refreshed on later ones.
func (s *AuthService) ExchangeIdentity(ctx context.Context, idToken string) (string, *models.User, error) {
	if idToken == "" {
		return "", nil, apperr.Validation("id_token is required")
	}

	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return "", nil, err
	}

	name := identity.Name
	if name == "" {
		name = identity.Email
	}

	user, err := s.users.Upsert(ctx, &models.User{
		ID:        uuid.New().String(),
		Email:     identity.Email,
		Name:      name,
		Photo:     identity.Picture,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a session token and returns the session it carries
func (s *AuthService) ValidateToken(tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthenticated("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Unauthenticated("invalid session token")
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return nil, apperr.Unauthenticated("invalid session token")
	}
	email, _ := claims["email"].(string)

	return &Session{UserID: userID, Email: email}, nil
}

// EndSession ends a session. Tokens are stateless bearer credentials, so
// there is nothing to revoke server-side; the call exists so clients have a
// definite logout point and the event is recorded.
func (s *AuthService) EndSession(ctx context.Context, session Session) {
	log.Info().Str("user_id", session.UserID).Msg("Session ended")
}
