package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dom/recipe-share/internal/domain"
	"github.com/dom/recipe-share/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidToken = fmt.Errorf("%w: invalid or revoked token", domain.ErrUnauthorized)

// TokenService issues, verifies and revokes session tokens.
type TokenService interface {
	Issue(ctx context.Context, user *domain.User) (string, error)
	Verify(ctx context.Context, token string) (*domain.User, error)
	Revoke(ctx context.Context, user *domain.User, token string) error
}

// JWTTokenService signs HS256 tokens. Tokens carry no expiry; a session
// ends only when its stored entry is revoked.
type JWTTokenService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	secret    []byte
	now       func() time.Time
}

func NewJWTTokenService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, secret string) *JWTTokenService {
	return &JWTTokenService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		secret:    []byte(secret),
		now:       time.Now,
	}
}

type tokenClaims struct {
	Access string `json:"access"`
	jwt.RegisteredClaims
}

func (s *JWTTokenService) Issue(ctx context.Context, user *domain.User) (string, error) {
	now := s.now()

	claims := tokenClaims{
		Access: domain.AccessAuth,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user.ID.String(),
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}

	stored := domain.UserToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Access:    claims.Access,
		Token:     token,
		CreatedAt: now,
	}
	if err := s.tokenRepo.Create(ctx, &stored); err != nil {
		return "", err
	}

	user.Tokens = append(user.Tokens, stored)
	return token, nil
}

func (s *JWTTokenService) Verify(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Access == "" {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject: %w", ErrInvalidToken, err)
	}

	user, err := s.userRepo.GetByToken(ctx, userID, claims.Access, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return user, nil
}

// Revoke removes token from the user's sessions. Revoking a token that is
// not stored succeeds.
func (s *JWTTokenService) Revoke(ctx context.Context, user *domain.User, token string) error {
	if err := s.tokenRepo.Delete(ctx, user.ID, token); err != nil {
		return err
	}

	user.Tokens = slices.DeleteFunc(user.Tokens, func(t domain.UserToken) bool {
		return t.Token == token
	})
	return nil
}
