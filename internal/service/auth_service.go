package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/recipe-share/internal/config"
	"github.com/dom/recipe-share/internal/domain"
	"github.com/dom/recipe-share/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEmailNotFound   = fmt.Errorf("email %w", domain.ErrNotFound)
	ErrInvalidPassword = fmt.Errorf("%w: incorrect password", domain.ErrUnauthorized)
	ErrUserNotFound    = fmt.Errorf("user %w", domain.ErrNotFound)
)

type AuthService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		bcryptCost: cfg.BcryptCost,
	}
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput carries no validation rules: a blank email is reported as an
// unknown email and a blank password as a wrong one.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Username = strings.TrimSpace(input.Username)

	if err := validateStruct(input); err != nil {
		return nil, err
	}

	if taken, err := s.exists(ctx, s.userRepo.GetByEmail, input.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.NewValidationError("email", "email already taken")
	}

	if taken, err := s.exists(ctx, s.userRepo.GetByUsername, input.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.NewValidationError("username", "username already taken")
	}

	user, err := newUser(input.Email, input.Username, input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration won the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewValidationError("email", "email or username already taken")
		}
		return nil, err
	}

	return user, nil
}

func (s *AuthService) exists(ctx context.Context, lookup func(context.Context, string) (*domain.User, error), value string) (bool, error) {
	_, err := lookup(ctx, value)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// newUser builds a user record with the password already hashed. It is the
// only place a password hash is produced.
func newUser(email, username, password string, cost int) (*domain.User, error) {
	hash, err := HashPassword(password, cost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		ShoppingList: datatypes.JSONSlice[domain.ShoppingItem]{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Login checks the credentials. It does not issue a token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, error) {
	input.Email = strings.TrimSpace(input.Email)

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmailNotFound
		}
		return nil, err
	}

	if !VerifyPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidPassword
	}

	return user, nil
}

// GetUser returns the user with the recipes they created.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetWithRecipes(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
