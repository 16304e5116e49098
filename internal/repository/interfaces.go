package repository

import (
	"context"

	"github.com/dom/recipe-share/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetByToken returns the user with the given id only while the exact
	// access/token pair is still stored for it.
	GetByToken(ctx context.Context, id uuid.UUID, access, token string) (*domain.User, error)
	GetWithRecipes(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateShoppingList(ctx context.Context, id uuid.UUID, items []domain.ShoppingItem) error
}

type TokenRepository interface {
	Create(ctx context.Context, token *domain.UserToken) error
	Delete(ctx context.Context, userID uuid.UUID, token string) error
}

type RecipeRepository interface {
	Create(ctx context.Context, recipe *domain.Recipe) error
	GetAll(ctx context.Context) ([]*domain.Recipe, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error)
	GetByIDAndCreator(ctx context.Context, id, creatorID uuid.UUID) (*domain.Recipe, error)
	Update(ctx context.Context, recipe *domain.Recipe) error
	Delete(ctx context.Context, id, creatorID uuid.UUID) error
}

type Repositories struct {
	User   UserRepository
	Token  TokenRepository
	Recipe RecipeRepository
}
