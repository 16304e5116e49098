package service

import (
	"context"
	"errors"

	"github.com/dom/recipe-share/internal/domain"
	"github.com/dom/recipe-share/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShoppingListService struct {
	userRepo repository.UserRepository
}

func NewShoppingListService(userRepo repository.UserRepository) *ShoppingListService {
	return &ShoppingListService{userRepo: userRepo}
}

type shoppingListInput struct {
	Items []domain.ShoppingItem `json:"shoppingList" validate:"dive"`
}

func (s *ShoppingListService) Get(ctx context.Context, userID uuid.UUID) ([]domain.ShoppingItem, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.ShoppingList == nil {
		return []domain.ShoppingItem{}, nil
	}
	return user.ShoppingList, nil
}

// Replace overwrites the user's shopping list with items.
func (s *ShoppingListService) Replace(ctx context.Context, userID uuid.UUID, items []domain.ShoppingItem) ([]domain.ShoppingItem, error) {
	if items == nil {
		items = []domain.ShoppingItem{}
	}

	if err := validateStruct(shoppingListInput{Items: items}); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateShoppingList(ctx, userID, items); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return items, nil
}
