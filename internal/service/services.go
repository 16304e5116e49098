package service

import (
	"github.com/dom/recipe-share/internal/config"
	"github.com/dom/recipe-share/internal/repository"
	"github.com/dom/recipe-share/internal/storage"
)

type Services struct {
	Auth         *AuthService
	Tokens       *JWTTokenService
	Recipes      *RecipeService
	ShoppingList *ShoppingListService
}

func NewServices(repos *repository.Repositories, images storage.ImageStore, events EventPublisher, cfg *config.Config) *Services {
	return &Services{
		Auth:         NewAuthService(repos.User, cfg),
		Tokens:       NewJWTTokenService(repos.User, repos.Token, cfg.JWTSecret),
		Recipes:      NewRecipeService(repos.Recipe, images, events),
		ShoppingList: NewShoppingListService(repos.User),
	}
}
