package postgres

import (
	"context"

	"github.com/dom/recipe-share/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *recipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *domain.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

func (r *recipeRepository) GetAll(ctx context.Context) ([]*domain.Recipe, error) {
	var recipes []*domain.Recipe
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := r.db.WithContext(ctx).First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// GetByIDAndCreator only matches recipes owned by creatorID, so a recipe
// owned by someone else looks exactly like a missing one.
func (r *recipeRepository) GetByIDAndCreator(ctx context.Context, id, creatorID uuid.UUID) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := r.db.WithContext(ctx).First(&recipe, "id = ? AND creator_id = ?", id, creatorID).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Update persists the mutable recipe fields. creator_id is never written.
func (r *recipeRepository) Update(ctx context.Context, recipe *domain.Recipe) error {
	result := r.db.WithContext(ctx).
		Model(recipe).
		Select("title", "description", "img_path", "image_owned", "ingredients", "updated_at").
		Where("creator_id = ?", recipe.CreatorID).
		Updates(recipe)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *recipeRepository) Delete(ctx context.Context, id, creatorID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Recipe{}, "id = ? AND creator_id = ?", id, creatorID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
