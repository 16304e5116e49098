package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Recipe is a published recipe. ImageOwned is set when ImgPath points at an
// upload stored for this recipe; only owned images are released on replace
// or delete.
type Recipe struct {
	ID          uuid.UUID                       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title       string                          `json:"title" gorm:"not null"`
	Description string                          `json:"description" gorm:"not null"`
	ImgPath     string                          `json:"imgPath" gorm:"not null"`
	ImageOwned  bool                            `json:"-" gorm:"not null;default:false"`
	Ingredients datatypes.JSONSlice[Ingredient] `json:"ingredients" gorm:"type:jsonb"`
	CreatorID   uuid.UUID                       `json:"creatorId" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time                       `json:"createdAt"`
	UpdatedAt   time.Time                       `json:"updatedAt"`
}

type Ingredient struct {
	Name string `json:"name" validate:"required"`
}

// RecipeEventType names a recipe lifecycle change published to feed subscribers.
type RecipeEventType string

const (
	RecipeCreated RecipeEventType = "recipe.created"
	RecipeUpdated RecipeEventType = "recipe.updated"
	RecipeDeleted RecipeEventType = "recipe.deleted"
)

type RecipeEvent struct {
	Type   RecipeEventType `json:"type"`
	Recipe *Recipe         `json:"payload"`
}
