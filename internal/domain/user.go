package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AccessAuth is the access kind carried by session tokens issued at login.
const AccessAuth = "auth"

type User struct {
	ID           uuid.UUID                         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email        string                            `json:"email" gorm:"uniqueIndex;not null"`
	Username     string                            `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string                            `json:"-" gorm:"not null"`
	ShoppingList datatypes.JSONSlice[ShoppingItem] `json:"shoppingList" gorm:"type:jsonb"`
	Tokens       []UserToken                       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipes      []Recipe                          `json:"-" gorm:"foreignKey:CreatorID"`
	CreatedAt    time.Time                         `json:"createdAt"`
	UpdatedAt    time.Time                         `json:"updatedAt"`
}

// UserToken is one active session of a user. Removing the row revokes the
// session even though the signed token itself stays verifiable.
type UserToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Access    string    `json:"access" gorm:"not null"`
	Token     string    `json:"-" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
}

// ShoppingItem is one shopping list line. Amount is a pointer so a missing
// amount is rejected rather than read as zero.
type ShoppingItem struct {
	Name   string   `json:"name" validate:"required"`
	Amount *float64 `json:"amount" validate:"required,gte=0"`
}

// RecipeIDs returns the ids of the recipes loaded on the user.
func (u *User) RecipeIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(u.Recipes))
	for _, r := range u.Recipes {
		ids = append(ids, r.ID)
	}
	return ids
}
