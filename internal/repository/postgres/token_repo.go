package postgres

import (
	"context"

	"github.com/dom/recipe-share/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *tokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *domain.UserToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// Delete removes the stored token. Deleting a token that is not stored is not an error.
func (r *tokenRepository) Delete(ctx context.Context, userID uuid.UUID, token string) error {
	return r.db.WithContext(ctx).
		Delete(&domain.UserToken{}, "user_id = ? AND token = ?", userID, token).Error
}
