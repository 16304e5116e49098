package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/recipe-share/internal/domain"
	"github.com/dom/recipe-share/internal/repository/postgres"
	"github.com/dom/recipe-share/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUser(email, username string) *domain.User {
	return &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: "hashedpassword",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		wantErr error
	}{
		{
			name: "successful creation",
			user: newUser("a@x.com", "alice"),
		},
		{
			name:    "duplicate email",
			user:    newUser("a@x.com", "alice2"), // Same email as above
			wantErr: gorm.ErrDuplicatedKey,
		},
		{
			name:    "duplicate username",
			user:    newUser("b@x.com", "alice"), // Same username as above
			wantErr: gorm.ErrDuplicatedKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUserRepository_Lookups(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithEmail("a@x.com").
		WithUsername("alice").
		Build(t, testDB.DB)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byUsername, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetByUsername(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_GetByToken(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	userRepo := postgres.NewUserRepository(testDB.DB)
	tokenRepo := postgres.NewTokenRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	require.NoError(t, tokenRepo.Create(ctx, &domain.UserToken{
		ID:     uuid.New(),
		UserID: user.ID,
		Access: domain.AccessAuth,
		Token:  "token-one",
	}))
	require.NoError(t, tokenRepo.Create(ctx, &domain.UserToken{
		ID:     uuid.New(),
		UserID: user.ID,
		Access: domain.AccessAuth,
		Token:  "token-two",
	}))

	found, err := userRepo.GetByToken(ctx, user.ID, domain.AccessAuth, "token-one")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Len(t, found.Tokens, 2)

	tests := []struct {
		name   string
		id     uuid.UUID
		access string
		token  string
	}{
		{name: "token of another user", id: other.ID, access: domain.AccessAuth, token: "token-one"},
		{name: "wrong access", id: user.ID, access: "reset", token: "token-one"},
		{name: "unknown token", id: user.ID, access: domain.AccessAuth, token: "token-three"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := userRepo.GetByToken(ctx, tt.id, tt.access, tt.token)
			assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		})
	}
}

func TestUserRepository_GetWithRecipes(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	mine := testutil.NewRecipeBuilder().WithCreator(owner).Build(t, testDB.DB)
	testutil.NewRecipeBuilder().WithCreator(other).Build(t, testDB.DB)

	user, err := repo.GetWithRecipes(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{mine.ID}, user.RecipeIDs())
}

func TestUserRepository_UpdateShoppingList(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	items := []domain.ShoppingItem{{Name: "rice", Amount: testutil.Amount(2)}}
	require.NoError(t, repo.UpdateShoppingList(ctx, user.ID, items))

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, items, []domain.ShoppingItem(stored.ShoppingList))
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)

	err = repo.UpdateShoppingList(ctx, uuid.New(), items)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
