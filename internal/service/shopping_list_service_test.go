package service_test

import (
	"context"
	"testing"

	"github.com/dom/recipe-share/internal/domain"
	"github.com/dom/recipe-share/internal/repository/postgres"
	"github.com/dom/recipe-share/internal/service"
	"github.com/dom/recipe-share/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingListService(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	lists := service.NewShoppingListService(repos.User)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)

	items, err := lists.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)

	want := []domain.ShoppingItem{
		{Name: "flour", Amount: testutil.Amount(500)},
		{Name: "eggs", Amount: testutil.Amount(6)},
	}
	saved, err := lists.Replace(ctx, user.ID, want)
	require.NoError(t, err)
	assert.Equal(t, want, saved)

	items, err = lists.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, want, items)

	// Replacing the list leaves the credentials untouched.
	stored, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, service.VerifyPassword(password, stored.PasswordHash))

	saved, err = lists.Replace(ctx, user.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, saved)

	items, err = lists.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestShoppingListService_Validation(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	lists := service.NewShoppingListService(repos.User)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	tests := []struct {
		name      string
		items     []domain.ShoppingItem
		wantField string
	}{
		{
			name: "unnamed item",
			items: []domain.ShoppingItem{
				{Name: "milk", Amount: testutil.Amount(1)},
				{Amount: testutil.Amount(2)},
			},
			wantField: "shoppingList[1].name",
		},
		{
			name:      "negative amount",
			items:     []domain.ShoppingItem{{Name: "milk", Amount: testutil.Amount(-1)}},
			wantField: "shoppingList[0].amount",
		},
		{
			name:      "missing amount",
			items:     []domain.ShoppingItem{{Name: "milk"}},
			wantField: "shoppingList[0].amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lists.Replace(ctx, user.ID, tt.items)

			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantField, validationErr.Field)
		})
	}
}

func TestShoppingListService_UnknownUser(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	lists := service.NewShoppingListService(repos.User)
	ctx := context.Background()

	_, err := lists.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	_, err = lists.Replace(ctx, uuid.New(), []domain.ShoppingItem{{Name: "salt", Amount: testutil.Amount(1)}})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
