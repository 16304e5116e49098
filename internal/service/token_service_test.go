package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dom/recipe-share/internal/domain"
	"github.com/dom/recipe-share/internal/repository/postgres"
	"github.com/dom/recipe-share/internal/service"
	"github.com/dom/recipe-share/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	tokens := service.NewJWTTokenService(repos.User, repos.Token, cfg.JWTSecret)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	token, err := tokens.Issue(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	require.Len(t, user.Tokens, 1)
	assert.Equal(t, domain.AccessAuth, user.Tokens[0].Access)
	assert.Equal(t, token, user.Tokens[0].Token)

	verified, err := tokens.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
	require.Len(t, verified.Tokens, 1)
	assert.Equal(t, token, verified.Tokens[0].Token)

	stored, err := repos.User.GetByToken(ctx, user.ID, domain.AccessAuth, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}

func TestTokenService_Claims(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	tokens := service.NewJWTTokenService(repos.User, repos.Token, cfg.JWTSecret)

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	token, err := tokens.Issue(context.Background(), user)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, domain.AccessAuth, claims["access"])
	assert.NotContains(t, claims, "exp", "session tokens do not expire")
}

func TestTokenService_MultipleSessions(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	tokens := service.NewJWTTokenService(repos.User, repos.Token, cfg.JWTSecret)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	first, err := tokens.Issue(ctx, user)
	require.NoError(t, err)
	second, err := tokens.Issue(ctx, user)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each login should open a distinct session")
	assert.Len(t, user.Tokens, 2)

	require.NoError(t, tokens.Revoke(ctx, user, first))
	assert.Len(t, user.Tokens, 1)

	_, err = tokens.Verify(ctx, first)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	verified, err := tokens.Verify(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
}

func TestTokenService_RevokeUnknownToken(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	tokens := service.NewJWTTokenService(repos.User, repos.Token, cfg.JWTSecret)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	token, err := tokens.Issue(ctx, user)
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(ctx, user, "never-issued"))
	require.NoError(t, tokens.Revoke(ctx, user, token))
	require.NoError(t, tokens.Revoke(ctx, user, token))
	assert.Empty(t, user.Tokens)
}

func TestTokenService_VerifyRejects(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	tokens := service.NewJWTTokenService(repos.User, repos.Token, cfg.JWTSecret)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	valid, err := tokens.Issue(ctx, user)
	require.NoError(t, err)

	otherSecret := service.NewJWTTokenService(repos.User, repos.Token, "a-different-secret")
	foreign, err := otherSecret.Issue(ctx, user)
	require.NoError(t, err)

	// Signed with the right secret but never stored.
	unstored, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    user.ID.String(),
		"access": domain.AccessAuth,
		"iat":    time.Now().Unix(),
	}).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":    user.ID.String(),
		"access": domain.AccessAuth,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	unknownUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    uuid.NewString(),
		"access": domain.AccessAuth,
	}).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "wrong secret", token: foreign},
		{name: "not stored", token: unstored},
		{name: "alg none", token: unsigned},
		{name: "tampered signature", token: tampered},
		{name: "unknown user", token: unknownUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := tokens.Verify(ctx, tt.token)
			assert.ErrorIs(t, err, service.ErrInvalidToken)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
			assert.Nil(t, user)
		})
	}
}
