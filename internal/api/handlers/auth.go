package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dom/recipe-share/internal/api/middleware"
	"github.com/dom/recipe-share/internal/domain"
	"github.com/dom/recipe-share/internal/service"
)

type AuthHandler struct {
	authService  *service.AuthService
	tokenService service.TokenService
}

func NewAuthHandler(authService *service.AuthService, tokenService service.TokenService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenService: tokenService,
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID           string                `json:"id"`
	Email        string                `json:"email"`
	Username     string                `json:"username"`
	ShoppingList []domain.ShoppingItem `json:"shoppingList"`
	Recipes      []string              `json:"recipes,omitempty"`
}

type UserEnvelope struct {
	User UserResponse `json:"user"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func toUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:           user.ID.String(),
		Email:        user.Email,
		Username:     user.Username,
		ShoppingList: user.ShoppingList,
	}
	if resp.ShoppingList == nil {
		resp.ShoppingList = []domain.ShoppingItem{}
	}
	for _, id := range user.RecipeIDs() {
		resp.Recipes = append(resp.Recipes, id.String())
	}
	return resp
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, "auth.Register", err)
		return
	}

	writeJSON(w, http.StatusOK, UserEnvelope{User: toUserResponse(user)})
}

// Login verifies the credentials and opens a new session. The token is sent
// both in the body and in the Authorization header.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	user, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, "auth.Login", err)
		return
	}

	token, err := h.tokenService.Issue(r.Context(), user)
	if err != nil {
		writeError(w, "auth.Login", err)
		return
	}

	w.Header().Set("Authorization", token)
	writeJSON(w, http.StatusOK, LoginResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, "auth.Me", domain.ErrUnauthorized)
		return
	}

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, "auth.Me", err)
		return
	}

	writeJSON(w, http.StatusOK, UserEnvelope{User: toUserResponse(user)})
}

// Logout revokes the token the request was authenticated with.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	token, hasToken := middleware.GetToken(r.Context())
	if !ok || !hasToken {
		writeError(w, "auth.Logout", domain.ErrUnauthorized)
		return
	}

	if err := h.tokenService.Revoke(r.Context(), user, token); err != nil {
		writeError(w, "auth.Logout", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
