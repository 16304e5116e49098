package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dom/recipe-share/internal/api/middleware"
	"github.com/dom/recipe-share/internal/domain"
	"github.com/dom/recipe-share/internal/service"
)

type ShoppingListHandler struct {
	shoppingListService *service.ShoppingListService
}

func NewShoppingListHandler(shoppingListService *service.ShoppingListService) *ShoppingListHandler {
	return &ShoppingListHandler{shoppingListService: shoppingListService}
}

type ShoppingListResponse struct {
	ShoppingList []domain.ShoppingItem `json:"shoppingList"`
}

func (h *ShoppingListHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, "shoppingList.Get", domain.ErrUnauthorized)
		return
	}

	items, err := h.shoppingListService.Get(r.Context(), userID)
	if err != nil {
		writeError(w, "shoppingList.Get", err)
		return
	}

	writeJSON(w, http.StatusOK, ShoppingListResponse{ShoppingList: items})
}

func (h *ShoppingListHandler) Replace(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, "shoppingList.Replace", domain.ErrUnauthorized)
		return
	}

	var req ShoppingListResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	items, err := h.shoppingListService.Replace(r.Context(), userID, req.ShoppingList)
	if err != nil {
		writeError(w, "shoppingList.Replace", err)
		return
	}

	writeJSON(w, http.StatusOK, ShoppingListResponse{ShoppingList: items})
}
