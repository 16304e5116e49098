package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/dom/recipe-share/internal/api/middleware"
	"github.com/dom/recipe-share/internal/domain"
	"github.com/dom/recipe-share/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type RecipeHandler struct {
	recipeService *service.RecipeService
	maxUpload     int64
}

func NewRecipeHandler(recipeService *service.RecipeService, maxUploadMB int) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		maxUpload:     int64(maxUploadMB) << 20,
	}
}

type RecipesResponse struct {
	Recipes []*domain.Recipe `json:"recipes"`
}

type RecipeEnvelope struct {
	Recipe *domain.Recipe `json:"recipe"`
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipeService.List(r.Context())
	if err != nil {
		writeError(w, "recipe.List", err)
		return
	}

	if recipes == nil {
		recipes = []*domain.Recipe{}
	}
	writeJSON(w, http.StatusOK, RecipesResponse{Recipes: recipes})
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "recipe.Get", service.ErrRecipeNotFound)
		return
	}

	recipe, err := h.recipeService.Get(r.Context(), id)
	if err != nil {
		writeError(w, "recipe.Get", err)
		return
	}

	writeJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, "recipe.Create", domain.ErrUnauthorized)
		return
	}

	input, cleanup, err := h.decodeRecipe(w, r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	defer cleanup()

	recipe, err := h.recipeService.Create(r.Context(), userID, input)
	if err != nil {
		writeError(w, "recipe.Create", err)
		return
	}

	writeJSON(w, http.StatusCreated, RecipeEnvelope{Recipe: recipe})
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, "recipe.Update", domain.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "recipe.Update", service.ErrRecipeNotFound)
		return
	}

	input, cleanup, err := h.decodeRecipe(w, r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	defer cleanup()

	recipe, err := h.recipeService.Update(r.Context(), userID, id, input)
	if err != nil {
		writeError(w, "recipe.Update", err)
		return
	}

	writeJSON(w, http.StatusOK, RecipeEnvelope{Recipe: recipe})
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, "recipe.Delete", domain.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "recipe.Delete", service.ErrRecipeNotFound)
		return
	}

	recipe, err := h.recipeService.Delete(r.Context(), userID, id)
	if err != nil {
		writeError(w, "recipe.Delete", err)
		return
	}

	writeJSON(w, http.StatusOK, RecipeEnvelope{Recipe: recipe})
}

// decodeRecipe reads recipe fields from a JSON body, or from a multipart
// form carrying the fields as JSON in "recipe" and an optional "image" file.
// The returned cleanup releases the upload and must be called once the
// request is handled.
func (h *RecipeHandler) decodeRecipe(w http.ResponseWriter, r *http.Request) (service.RecipeInput, func(), error) {
	var input service.RecipeInput
	noop := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			return input, noop, errors.New("invalid request body")
		}
		return input, noop, nil
	}

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return input, noop, errors.New("invalid multipart form")
	}
	cleanup := func() { r.MultipartForm.RemoveAll() }

	raw := r.FormValue("recipe")
	if raw == "" {
		cleanup()
		return input, noop, errors.New("recipe field is required")
	}
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		cleanup()
		return input, noop, errors.New("invalid recipe field")
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return input, cleanup, nil
	case err != nil:
		cleanup()
		return input, noop, errors.New("invalid image upload")
	}

	input.Image = &service.ImageUpload{Filename: header.Filename, Body: file}
	return input, func() {
		file.Close()
		cleanup()
	}, nil
}
