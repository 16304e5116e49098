package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dom/recipe-share/internal/domain"
	"github.com/dom/recipe-share/internal/repository"
	"github.com/dom/recipe-share/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrRecipeNotFound = fmt.Errorf("recipe %w", domain.ErrNotFound)

var allowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png"}

// RecipeStore is the set of recipe mutations. Update and Delete only match
// recipes created by the requester; anything else is ErrRecipeNotFound.
type RecipeStore interface {
	Create(ctx context.Context, creatorID uuid.UUID, input RecipeInput) (*domain.Recipe, error)
	Update(ctx context.Context, requesterID, recipeID uuid.UUID, input RecipeInput) (*domain.Recipe, error)
	Delete(ctx context.Context, requesterID, recipeID uuid.UUID) (*domain.Recipe, error)
}

// EventPublisher receives recipe lifecycle events after they are persisted.
type EventPublisher interface {
	Publish(event domain.RecipeEvent)
}

type ImageUpload struct {
	Filename string
	Body     io.ReadSeeker
}

type RecipeInput struct {
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description" validate:"required"`
	ImgPath     string              `json:"imgPath" validate:"required"`
	Ingredients []domain.Ingredient `json:"ingredients" validate:"required,dive"`

	// Image, when set, replaces ImgPath with the URL of the stored upload.
	Image *ImageUpload `json:"-" validate:"-"`
}

type RecipeService struct {
	recipeRepo repository.RecipeRepository
	images     storage.ImageStore
	events     EventPublisher
}

func NewRecipeService(recipeRepo repository.RecipeRepository, images storage.ImageStore, events EventPublisher) *RecipeService {
	return &RecipeService{
		recipeRepo: recipeRepo,
		images:     images,
		events:     events,
	}
}

func (s *RecipeService) List(ctx context.Context) ([]*domain.Recipe, error) {
	return s.recipeRepo.GetAll(ctx)
}

func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func (s *RecipeService) Create(ctx context.Context, creatorID uuid.UUID, input RecipeInput) (*domain.Recipe, error) {
	contentType, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	uploaded, err := s.storeImage(ctx, &input, contentType)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	recipe := &domain.Recipe{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		ImgPath:     input.ImgPath,
		ImageOwned:  uploaded != "",
		Ingredients: datatypes.JSONSlice[domain.Ingredient](input.Ingredients),
		CreatorID:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		s.releaseImage(ctx, uploaded)
		return nil, err
	}

	s.publish(domain.RecipeCreated, recipe)
	return recipe, nil
}

func (s *RecipeService) Update(ctx context.Context, requesterID, recipeID uuid.UUID, input RecipeInput) (*domain.Recipe, error) {
	contentType, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	recipe, err := s.recipeRepo.GetByIDAndCreator(ctx, recipeID, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	uploaded, err := s.storeImage(ctx, &input, contentType)
	if err != nil {
		return nil, err
	}

	previousImage, previousOwned := recipe.ImgPath, recipe.ImageOwned
	recipe.Title = input.Title
	recipe.Description = input.Description
	if input.ImgPath != previousImage {
		recipe.ImgPath = input.ImgPath
		recipe.ImageOwned = uploaded != ""
	}
	recipe.Ingredients = datatypes.JSONSlice[domain.Ingredient](input.Ingredients)
	recipe.UpdatedAt = time.Now()

	if err := s.recipeRepo.Update(ctx, recipe); err != nil {
		s.releaseImage(ctx, uploaded)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if previousOwned && previousImage != recipe.ImgPath {
		s.releaseImage(ctx, previousImage)
	}

	s.publish(domain.RecipeUpdated, recipe)
	return recipe, nil
}

// Delete removes the recipe, and its image when it was uploaded for it, and
// returns the removed record.
func (s *RecipeService) Delete(ctx context.Context, requesterID, recipeID uuid.UUID) (*domain.Recipe, error) {
	recipe, err := s.recipeRepo.GetByIDAndCreator(ctx, recipeID, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if err := s.recipeRepo.Delete(ctx, recipe.ID, requesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if recipe.ImageOwned {
		s.releaseImage(ctx, recipe.ImgPath)
	}
	s.publish(domain.RecipeDeleted, recipe)
	return recipe, nil
}

// validate checks the input fields and, for uploads, the sniffed image type,
// which it returns. Nothing is stored yet.
func (s *RecipeService) validate(input RecipeInput) (string, error) {
	if input.Image != nil {
		input.ImgPath = input.Image.Filename
		if input.ImgPath == "" {
			input.ImgPath = "upload"
		}
	}

	if err := validateStruct(input); err != nil {
		return "", err
	}

	if input.Image == nil {
		return "", nil
	}

	mtype, err := mimetype.DetectReader(input.Image.Body)
	if err != nil {
		return "", fmt.Errorf("detect image type: %w", err)
	}
	if _, err := input.Image.Body.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind image: %w", err)
	}

	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return "", domain.NewValidationError("image", fmt.Sprintf("%s images are not accepted, use jpg or png", mtype.String()))
	}

	return mtype.String(), nil
}

// storeImage saves the upload, if any, and points input.ImgPath at it. It
// returns the stored path so callers can release it when a later step fails.
func (s *RecipeService) storeImage(ctx context.Context, input *RecipeInput, contentType string) (string, error) {
	if input.Image == nil {
		return "", nil
	}

	imgPath, err := s.images.Save(ctx, input.Image.Filename, contentType, input.Image.Body)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}

	input.ImgPath = imgPath
	return imgPath, nil
}

// releaseImage deletes an image best-effort. Failures are logged only.
func (s *RecipeService) releaseImage(ctx context.Context, imgPath string) {
	if imgPath == "" {
		return
	}
	if err := s.images.Delete(context.WithoutCancel(ctx), imgPath); err != nil {
		log.Printf("ERROR [recipe.releaseImage] imgPath=%s: %v", imgPath, err)
	}
}

func (s *RecipeService) publish(eventType domain.RecipeEventType, recipe *domain.Recipe) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.RecipeEvent{Type: eventType, Recipe: recipe})
}
