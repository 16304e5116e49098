package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dom/recipe-share/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email    string
	username string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		email:    fmt.Sprintf("cook_%s@example.com", suffix),
		username: fmt.Sprintf("cook_%s", suffix),
		password: "testpassword123",
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		Username:     b.username,
		PasswordHash: string(hashedPassword),
		ShoppingList: datatypes.JSONSlice[domain.ShoppingItem]{},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Omit("Tokens", "Recipes").Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// LoginResponse matches the API login response
type LoginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
	} `json:"user"`
}

// BuildAndAuthenticate registers a user via API, logs in and returns the user and token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	resp := PostJSON(t, ts.APIURL("/users"), "", map[string]string{
		"email":    b.email,
		"username": b.username,
		"password": b.password,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected register status code: %d", resp.StatusCode)
	}

	resp = PostJSON(t, ts.APIURL("/users/login"), "", map[string]string{
		"email":    b.email,
		"password": b.password,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(loginResp.User.ID)
	user := &domain.User{
		ID:       userID,
		Email:    loginResp.User.Email,
		Username: loginResp.User.Username,
	}

	return user, loginResp.Token
}

// RecipeBuilder creates test recipes with a builder pattern
type RecipeBuilder struct {
	creator     *domain.User
	title       string
	description string
	imgPath     string
	ingredients []domain.Ingredient
}

// NewRecipeBuilder creates a new RecipeBuilder with default values
func NewRecipeBuilder() *RecipeBuilder {
	return &RecipeBuilder{
		title:       "Pancakes",
		description: "Fluffy weekend pancakes",
		imgPath:     "http://localhost:8080/images/pancakes.png",
		ingredients: []domain.Ingredient{{Name: "flour"}, {Name: "milk"}, {Name: "egg"}},
	}
}

// WithCreator sets the owning user
func (b *RecipeBuilder) WithCreator(user *domain.User) *RecipeBuilder {
	b.creator = user
	return b
}

// WithTitle sets the title
func (b *RecipeBuilder) WithTitle(title string) *RecipeBuilder {
	b.title = title
	return b
}

// WithImgPath sets the image path
func (b *RecipeBuilder) WithImgPath(imgPath string) *RecipeBuilder {
	b.imgPath = imgPath
	return b
}

// WithIngredients sets the ingredient names
func (b *RecipeBuilder) WithIngredients(names ...string) *RecipeBuilder {
	b.ingredients = nil
	for _, name := range names {
		b.ingredients = append(b.ingredients, domain.Ingredient{Name: name})
	}
	return b
}

// Build creates the recipe in the database
func (b *RecipeBuilder) Build(t *testing.T, db *gorm.DB) *domain.Recipe {
	t.Helper()

	if b.creator == nil {
		t.Fatal("recipe creator is required")
	}

	recipe := &domain.Recipe{
		ID:          uuid.New(),
		Title:       b.title,
		Description: b.description,
		ImgPath:     b.imgPath,
		Ingredients: datatypes.JSONSlice[domain.Ingredient](b.ingredients),
		CreatorID:   b.creator.ID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}

	return recipe
}

// PostJSON sends a JSON POST, adding the token as a bearer credential when set
func PostJSON(t *testing.T, url, token string, body interface{}) *http.Response {
	t.Helper()
	return DoJSON(t, http.MethodPost, url, token, body)
}

// DoJSON sends a JSON request with the given method
func DoJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// Amount returns a pointer to a shopping item amount
func Amount(v float64) *float64 {
	return &v
}

// PNGImage returns a small encoded PNG
func PNGImage(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, G: 120, B: 40, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// MemoryImageStore is an in-memory image store for service tests
type MemoryImageStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	SaveErr   error
	DeleteErr error
}

// NewMemoryImageStore creates an empty MemoryImageStore
func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{objects: make(map[string][]byte)}
}

// Save stores the body under a unique path
func (m *MemoryImageStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if m.SaveErr != nil {
		return "", m.SaveErr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	imgPath := fmt.Sprintf("mem://images/%s-%s", uuid.New().String()[:8], strings.ReplaceAll(name, "/", "_"))
	m.objects[imgPath] = data
	return imgPath, nil
}

// Delete removes a stored image
func (m *MemoryImageStore) Delete(ctx context.Context, imgPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleted = append(m.deleted, imgPath)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.objects, imgPath)
	return nil
}

// Has reports whether imgPath is stored
func (m *MemoryImageStore) Has(imgPath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[imgPath]
	return ok
}

// Count returns the number of stored images
func (m *MemoryImageStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Deleted returns every path passed to Delete
func (m *MemoryImageStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// EventRecorder collects published recipe events
type EventRecorder struct {
	mu     sync.Mutex
	events []domain.RecipeEvent
}

// Publish records the event
func (r *EventRecorder) Publish(event domain.RecipeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns the recorded events in order
func (r *EventRecorder) Events() []domain.RecipeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.RecipeEvent(nil), r.events...)
}
