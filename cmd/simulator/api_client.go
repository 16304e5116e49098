package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	serverURL  string
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(serverURL string) *APIClient {
	serverURL = strings.TrimRight(serverURL, "/")
	return &APIClient{
		serverURL: serverURL,
		baseURL:   serverURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Recipes  []string `json:"recipes"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Ingredient struct {
	Name string `json:"name"`
}

type Recipe struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	ImgPath     string       `json:"imgPath"`
	Ingredients []Ingredient `json:"ingredients"`
	CreatorID   string       `json:"creatorId"`
}

type ShoppingItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// StatusError carries the status and body of an unexpected response
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed (status %d): %s", e.Op, e.Status, e.Body)
}

// Register creates a new user account
func (c *APIClient) Register(email, username, password string) (*User, error) {
	body := map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	}

	var result struct {
		User User `json:"user"`
	}
	if err := c.do(http.MethodPost, "/users", body, "", http.StatusOK, "register", &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

// Login opens a session and returns its token
func (c *APIClient) Login(email, password string) (*User, string, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var result LoginResponse
	if err := c.do(http.MethodPost, "/users/login", body, "", http.StatusOK, "login", &result); err != nil {
		return nil, "", err
	}
	return &result.User, result.Token, nil
}

// Me returns the user behind token
func (c *APIClient) Me(token string) (*User, error) {
	var result struct {
		User User `json:"user"`
	}
	if err := c.do(http.MethodGet, "/users/me", nil, token, http.StatusOK, "me", &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

// Logout revokes token
func (c *APIClient) Logout(token string) error {
	return c.do(http.MethodDelete, "/users/me/token", nil, token, http.StatusOK, "logout", nil)
}

// ReplaceShoppingList overwrites the user's shopping list
func (c *APIClient) ReplaceShoppingList(token string, items []ShoppingItem) error {
	body := map[string]interface{}{"shoppingList": items}
	return c.do(http.MethodPut, "/users/me/shopping-list", body, token, http.StatusOK, "shopping list", nil)
}

// CreateRecipe publishes a new recipe
func (c *APIClient) CreateRecipe(token string, recipe Recipe) (*Recipe, error) {
	var result struct {
		Recipe Recipe `json:"recipe"`
	}
	if err := c.do(http.MethodPost, "/recipes", recipe, token, http.StatusCreated, "create recipe", &result); err != nil {
		return nil, err
	}
	return &result.Recipe, nil
}

// UpdateRecipe replaces the recipe fields
func (c *APIClient) UpdateRecipe(token, id string, recipe Recipe) (*Recipe, error) {
	var result struct {
		Recipe Recipe `json:"recipe"`
	}
	if err := c.do(http.MethodPatch, "/recipes/"+id, recipe, token, http.StatusOK, "update recipe", &result); err != nil {
		return nil, err
	}
	return &result.Recipe, nil
}

// DeleteRecipe removes the recipe
func (c *APIClient) DeleteRecipe(token, id string) error {
	return c.do(http.MethodDelete, "/recipes/"+id, nil, token, http.StatusOK, "delete recipe", nil)
}

// GetRecipe fetches one recipe
func (c *APIClient) GetRecipe(id string) (*Recipe, error) {
	var result Recipe
	if err := c.do(http.MethodGet, "/recipes/"+id, nil, "", http.StatusOK, "get recipe", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListRecipes fetches every recipe
func (c *APIClient) ListRecipes() ([]Recipe, error) {
	var result struct {
		Recipes []Recipe `json:"recipes"`
	}
	if err := c.do(http.MethodGet, "/recipes", nil, "", http.StatusOK, "list recipes", &result); err != nil {
		return nil, err
	}
	return result.Recipes, nil
}

// FeedURL returns the websocket URL of the recipe feed
func (c *APIClient) FeedURL() string {
	return "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws"
}

// HTTP helpers

func (c *APIClient) do(method, path string, body interface{}, token string, wantStatus int, op string, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
