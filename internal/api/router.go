package api

import (
	"net/http"

	"github.com/dom/recipe-share/internal/api/handlers"
	"github.com/dom/recipe-share/internal/api/middleware"
	"github.com/dom/recipe-share/internal/config"
	"github.com/dom/recipe-share/internal/service"
	"github.com/dom/recipe-share/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the HTTP surface. imageDir is served under /images/ when
// non-empty (local image storage).
func NewRouter(services *service.Services, hub *websocket.Hub, imageDir string, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	if imageDir != "" {
		r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(imageDir))))
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, services.Tokens)
	recipeHandler := handlers.NewRecipeHandler(services.Recipes, cfg.MaxUploadMB)
	shoppingListHandler := handlers.NewShoppingListHandler(services.ShoppingList)
	wsHandler := handlers.NewWebSocketHandler(hub, cfg.CORSAllowedOrigins)

	authenticate := middleware.Auth(services.Tokens)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", authHandler.Register)
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/me", authHandler.Me)
				r.Delete("/me/token", authHandler.Logout)
				r.Get("/me/shopping-list", shoppingListHandler.Get)
				r.Put("/me/shopping-list", shoppingListHandler.Replace)
			})
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.List)
			r.Get("/{id}", recipeHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/", recipeHandler.Create)
				r.Patch("/{id}", recipeHandler.Update)
				r.Delete("/{id}", recipeHandler.Delete)
			})
		})

		// Recipe feed
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
