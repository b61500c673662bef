package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/orderdesk/api/internal/config"
	"github.com/orderdesk/api/internal/database"
	"github.com/orderdesk/api/internal/handler"
	"github.com/orderdesk/api/internal/service"
	"github.com/orderdesk/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, store database.Store, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket route for dashboard live updates
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	// Orders
	orderHandler := handler.NewOrderHandler(
		service.NewOrders(store),
		service.NewStats(store),
		store,
		hub,
	)
	r.Route("/orders", orderHandler.RegisterRoutes)

	return r
}
