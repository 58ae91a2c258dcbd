package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/syncroom/syncroom"
	"github.com/syncroom/syncroom/internal/api/handlers"
	"github.com/syncroom/syncroom/internal/api/middleware"
)

// NewRouter creates and configures the HTTP router over the engine façade.
func NewRouter(logger zerolog.Logger, sync *syncroom.SyncRoom, browserBaseURL string) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS - allow all origins (browser sessions and agents call from anywhere)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := handlers.NewHandler(sync, browserBaseURL, logger)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", h.Health)

	r.Route("/rooms", func(r chi.Router) {
		r.Post("/", h.CreateRoom)
		r.Get("/", h.ListRooms)
		r.Get("/{id}", h.GetRoom)
		r.Post("/{id}/join", h.JoinRoom)
		r.Post("/{id}/leave", h.LeaveRoom)
		r.Post("/{id}/tools/{tool}", h.InvokeTool)
		r.Get("/{id}/events", h.GetEvents)
	})

	r.Get("/memory/{scope}/{actorId}", h.GetMemory)
	r.Post("/memory/{scope}/{actorId}", h.MergeMemory)

	// Push channel; the first frame names the room and joins it.
	r.Get("/ws", h.RoomSocket)

	return r
}
