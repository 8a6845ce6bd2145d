// Package rest wires the HTTP surface of the gateway.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"pmwiki-gateway/infrastructure/di"
	"pmwiki-gateway/interfaces/http/rest/handlers"
	"pmwiki-gateway/interfaces/http/rest/middleware"
	"pmwiki-gateway/pkg/common"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		logger:    container.Logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.container.Config.EnableMetrics {
		router.Use(middleware.Metrics(rt.container.Metrics))
	}

	if rt.container.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health and operational endpoints
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.container.Config.EnableMetrics {
		router.Handle("/metrics", rt.container.Metrics.Handler())
	}

	searchHandler := handlers.NewSearchHandler(rt.container.Upstream, rt.container.Store, rt.container.Metrics, rt.logger)
	historyHandler := handlers.NewHistoryHandler(rt.container.Store, rt.logger)
	bookmarkHandler := handlers.NewBookmarkHandler(rt.container.Store, rt.container.Metrics, rt.logger)
	graphHandler := handlers.NewGraphHandler(rt.container.Upstream, rt.logger)
	sectionHandler := handlers.NewSectionHandler(rt.container.Upstream, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", searchHandler.Search)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyHandler.List)
			r.Get("/lookup", historyHandler.Lookup)
			r.Delete("/{entryID}", historyHandler.Remove)
			r.Delete("/", historyHandler.Clear)
		})

		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", bookmarkHandler.List)
			r.Get("/grouped", bookmarkHandler.Grouped)
			r.Get("/count", bookmarkHandler.Count)
			r.Get("/{bookmarkID}", bookmarkHandler.Get)
			r.Post("/", bookmarkHandler.Add)
			r.Post("/toggle", bookmarkHandler.Toggle)
			r.Delete("/{bookmarkID}", bookmarkHandler.Remove)
			r.Delete("/", bookmarkHandler.Clear)
		})

		r.Get("/graph/topic-network", graphHandler.TopicNetwork)

		r.Get("/compare/{topic}", sectionHandler.Compare)
		r.Post("/generate-process", sectionHandler.GenerateProcess)
		r.Get("/sections/{sectionID}", sectionHandler.Get)
		r.Get("/standards", sectionHandler.Standards)
		r.Get("/standards/{standard}/sections", sectionHandler.ListByStandard)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"pmwiki-gateway"}`))
}

// readinessCheck reports readiness including the upstream's own health.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	upstream := "ok"
	if _, err := rt.container.Upstream.HealthCheck(req.Context()); err != nil {
		upstream = "unreachable"
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ready",
		"upstream": upstream,
		"counts":   rt.container.Store.Counts(),
	})
}
