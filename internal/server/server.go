package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"retention-dashboard/internal/handlers"
	"retention-dashboard/internal/services"
)

type Server struct {
	router      chi.Router
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

// PageHandlers carries the template-rendering handlers wired in by main,
// keeping the ui package out of this one.
type PageHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, pages *PageHandlers) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(pages)
	return s
}

func (s *Server) setupRoutes(pages *PageHandlers) {
	s.router.Get("/", pages.Dashboard)
	s.router.Get("/health", s.apiHandlers.HandleHealth)
	s.router.Get("/admin/stats", s.apiHandlers.HandleStats)

	// REST API
	s.router.Get("/api/data", s.apiHandlers.HandleData)

	// Datastar SSE
	s.router.Get("/sse/report", s.sseHandlers.HandleReport)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
