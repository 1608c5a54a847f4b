package api

import (
	"net/http"
	"sync"
	"time"

	"flagman/parser/internal/service"
	"flagman/parser/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the thin presentation shell over the crawl core. It owns the
// crawl session and serializes access to it; the session itself is not
// safe for concurrent use.
type Server struct {
	service *service.Service

	mu      sync.Mutex
	session *session.Session
}

func NewServer(svc *service.Service) *Server {
	return &Server{
		service: svc,
		session: session.New(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", s.handleStatus)
		r.Post("/session/reset", s.handleReset)
		r.Post("/categories", s.handleResolveCategories)
		r.Post("/links", s.handleCollectLinks)
		r.Post("/batch", s.handleRunBatch)
		r.Get("/export", s.handleExport)
	})

	return r
}
