// Package web provides the HTTP server: the /api dataset endpoint and the
// static file delegate for everything else.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/JonMunkholm/charsetlab/internal/config"
	"github.com/JonMunkholm/charsetlab/internal/web/middleware"
)

// APIPath is the only route handled by the server itself.
const APIPath = "/api"

// Server is the HTTP server for the charset test harness.
type Server struct {
	cfg    *config.Config
	router *chi.Mux
	server *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

	// /api sets its own Access-Control-Allow-Origin on success.
	s.router.Use(preflightOnly(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})))
}

// preflightOnly applies mw to CORS preflight requests and passes every other
// request straight to the next handler.
func preflightOnly(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		preflight := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				preflight.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// setupRoutes configures all HTTP routes. The exact /api route wins over
// the static catch-all, which only answers GET and HEAD so other methods
// get 405.
func (s *Server) setupRoutes() {
	s.router.Get(APIPath, s.handleAPI)

	static := newStaticHandler(s.cfg.Paths.PublicDir)
	s.router.Get("/*", static.ServeHTTP)
	s.router.Head("/*", static.ServeHTTP)
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the root handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}
