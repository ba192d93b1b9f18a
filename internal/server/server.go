package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nicolasrp432/PlaywrongIa/internal/repositories"
	"github.com/nicolasrp432/PlaywrongIa/internal/services"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
	"github.com/nicolasrp432/PlaywrongIa/internal/store"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows the route patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

const (
	shutdownTimeout = 5 * time.Second
	sweepInterval   = time.Hour
)

// Options holds the collaborators of a [Server].
type Options struct {
	Store   *store.Store
	Service services.MovieService // used to describe movies added to favorites

	// Sessions and Favorites may be nil when no database is configured; every request is then anonymous.
	Sessions  *repositories.SessionRepository
	Favorites *repositories.FavoriteRepository

	// Auth is nil when login is disabled.
	Auth   *Authenticator
	Logger *log.Logger
}

// Server is the JSON catalog server.
type Server struct {
	store     *store.Store
	svc       services.MovieService
	sessions  *repositories.SessionRepository
	favorites *repositories.FavoriteRepository
	auth      *Authenticator
	logger    *log.Logger
	router    *BasicRouter
}

// New builds a server and registers its routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	s := &Server{
		store:     opts.Store,
		svc:       opts.Service,
		sessions:  opts.Sessions,
		favorites: opts.Favorites,
		auth:      opts.Auth,
		logger:    logger.WithPrefix("server"),
		router:    NewBasicRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(LoggingMiddleware(s.logger), SessionMiddleware(s.sessions, s.logger))

	r.HandleFunc(http.MethodGet, "/{$}", s.handleHome)
	r.HandleFunc(http.MethodGet, "/movie/{id}", s.handleMovie)
	r.HandleFunc(http.MethodGet, "/search", s.handleSearch)
	r.HandleFunc(http.MethodGet, "/genres", s.handleGenres)
	r.HandleFunc(http.MethodGet, "/404", s.handleNotFound)

	protected := RequireAuth("/")
	r.Handle(http.MethodGet, "/favorites", protected(http.HandlerFunc(s.handleListFavorites)))
	r.Handle(http.MethodPost, "/favorites/{id}", protected(http.HandlerFunc(s.handleAddFavorite)))
	r.Handle(http.MethodDelete, "/favorites/{id}", protected(http.HandlerFunc(s.handleRemoveFavorite)))

	if s.auth != nil {
		r.Handler(s.auth)
	}

	r.HandleFunc("", "/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/404", http.StatusFound)
	})
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
//
// ready, when non-nil, receives the bound address once the listener is open.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(addr string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	if ready != nil {
		ready(ln.Addr().String())
	}

	if s.auth != nil {
		go s.sweep(ctx)
	}

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("error shutting down server", "error", err)
		return err
	}

	s.logger.Info("server stopped")
	return nil
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	s.auth.Sweep()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.auth.Sweep()
		}
	}
}
