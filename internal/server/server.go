package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lazypower/memoria/internal/auth"
	"github.com/lazypower/memoria/internal/events"
	"github.com/lazypower/memoria/internal/store"
	"go.uber.org/zap"
)

// Server is the memoria HTTP API server.
type Server struct {
	db      *store.DB
	issuer  *auth.Issuer
	events  events.Publisher
	log     *zap.Logger
	router  chi.Router
	version string
	started time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithEvents sets the publisher for interaction events. Default: events.Nop.
func WithEvents(p events.Publisher) Option {
	return func(s *Server) { s.events = p }
}

// WithLogger sets the request and error logger. Default: no-op.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a new Server with the given database, token issuer and
// version string.
func New(db *store.DB, issuer *auth.Issuer, version string, opts ...Option) *Server {
	s := &Server{
		db:      db,
		issuer:  issuer,
		events:  events.Nop{},
		log:     zap.NewNop(),
		version: version,
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.issuer))

			r.Get("/profiles/me", s.handleGetMe)
			r.Put("/profiles/me", s.handleUpdateMe)
			r.Get("/profiles/by-username/{username}", s.handleProfileByUsername)
			r.Get("/profiles/{userID}/memories", s.handleVisibleMemories)
			r.Get("/profiles/{userID}/memories/count", s.handleCountMemories)
			r.Get("/profiles/{userID}/periods", s.handleVisiblePeriods)

			r.Post("/memories", s.handleCreateMemory)
			r.Get("/memories/{memoryID}", s.handleGetMemory)
			r.Get("/memories/{memoryID}/likes", s.handleListLikes)
			r.Post("/memories/{memoryID}/likes", s.handleLike)
			r.Delete("/memories/{memoryID}/likes", s.handleUnlike)
			r.Get("/memories/{memoryID}/comments", s.handleListComments)
			r.Post("/memories/{memoryID}/comments", s.handleComment)
			r.Get("/memories/{memoryID}/tags", s.handleListTags)
			r.Put("/memories/{memoryID}/tags", s.handleSetTags)

			r.Post("/periods", s.handleCreatePeriod)

			r.Get("/friendships", s.handleListFriendships)
			r.Post("/friendships", s.handleRequestFriendship)
			r.Post("/friendships/{userID}/accept", s.handleAcceptFriendship)
			r.Post("/friendships/{userID}/reject", s.handleRejectFriendship)
			r.Post("/friendships/{userID}/block", s.handleBlock)
			r.Delete("/friendships/{userID}", s.handleDeleteFriendship)
			r.Get("/relationships/{userID}", s.handleRelationship)
			r.Get("/friends", s.handleFriends)

			r.Get("/lists", s.handleListLists)
			r.Post("/lists", s.handleCreateList)
			r.Post("/lists/{listID}/members", s.handleAddListMember)

			r.Post("/people", s.handleCreatePerson)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps store errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, store.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, store.ErrInvalid):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func notFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": what + " not found"})
}
