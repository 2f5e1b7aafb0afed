// Package devserver is a local implementation of the workout backend
// contract, backed by SQLite. It exists so the client can be developed and
// tested end to end without the hosted service.
package devserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// defaultUserID is the single user the development backend serves.
const defaultUserID = 1

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     *Store
	gen       Generator
	log       *slog.Logger
	apiKey    string
	chunkSize int
	now       func() time.Time
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithGenerator replaces the template generator.
func WithGenerator(g Generator) Option {
	return func(s *Server) { s.gen = g }
}

// WithAPIKey sets the AI provider key used when none has been saved through
// /save_settings.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithChunkSize sets the approximate byte size of streamed text fragments.
func WithChunkSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// New creates a new Server with all routes configured.
func New(store *Store, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		store:     store,
		gen:       TemplateGenerator{},
		log:       log,
		chunkSize: 48,
		now:       time.Now,
		router:    chi.NewRouter(),
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
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/get_workout_history", s.handleWorkoutHistory)
	s.router.Get("/get_current_weekly_plan", s.handleCurrentWeeklyPlan)
	s.router.Get("/get_user_settings", s.handleGetUserSettings)
	s.router.Post("/generate_workout", s.handleGenerateWorkout)
	s.router.Post("/save_workout", s.handleSaveWorkout)
	s.router.Delete("/delete_workout/{id}", s.handleDeleteWorkout)
	s.router.Post("/save_settings", s.handleSaveCredential)
	s.router.Post("/save_user_settings", s.handleSaveUserSettings)
}
