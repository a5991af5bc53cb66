package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shelter-training/maps-trainer/internal/auth"
	"github.com/shelter-training/maps-trainer/internal/catalog"
	"github.com/shelter-training/maps-trainer/internal/config"
	"github.com/shelter-training/maps-trainer/internal/storage"
	"github.com/shelter-training/maps-trainer/internal/training"
)

// Server represents the HTTP API server
type Server struct {
	config          config.ServerConfig
	router          *chi.Mux
	trainingService *training.Service
	authService     *auth.Service
	tokens          *auth.TokenManager
	authMiddleware  *AuthMiddleware
	lessonLoader    *catalog.Loader
	repo            storage.Repository
	events          *EventHub
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	trainingService *training.Service,
	authService *auth.Service,
	tokens *auth.TokenManager,
	loader *catalog.Loader,
	repo storage.Repository,
) *Server {
	s := &Server{
		config:          cfg,
		trainingService: trainingService,
		authService:     authService,
		tokens:          tokens,
		authMiddleware:  NewAuthMiddleware(tokens),
		lessonLoader:    loader,
		repo:            repo,
		events:          NewEventHub(),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration for the browser dashboard
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health checks (public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// Auth (public)
	r.Post("/api/v1/auth/register", s.handleRegister)
	r.Post("/api/v1/auth/login", s.handleLogin)

	// API v1 routes (require a bearer token)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware.Authenticate)

		r.Get("/auth/me", s.handleCurrentUser)

		r.Route("/lessons", func(r chi.Router) {
			r.Get("/", s.handleListLessons)
			r.Post("/initialize", s.handleInitializeLessons)
			r.Get("/{id}", s.handleGetLesson)
		})

		r.Route("/volunteers", func(r chi.Router) {
			r.Post("/", s.handleCreateVolunteer)
			r.Get("/me", s.handleCurrentVolunteer)
			r.Get("/me/progress", s.handleProgressHistory)
		})

		r.Post("/progress", s.handleUpdateProgress)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/events", s.handleEventsWS)
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
