// Package api provides the HTTP API server and handlers for the Guildhall application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/guildhallapp/guildhall-server/internal/media/images"
	"github.com/guildhallapp/guildhall-server/internal/search"
	"github.com/guildhallapp/guildhall-server/internal/sse"
	"github.com/guildhallapp/guildhall-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store               *store.Store
	services            *Services
	avatarStorage       *images.Storage
	memberIndex         *search.MemberIndex
	sseManager          *sse.Manager
	sseHandler          *sse.Handler
	registrationHandler *sse.RegistrationStatusHandler
	router              *chi.Mux
	api                 huma.API
	logger              *slog.Logger
	authRateLimiter     *RateLimiter
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(
	st *store.Store,
	services *Services,
	avatarStorage *images.Storage,
	memberIndex *search.MemberIndex,
	sseManager *sse.Manager,
	sseHandler *sse.Handler,
	registrationHandler *sse.RegistrationStatusHandler,
	logger *slog.Logger,
) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	// Web clients are served from their own origins (Tauri, dev servers),
	// so the API answers preflights for any origin. Auth is bearer-token
	// based, never cookie based, which keeps this safe.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Last-Event-ID"},
		MaxAge:         300,
	}))
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("Guildhall API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:               st,
		services:            services,
		avatarStorage:       avatarStorage,
		memberIndex:         memberIndex,
		sseManager:          sseManager,
		sseHandler:          sseHandler,
		registrationHandler: registrationHandler,
		router:              router,
		api:                 api,
		logger:              logger,
		authRateLimiter:     NewRateLimiter(20, time.Minute, 10),
	}

	s.registerHealthRoutes()
	s.registerInstanceRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerProfileRoutes()
	s.registerMemberRoutes()
	s.registerAdminRoutes()
	s.registerStreamRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// registerStreamRoutes wires the SSE endpoints directly on chi. Huma's
// request/response model does not fit long-lived streams.
func (s *Server) registerStreamRoutes() {
	// Authenticated event stream. EventSource clients cannot set headers,
	// so the access token is also accepted as a query parameter.
	s.router.Get("/api/v1/events", s.handleEventStream)

	// Pending users poll their approval status before they have a token.
	// User IDs are opaque, and only approved/denied flows through here.
	// Unauthenticated, so it shares the credential-endpoint rate limit.
	s.router.Route("/api/v1/auth/registration-status", func(r chi.Router) {
		r.Use(RateLimitMiddleware(s.authRateLimiter, s.logger))
		r.Get("/{userID}/stream", s.handleRegistrationStatusStream)
	})
}

func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	user, _, err := s.services.Auth.VerifyAccessToken(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	s.sseHandler.Stream(w, r, user.ID, user.IsAdmin())
}

func (s *Server) handleRegistrationStatusStream(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, "user ID required", http.StatusBadRequest)
		return
	}

	s.registrationHandler.ServeHTTP(w, r, userID)
}

// bearerToken extracts the token from an Authorization header, or "" when
// the header is missing or malformed.
func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

// checkAuthRateLimit enforces the per-IP limit on credential endpoints.
func (s *Server) checkAuthRateLimit(ip string) error {
	if ip == "" {
		return nil
	}
	if !s.authRateLimiter.Allow(ip) {
		s.logger.Warn("auth rate limit exceeded", "ip", ip)
		return huma.Error429TooManyRequests("Too many attempts. Please try again later.")
	}
	return nil
}
