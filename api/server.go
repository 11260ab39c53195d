package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/config"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/services"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(database database.Database) (Server, error) {
	c := config.New()

	port := config.GetString(c, "PORT", "5000")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()

	opts := []func(*router){withConfig(c), withStartupTime(startupTime)}
	mailer, err := services.NewResendMailerFromConfig(c)
	switch {
	case err == nil:
		opts = append(opts, withMailer(mailer))
	case errors.Is(err, services.ErrMailerNotConfigured):
		log.Warn().Msg("RESEND_API_KEY or RESEND_FROM_EMAIL not set, contact form is disabled")
	default:
		return Server{}, err
	}

	router, err := newRouter(database, opts...)
	if err != nil {
		return Server{}, err
	}

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 30)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 30)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 120)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,  // Timeout for reading the entire request
		WriteTimeout: writeTimeout, // Timeout for writing the response
		IdleTimeout:  idleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
	renderer    Renderer
	hasher      auth.PasswordHasher
	mailer      services.Mailer
	now         func() time.Time
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func withRenderer(renderer Renderer) func(*router) {
	return func(r *router) {
		r.renderer = renderer
	}
}

func withHasher(hasher auth.PasswordHasher) func(*router) {
	return func(r *router) {
		r.hasher = hasher
	}
}

func withMailer(mailer services.Mailer) func(*router) {
	return func(r *router) {
		r.mailer = mailer
	}
}

func withClock(now func() time.Time) func(*router) {
	return func(r *router) {
		r.now = now
	}
}

func newRouter(database database.Database, opts ...func(*router)) (*chi.Mux, error) {
	var router router
	for _, opt := range opts {
		opt(&router)
	}
	if router.config == nil {
		router.config = config.New()
	}
	if router.now == nil {
		router.now = time.Now
	}
	if router.renderer == nil {
		renderer, err := newTemplateRenderer()
		if err != nil {
			return nil, err
		}
		router.renderer = renderer
	}
	if router.hasher == nil {
		router.hasher = auth.NewPBKDF2Hasher(config.GetInt(router.config, "PASSWORD_HASH_ITERATIONS", auth.DefaultIterations))
	}

	secure := config.GetBool(router.config, "SECURE_COOKIES", false)
	ttl := time.Duration(config.GetInt(router.config, "SESSION_TTL_HOURS", 24)) * time.Hour
	sessions, err := auth.NewSessionManager(
		config.GetString(router.config, "SECRET_KEY", ""),
		auth.WithTTL(ttl),
		auth.WithSecureCookie(secure),
		auth.WithClock(router.now),
	)
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}

	adminIDs, err := config.GetUintList(router.config, "ADMIN_IDS", []uint{1})
	if err != nil {
		return nil, fmt.Errorf("admin set: %w", err)
	}
	admins := auth.NewAdminSet(adminIDs...)

	handlers := initializeHandlers(handlerDeps{
		database:  database,
		accounts:  auth.NewAccounts(router.hasher),
		sessions:  sessions,
		admins:    admins,
		renderer:  router.renderer,
		gravatar:  services.NewGravatar(),
		mailer:    router.mailer,
		contactTo: config.GetStringList(router.config, "CONTACT_EMAIL", nil),
		now:       router.now,
	})

	authMiddleware := newAuthMiddleware(database, sessions, admins, router.renderer)
	responder := NewResponder(log.With().Str("handlerName", "router").Logger(), router.renderer, admins)

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(ColoredHTTPLoggingMiddleware(config.GetBool(router.config, "LOG_PRETTY", false)))
	chiRouter.Use(authMiddleware.loadUser)

	acceptedOrigins := config.GetStringList(router.config, "ACCEPTED_ORIGINS", nil)
	chiRouter.Use(OriginCheckMiddleware(acceptedOrigins, responder))

	chiRouter.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responder.WriteError(w, r, errs.NewNotFoundError("page not found"))
	})
	chiRouter.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responder.WriteError(w, r, errs.NewApiErr(http.StatusMethodNotAllowed, "method not allowed"))
	})

	requireLoginToRead := config.GetBool(router.config, "REQUIRE_LOGIN_TO_READ", false)
	setupRoutes(chiRouter, handlers, authMiddleware, requireLoginToRead)

	log.Info().
		Int("admins", len(admins)).
		Bool("requireLoginToRead", requireLoginToRead).
		Time("startupTime", router.startupTime).
		Msg("router initialized")

	return chiRouter, nil
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
