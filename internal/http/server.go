package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/sessions/internal/auth/http"
	authUseCase "github.com/allisson/sessions/internal/auth/usecase"
	"github.com/allisson/sessions/internal/config"
	"github.com/allisson/sessions/internal/metrics"
	userHTTP "github.com/allisson/sessions/internal/user/http"
)

// Server represents the HTTP server
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server. The router is installed by SetupRouter.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with the middleware chain and every route.
//
// Middleware order: recovery, request id, logging, CORS, HTTP metrics,
// authentication. Authentication runs for every route and never rejects;
// protected routes add RequireAuthentication and the per-user rate limiter.
// ctx bounds the lifetime of the rate limiter cleanup goroutines.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	sessionHandler *authHTTP.SessionHandler,
	userHandler *userHTTP.UserHandler,
	sessionUseCase authUseCase.SessionUseCase,
	cookies *authHTTP.CookieTransport,
	metricsProvider *metrics.Provider,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metricsProvider.HTTPMiddleware())
	}

	router.Use(authHTTP.AuthenticationMiddleware(sessionUseCase, cookies, authHTTP.DefaultPublicPaths, s.logger))

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// Unauthenticated endpoints share one per-IP limiter
	publicLimits := []gin.HandlerFunc{}
	if cfg.RateLimitLoginEnabled {
		publicLimits = append(publicLimits, authHTTP.IPRateLimitMiddleware(
			ctx,
			cfg.RateLimitLoginRequestsPerSec,
			cfg.RateLimitLoginBurst,
			s.logger,
		))
	}

	protected := []gin.HandlerFunc{authHTTP.RequireAuthentication(s.logger)}
	if cfg.RateLimitEnabled {
		protected = append(protected, authHTTP.RateLimitMiddleware(
			ctx,
			cfg.RateLimitRequestsPerSec,
			cfg.RateLimitBurst,
			s.logger,
		))
	}

	auth := router.Group("/auth")
	{
		auth.POST("/login", withHandler(publicLimits, sessionHandler.LoginHandler)...)
		auth.POST("/refresh", withHandler(publicLimits, sessionHandler.RefreshHandler)...)
		auth.POST("/logout", sessionHandler.LogoutHandler)
		auth.POST("/logout-all", sessionHandler.LogoutAllHandler)
		auth.GET("/status", sessionHandler.StatusHandler)
		auth.GET("/events", withHandler(protected, sessionHandler.ListEventsHandler)...)
	}

	v1 := router.Group("/v1")
	{
		v1.POST("/users", withHandler(publicLimits, userHandler.RegisterHandler)...)

		me := v1.Group("/users/me", protected...)
		{
			me.GET("", userHandler.MeHandler)
			me.PUT("/password", userHandler.ChangePasswordHandler)
			me.DELETE("", userHandler.DeleteHandler)
		}
	}

	s.router = router
}

// withHandler returns a fresh slice of middlewares followed by handler.
func withHandler(middlewares []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(middlewares)+1)
	chain = append(chain, middlewares...)
	return append(chain, handler)
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router is not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports 503 until the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
