package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/app"
	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/metrics"
	"github.com/pharmaguard-server/internal/middleware"
)

// Extra time granted to explanation requests beyond the remote call timeout
const explainGrace = 5 * time.Second

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	logger        *logrus.Logger
	app           *app.App
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, logger *logrus.Logger, application *app.App) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(metrics.Middleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())

	server := &Server{
		configManager: configManager,
		logger:        logger,
		app:           application,
		router:        router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Handler exposes the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	cfg := s.configManager.GetConfig()

	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/parse", middleware.BodyLimit(cfg.Parser.MaxUploadBytes), s.handleParse)
		v1.POST("/explain", middleware.RequestTimeout(cfg.LLM.Timeout+explainGrace), s.handleExplain)
		v1.GET("/knowledge-base", s.handleKnowledgeBase)
		v1.GET("/drugs", s.handleDrugs)
	}
}
