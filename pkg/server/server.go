package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"reservewatch/pkg/config"
	"reservewatch/pkg/handlers"
	"reservewatch/pkg/logger"
	"reservewatch/pkg/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultIdleTimeout  = 60 * time.Second
	DefaultVersion      = "1.0.0"
)

// HTTPServer exposes the monitor's status over HTTP.
type HTTPServer struct {
	server *http.Server
	router *gin.Engine
	config *config.ServerConfig
}

// NewHTTPServer builds the gin engine and routes. It does not listen yet.
func NewHTTPServer(cfg *config.ServerConfig, app *config.AppConfig, status handlers.StatusProvider) *HTTPServer {
	if app != nil && app.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.GinZapLogger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:    []string{"Content-Type", middleware.HeaderRequestID},
		ExposeHeaders:   []string{middleware.HeaderRequestID},
		MaxAge:          12 * time.Hour,
	}))

	s := &HTTPServer{
		router: router,
		config: cfg,
	}
	s.setupRoutes(handlers.NewHandlerService(status, DefaultVersion))

	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}

	logger.Info("HTTP server initialized", zap.String("listen_addr", s.server.Addr))
	return s
}

func (s *HTTPServer) setupRoutes(h *handlers.HandlerService) {
	s.router.GET("/health", h.HealthCheck)

	api := s.router.Group("/api/v1")
	api.GET("/status", h.GetStatus)
}

// Handler returns the routed engine.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start listens and serves until Shutdown. A bind failure is returned
// immediately.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *HTTPServer) Serve(ln net.Listener) error {
	logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	return nil
}
