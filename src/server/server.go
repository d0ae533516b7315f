package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"deviation-dashboard/src/logger"
	"deviation-dashboard/src/models"
	"deviation-dashboard/src/service"
)

// -----------------------------------------------------------------------------
// WebServer
// -----------------------------------------------------------------------------

type WebServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Service *service.DeviationService

	engine *gin.Engine
	http   *http.Server
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewWebServer(cfg *models.MConfig, svc *service.DeviationService, log *logger.Logger) *WebServer {
	// Set Gin mode
	if !strings.EqualFold(cfg.LogLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &WebServer{
		Config:  cfg,
		Logger:  log,
		Service: svc,
		engine:  gin.Default(),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *WebServer) setupRoutes() {
	// Dashboard pages
	s.engine.GET("/", s.getIndex)
	s.engine.GET("/chart", s.getChart)

	// REST API endpoints
	s.engine.GET("/api/deviation", s.getDeviation)
	s.engine.GET("/api/summary", s.getSummary)
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/config", s.getConfig)

	// Prometheus scrape endpoint
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *WebServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop drains in-flight requests before returning.
func (s *WebServer) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	s.Logger.Info("Shutting down server")
	return s.http.Shutdown(ctx)
}
