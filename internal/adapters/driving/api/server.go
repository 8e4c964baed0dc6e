// Package api exposes the engine over HTTP. The surface mirrors the
// CLI: ask questions, upload and reload documents, inspect the index.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/custodia-labs/askdoc/internal/core/ports/driving"
	"github.com/custodia-labs/askdoc/internal/loader"
	"github.com/custodia-labs/askdoc/internal/logger"
)

// Version reported by the health endpoint.
const Version = "0.1.0"

// Server is the HTTP API server.
type Server struct {
	echo   *echo.Echo
	engine driving.EngineService
	loader *loader.Loader
}

// NewServer creates the HTTP server over the given engine and loader.
func NewServer(engine driving.EngineService, docLoader *loader.Loader) (*Server, error) {
	if engine == nil {
		return nil, errors.New("api: engine service is required")
	}
	if docLoader == nil {
		return nil, errors.New("api: document loader is required")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	s := &Server{
		echo:   e,
		engine: engine,
		loader: docLoader,
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleHealth)
	s.echo.GET("/stats", s.handleStats)
	s.echo.GET("/files", s.handleFiles)
	s.echo.POST("/chat", s.handleChat)
	s.echo.POST("/upload", s.handleUpload)
	s.echo.POST("/reload", s.handleReload)
}

// Start runs the server until the context is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			logger.Warn("API shutdown: %v", err)
		}
	}()

	logger.Info("API listening on %s", addr)
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Handler exposes the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// envelope is the response wrapper shared by all endpoints.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondOK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondError(c echo.Context, status int, format string, args ...any) error {
	return c.JSON(status, envelope{Success: false, Error: fmt.Sprintf(format, args...)})
}
