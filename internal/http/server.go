// Package http provides the HTTP API for docsearchd.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docsearchd/internal/extraction"
	"github.com/fyrsmithlabs/docsearchd/internal/ingest"
	"github.com/fyrsmithlabs/docsearchd/internal/logging"
	"github.com/fyrsmithlabs/docsearchd/internal/search"
	"github.com/fyrsmithlabs/docsearchd/internal/vectorstore"
)

// Server provides HTTP endpoints for search and ingestion.
type Server struct {
	echo    *echo.Echo
	engine  *search.Engine
	ingest  *ingest.Service
	logger  *logging.Logger
	config  *Config
	metrics *HTTPMetrics
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// MaxUploadSize bounds multipart document uploads in bytes.
	MaxUploadSize int64
}

// NewServer creates a new HTTP server.
func NewServer(engine *search.Engine, ingestSvc *ingest.Service, logger *logging.Logger, cfg *Config) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("search engine cannot be nil")
	}
	if ingestSvc == nil {
		return nil, fmt.Errorf("ingest service cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg == nil {
		cfg = &Config{Host: "0.0.0.0", Port: 8080}
	}
	if cfg.MaxUploadSize == 0 {
		cfg.MaxUploadSize = 64 * 1024 * 1024
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	metrics := NewHTTPMetrics(logger.Underlying())

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%d", cfg.MaxUploadSize)))
	e.Use(metrics.MetricsMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Carry the request id into the request context so every
			// downstream log line is correlatable.
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			ctx := logging.ContextWithRequestID(c.Request().Context(), requestID)
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)

			logger.Info(ctx, "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
			)
			return err
		}
	})

	s := &Server{
		echo:    e,
		engine:  engine,
		ingest:  ingestSvc,
		logger:  logger.Named("http"),
		config:  cfg,
		metrics: metrics,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/search", s.handleSearch)
	v1.POST("/documents", s.handleIngest)
	v1.DELETE("/documents/:file_id", s.handleDelete)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleSearch(c echo.Context) error {
	var req search.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := s.engine.Search(c.Request().Context(), req)
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// IngestResponse is the response body for POST /api/v1/documents.
type IngestResponse struct {
	FileID        string `json:"file_id"`
	Format        string `json:"format"`
	ChunksIndexed int    `json:"chunks_indexed"`
	TotalPages    int    `json:"total_pages"`
}

func (s *Server) handleIngest(c echo.Context) error {
	orgID, err := strconv.ParseInt(c.FormValue("org_id"), 10, 64)
	if err != nil || orgID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "org_id form field must be a positive integer")
	}
	fileID := c.FormValue("file_id")
	if fileID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "file_id form field is required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file form field is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	result, err := s.ingest.IngestDocument(c.Request().Context(), src, ingest.Request{
		FileID:   fileID,
		OrgID:    orgID,
		Filename: fileHeader.Filename,
		DocURL:   c.FormValue("doc_url"),
	})
	if err != nil {
		return s.httpError(c, err)
	}

	return c.JSON(http.StatusCreated, IngestResponse{
		FileID:        result.FileID,
		Format:        result.Format,
		ChunksIndexed: result.ChunksIndexed,
		TotalPages:    result.TotalPages,
	})
}

// DeleteResponse is the response body for DELETE /api/v1/documents/:file_id.
type DeleteResponse struct {
	FileID  string `json:"file_id"`
	Deleted bool   `json:"deleted"`
}

func (s *Server) handleDelete(c echo.Context) error {
	fileID := c.Param("file_id")
	orgID, err := strconv.ParseInt(c.QueryParam("org_id"), 10, 64)
	if err != nil || orgID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "org_id query parameter must be a positive integer")
	}

	found, err := s.ingest.DeleteDocument(c.Request().Context(), fileID, orgID)
	if err != nil {
		return s.httpError(c, err)
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	return c.JSON(http.StatusOK, DeleteResponse{FileID: fileID, Deleted: true})
}

// httpError maps domain sentinels to HTTP status codes.
func (s *Server) httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, search.ErrInvalidRequest), errors.Is(err, ingest.ErrInvalidRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, extraction.ErrUnsupportedFormat):
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, extraction.ErrExtraction):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, vectorstore.ErrIndexUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "vector index unavailable")
	default:
		s.logger.Error(c.Request().Context(), "request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
