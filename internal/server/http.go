package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/corpuskit/corpus/internal/errors"
	"github.com/corpuskit/corpus/internal/search"
	"github.com/corpuskit/corpus/pkg/version"
)

// HTTPConfig holds HTTP transport settings.
type HTTPConfig struct {
	Addr           string
	RequestTimeout time.Duration
}

// HTTPServer serves the retrieval API over HTTP.
type HTTPServer struct {
	echo    *echo.Echo
	service *Service
	cfg     HTTPConfig
	logger  *slog.Logger
}

// NewHTTPServer wires the service into an echo instance.
func NewHTTPServer(service *Service, cfg HTTPConfig) *HTTPServer {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	logger := slog.Default()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				slog.String("method", c.Request().Method),
				slog.String("uri", c.Request().RequestURI),
				slog.Int("status", c.Response().Status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))
			return err
		}
	})

	s := &HTTPServer{echo: e, service: service, cfg: cfg, logger: logger}
	s.registerRoutes()
	return s
}

func (s *HTTPServer) registerRoutes() {
	s.echo.GET("/healthz", s.handleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.GET("/collections", s.handleListCollections)
	v1.GET("/collections/:id/files", s.handleListFiles)
	v1.GET("/collections/:id/file", s.handleGetFile)
	v1.GET("/collections/:id/search", s.handleSearch)
}

// Start runs the server until ctx is canceled, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.cfg.Addr)
	}()

	s.logger.Info("http server started", slog.String("addr", s.cfg.Addr))

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// Handler exposes the HTTP handler for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.echo
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type fileResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type searchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *HTTPServer) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Version: version.Version})
}

func (s *HTTPServer) handleListCollections(c echo.Context) error {
	cols, err := s.service.ListCollections(s.requestCtx(c))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, cols)
}

func (s *HTTPServer) handleListFiles(c echo.Context) error {
	paths, err := s.service.ListFiles(s.requestCtx(c), c.Param("id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, paths)
}

func (s *HTTPServer) handleGetFile(c echo.Context) error {
	path := c.QueryParam("path")
	if path == "" {
		return s.writeError(c, errors.Validation("path query parameter is required", nil))
	}
	start, err := intParam(c, "start")
	if err != nil {
		return s.writeError(c, err)
	}
	end, err := intParam(c, "end")
	if err != nil {
		return s.writeError(c, err)
	}

	content, err := s.service.GetFile(s.requestCtx(c), c.Param("id"), path, start, end)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, fileResponse{Path: path, Content: content})
}

func (s *HTTPServer) handleSearch(c echo.Context) error {
	query := c.QueryParam("q")
	topK, err := intParam(c, "top_k")
	if err != nil {
		return s.writeError(c, err)
	}
	opts := search.Options{
		TopK:          topK,
		CaseSensitive: c.QueryParam("case_sensitive") == "true",
	}

	results, err := s.service.Search(s.requestCtx(c), c.Param("id"), query, opts)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, searchResponse{Query: query, Results: results})
}

// requestCtx bounds every request by the configured timeout. Cancellation of
// the returned context is tied to the request lifetime.
func (s *HTTPServer) requestCtx(c echo.Context) context.Context {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.cfg.RequestTimeout)
	// The handler chain is synchronous; releasing on request completion is
	// enough.
	c.Response().After(func() { cancel() })
	return ctx
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.Validation("invalid "+name+" parameter: "+raw, err).
			WithDetail(name, raw)
	}
	return v, nil
}

// writeError maps the error taxonomy onto HTTP status codes.
func (s *HTTPServer) writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.IsNotFound(err):
		status = http.StatusNotFound
	case errors.IsValidation(err):
		status = http.StatusBadRequest
	case errors.IsDecodeError(err):
		status = http.StatusUnprocessableEntity
	case errors.IsConflict(err):
		status = http.StatusConflict
	case errors.IsTimeout(err):
		status = http.StatusGatewayTimeout
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("error", err.Error()))
	}
	return c.JSON(status, errorResponse{Code: errors.GetCode(err), Message: err.Error()})
}
