package mockapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ginjaninja78/broai/internal/apperrors"
	"github.com/ginjaninja78/broai/internal/logging"
	"github.com/ginjaninja78/broai/internal/types"
)

// =============================================================================
// METRICS
// =============================================================================

var (
	// RequestsTotal counts served requests by route and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "broai",
			Subsystem: "mockapi",
			Name:      "requests_total",
			Help:      "Total number of requests served by the mock API",
		},
		[]string{"method", "route", "status_code"},
	)

	// RequestDuration tracks request latency by route.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "broai",
			Subsystem: "mockapi",
			Name:      "request_duration_seconds",
			Help:      "Duration of mock API requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// ImportsTotal counts import jobs by lifecycle event.
	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "broai",
			Subsystem: "mockapi",
			Name:      "imports_total",
			Help:      "Total number of import jobs by event",
		},
		[]string{"event"},
	)
)

// =============================================================================
// SERVER
// =============================================================================

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Server exposes a Store over HTTP with the same routes as the real API.
type Server struct {
	store  *Store
	logger *zap.SugaredLogger
	echo   *echo.Echo
}

// NewServer builds the HTTP server for a store. A nil logger discards
// everything.
func NewServer(store *Store, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{store: store, logger: logger, echo: e}
	e.HTTPErrorHandler = s.handleError
	e.Use(s.observe)
	s.registerRoutes()
	return s
}

// Handler returns the server as an http.Handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Infof("Mock API listening on %s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	e := s.echo
	e.GET("/health", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/kpis", s.getKPIs)
	e.GET("/suggestions", s.getSuggestions)

	e.POST("/imports", s.createImport)
	e.POST("/imports/:id/preview", s.getImportPreview)
	e.POST("/imports/:id/confirm", s.confirmImport)

	e.GET("/recipes", s.listRecipes)
	e.POST("/recipes", s.createRecipe)
	e.GET("/recipes/:id", s.getRecipe)
	e.PUT("/recipes/:id", s.updateRecipe)
	e.DELETE("/recipes/:id", s.deleteRecipe)
}

// observe logs and measures every request.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		req, res := c.Request(), c.Response()
		route := c.Path()
		elapsed := time.Since(start)
		RequestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(res.Status)).Inc()
		RequestDuration.WithLabelValues(req.Method, route).Observe(elapsed.Seconds())

		s.logger.Debugw("Request",
			"method", req.Method,
			"uri", req.RequestURI,
			"route", route,
			"status", res.Status,
			"response_time", elapsed,
		)
		return nil
	}
}

// handleError writes store and binding errors as JSON with the matching
// status code.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := ErrorResponse{Message: http.StatusText(code)}

	var apiErr *apperrors.APIError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status != 0:
		code = apiErr.Status
		body = ErrorResponse{Message: apiErr.Message, Details: apiErr.Details}
	case errors.As(err, &apiErr) && apiErr.Timeout:
		code = http.StatusGatewayTimeout
		body = ErrorResponse{Message: apiErr.Message}
	case errors.Is(err, apperrors.ErrNotFound):
		code = http.StatusNotFound
		body = ErrorResponse{Message: err.Error()}
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			body = ErrorResponse{Message: msg}
		} else {
			body = ErrorResponse{Message: http.StatusText(code)}
		}
	}

	if code >= http.StatusInternalServerError {
		s.logger.Errorw("Mock API is returning an error", "error", err, "status", code)
	}
	_ = c.JSON(code, body)
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getKPIs(c echo.Context) error {
	params := types.KPIParams{
		From:        c.QueryParam("from"),
		To:          c.QueryParam("to"),
		CompareFrom: c.QueryParam("compareFrom"),
		CompareTo:   c.QueryParam("compareTo"),
	}
	kpis, err := s.store.GetKPIs(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, kpis)
}

func (s *Server) getSuggestions(c echo.Context) error {
	list, err := s.store.GetSuggestions(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) createImport(c echo.Context) error {
	var req types.CreateImportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid import request")
	}
	job, err := s.store.CreateImport(c.Request().Context(), req)
	if err != nil {
		return err
	}
	ImportsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, job)
}

func (s *Server) getImportPreview(c echo.Context) error {
	preview, err := s.store.GetImportPreview(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, preview)
}

func (s *Server) confirmImport(c echo.Context) error {
	var req types.ConfirmImportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid confirm request")
	}
	ok, err := s.store.ConfirmImport(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	ImportsTotal.WithLabelValues("confirmed").Inc()
	return c.JSON(http.StatusOK, ok)
}

func (s *Server) listRecipes(c echo.Context) error {
	list, err := s.store.ListRecipes(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) getRecipe(c echo.Context) error {
	r, err := s.store.GetRecipe(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) createRecipe(c echo.Context) error {
	var r types.Recipe
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recipe")
	}
	saved, err := s.store.SaveRecipe(c.Request().Context(), r)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, saved)
}

func (s *Server) updateRecipe(c echo.Context) error {
	var r types.Recipe
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recipe")
	}
	r.ID = c.Param("id")
	saved, err := s.store.SaveRecipe(c.Request().Context(), r)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}

func (s *Server) deleteRecipe(c echo.Context) error {
	ok, err := s.store.DeleteRecipe(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok)
}
