package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/sitesearch/index"
	"github.com/jonwraymond/sitesearch/search"
)

// HTTPOptions configures NewHTTPHandler.
type HTTPOptions struct {
	// Gatherer backs GET /metrics. If nil, the endpoint is not mounted.
	Gatherer prometheus.Gatherer

	// EnableReindex mounts POST /api/reindex.
	EnableReindex bool
}

// NewHTTPHandler returns the HTTP surface:
//
//	GET  /api/search?q=&limit=&type=&scores=
//	GET  /api/stats
//	POST /api/reindex
//	GET  /healthz
//	GET  /metrics
//	POST /mcp
//	POST /mcp/sse
func NewHTTPHandler(s *Server, opts HTTPOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(s.logger)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/healthz" || p == "/metrics"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Int64("latency_ms", v.Latency.Milliseconds()),
			}
			if v.Error != nil {
				s.logger.Error("request failed", append(attrs, slog.String("error", v.Error.Error()))...)
				return nil
			}
			s.logger.Debug("request completed", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	h := &httpHandlers{s: s}
	e.GET("/api/search", h.search)
	e.GET("/api/stats", h.stats)
	e.GET("/healthz", h.health)
	if opts.EnableReindex {
		e.POST("/api/reindex", h.reindex)
	}
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	e.POST("/mcp", echo.WrapHandler(MCPHandler(s)))
	e.POST("/mcp/sse", echo.WrapHandler(SSEHandler(s)))

	return e
}

type httpHandlers struct {
	s *Server
}

func (h *httpHandlers) search(c echo.Context) error {
	query := c.QueryParam("q")

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = min(n, MaxLimit)
	}

	t := index.Type(strings.TrimSpace(c.QueryParam("type")))
	if t != "" && !t.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown type "+strconv.Quote(string(t)))
	}

	withScores, _ := strconv.ParseBool(c.QueryParam("scores"))

	hits := h.s.Search(query, limit, t)
	return c.JSON(http.StatusOK, NewSearchResponse(query, t, hits, withScores))
}

func (h *httpHandlers) stats(c echo.Context) error {
	stats, err := h.s.Stats()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *httpHandlers) reindex(c echo.Context) error {
	stats, err := h.s.Reindex(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *httpHandlers) health(c echo.Context) error {
	if err := h.s.HealthCheck(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"status": "starting"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.s.engine.Version(),
	})
}

type errorBody struct {
	Error string `json:"error"`
}

// errorHandler maps domain errors to status codes and keeps internal
// details out of 5xx bodies.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "internal error"

		var he *echo.HTTPError
		switch {
		case errors.As(err, &he):
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(status)
			}
		case errors.Is(err, ErrNotReady):
			status, msg = http.StatusServiceUnavailable, err.Error()
		case errors.Is(err, ErrNoSource):
			status, msg = http.StatusNotImplemented, err.Error()
		case errors.Is(err, search.ErrRebuildFailed):
			status, msg = http.StatusBadGateway, "rebuild failed; previous index kept"
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request error", slog.Int("status", status), slog.String("error", err.Error()))
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, errorBody{Error: msg})
	}
}
