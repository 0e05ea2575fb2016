// Package internal wires the forecaster HTTP server together.
package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/leadflow/forecaster/internal/api"
	"github.com/leadflow/forecaster/internal/config"
	"github.com/leadflow/forecaster/internal/history"
	"github.com/leadflow/forecaster/internal/prom"
	"github.com/leadflow/forecaster/internal/web"
	"github.com/leadflow/forecaster/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	pingTimeout     = 2 * time.Second
	rateLimitExpiry = 3 * time.Minute
)

// Server serves the forecaster pages and API.
type Server struct {
	Version string

	config    *config.Config
	logs      *logger.LogBuffer
	store     history.Store
	clock     clockwork.Clock
	echo      *echo.Echo
	startedAt time.Time
}

// New creates a server. store may be nil, which disables forecast history.
func New(
	version string, logStore *logger.LogBuffer, cfg *config.Config, store history.Store,
	clock clockwork.Clock,
) (*Server, error) {
	logger.SetLogrus(cfg.Log)

	renderer, err := web.NewRenderer(cfg.TemplatesDir)
	if err != nil {
		return nil, errors.Wrap(err, "loading page templates")
	}

	s := &Server{
		Version:   version,
		config:    cfg,
		logs:      logStore,
		store:     store,
		clock:     clock,
		startedAt: clock.Now(),
	}
	s.echo = s.newEcho(renderer)
	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) newEcho(renderer echo.Renderer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger = logger.New()
	e.Logger.SetPrefix("echo")
	e.HTTPErrorHandler = api.JSONErrorHandler
	e.Renderer = renderer

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.WithFields(log.Fields{
				logger.RequestIDField: v.RequestID,
				"status":     v.Status,
				"latency":    v.Latency.String(),
			}).Debugf("%s %s", v.Method, v.URI)
			return nil
		},
	}))
	e.Use(prom.Middleware())
	e.Use(middleware.Recover())
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "same-origin",
	}))
	if s.config.RateLimit.Enabled() {
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: func(c echo.Context) bool {
				return !strings.HasPrefix(c.Path(), "/api/")
			},
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(s.config.RateLimit.RequestsPerSecond),
				Burst:     s.config.RateLimit.Burst,
				ExpiresIn: rateLimitExpiry,
			}),
		}))
	}

	e.GET("/", s.getForecastPage)
	e.GET("/incremental", s.getIncrementalPage)

	apiGroup := e.Group("/api")
	apiGroup.POST("/forecast", api.Route(s.postForecast))
	apiGroup.POST("/incremental", api.Route(s.postIncremental))
	apiGroup.POST("/scenarios", api.Route(s.postScenarios))
	apiGroup.GET("/forecasts", api.Route(s.getForecasts))
	apiGroup.GET("/forecasts/:id", api.Route(s.getForecast))

	e.GET("/health", s.getHealth)
	e.GET("/info", api.Route(s.getInfo))
	e.GET("/config", api.Route(s.getConfig))
	e.GET("/logs", api.Route(s.getLogs))
	e.GET("/metrics", prom.Handler())

	return e
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log.Infof("forecaster %s (built with %s)", s.Version, runtime.Version())

	if s.store != nil {
		pruner := history.NewPruner(s.store, s.clock,
			time.Duration(s.config.History.Retention), time.Duration(s.config.History.PruneInterval))
		if err := pruner.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := pruner.Stop(); err != nil {
				log.WithError(err).Error("failed to stop history pruner")
			}
		}()
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		addr := fmt.Sprintf("0.0.0.0:%d", s.config.Port)
		log.Infof("listening on %s", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serving HTTP")
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Wrap(s.echo.Shutdown(shutdownCtx), "shutting down HTTP server")
	})
	return group.Wait()
}

// Info describes the running server.
type Info struct {
	Version   string    `json:"version"`
	GoVersion string    `json:"go_version"`
	StartedAt time.Time `json:"started_at"`
	History   string    `json:"history"`
}

func (s *Server) historyBackend() string {
	switch {
	case s.store == nil:
		return "disabled"
	case s.config.DB.Enabled():
		return "postgres"
	default:
		return "memory"
	}
}

func (s *Server) getInfo(echo.Context) (interface{}, error) {
	return Info{
		Version:   s.Version,
		GoVersion: runtime.Version(),
		StartedAt: s.startedAt,
		History:   s.historyBackend(),
	}, nil
}

func (s *Server) getConfig(echo.Context) (interface{}, error) {
	bs, err := s.config.Printable()
	if err != nil {
		return nil, err
	}
	return json.RawMessage(bs), nil
}

// Health is the body of the health check.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	History string `json:"history"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) getHealth(c echo.Context) error {
	health := Health{Status: "healthy", Version: s.Version, History: s.historyBackend()}
	if s.store != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			log.WithError(err).Warn("health check failed")
			health.Status = "unhealthy"
			health.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, health)
		}
	}
	return c.JSON(http.StatusOK, health)
}

func (s *Server) getLogs(c echo.Context) (interface{}, error) {
	args := struct {
		LessThanID    *int    `query:"less_than_id"`
		GreaterThanID *int    `query:"greater_than_id"`
		Tail          *int    `query:"tail"`
		Level         *string `query:"level"`
		RequestID     *string `query:"request_id"`
	}{}
	if err := api.BindArgs(&args, c); err != nil {
		return nil, err
	}

	q := logger.Query{AfterID: args.GreaterThanID, BeforeID: args.LessThanID}
	if args.Tail != nil {
		switch {
		case *args.Tail < 0:
			return nil, api.AsValidationError("tail must not be negative")
		case *args.Tail == 0:
			return make([]*logger.Entry, 0), nil
		}
		q.Limit = *args.Tail
	}
	if args.Level != nil {
		level, err := log.ParseLevel(*args.Level)
		if err != nil {
			return nil, api.AsValidationError("invalid log level: %s", *args.Level)
		}
		q.MinLevel = &level
	}
	if args.RequestID != nil {
		q.RequestID = *args.RequestID
	}

	entries := s.logs.Entries(q)
	if len(entries) == 0 {
		// Return a zero-length array here so the JSON encoding is `[]` rather than `null`.
		entries = make([]*logger.Entry, 0)
	}
	return entries, nil
}
