// Package web serves the export engine over HTTP.
package web

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jexcli/jex/internal/config"
	"github.com/jexcli/jex/internal/export"
	"github.com/jexcli/jex/internal/jira"
	"github.com/jexcli/jex/internal/logx"
	"github.com/jexcli/jex/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

// ClientFactory builds a tracker client for one request's credentials.
type ClientFactory func(cfg jira.Config) (export.Client, error)

// Server exposes exports, format discovery, health, and metrics endpoints.
type Server struct {
	cfg       *config.Config
	newClient ClientFactory
	router    *gin.Engine
	metrics   *metrics.Recorder
	log       *logx.Logger
	version   string
}

// NewServer wires routes and middleware around the given configuration.
// The factory builds a tracker client per request, so callers can override
// credentials and tests can substitute fakes.
func NewServer(cfg *config.Config, factory ClientFactory, version string) *Server {
	if os.Getenv("JEX_DEBUG") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	s := &Server{
		cfg:       cfg,
		newClient: factory,
		router:    router,
		metrics:   metrics.NewRecorder(),
		log:       logx.New("web"),
		version:   version,
	}

	router.Use(gin.Recovery())
	router.Use(s.requestID())
	router.Use(s.observe())

	router.GET("/", s.handleHealth)
	router.GET("/health", s.handleHealth)
	router.GET("/formats", s.handleFormats)
	router.POST("/export", s.handleExport)
	router.GET("/export/:key", s.handleExportSingle)
	router.GET("/export/multiple/:keys", s.handleExportMultiple)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	return s
}

// Handler returns the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// requestID tags every response so log lines and clients can correlate.
// An inbound X-Request-ID is honored; otherwise one is minted.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// observe logs the request line and feeds the metrics recorder.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		s.metrics.ObserveRequest(c.Request.Method, path, status)
		s.log.Info("%s %s -> %d in %s id=%s",
			c.Request.Method, c.Request.URL.Path, status,
			time.Since(start).Round(time.Millisecond), c.GetString("requestID"))
	}
}

// Run serves on addr until the context is canceled, then drains in-flight
// requests before returning.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.log.Info("listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
