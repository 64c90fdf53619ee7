// Package server exposes the entity store and the catalog controller over
// HTTP with gin.
//
// Entity store routes answer with the {"success": bool, "data": ...}
// envelope consumed by internal/remote. Catalog routes drive the shared
// controller and answer with its notifications and views.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mesh-intelligence/orchard/internal/catalog"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

const shutdownTimeout = 5 * time.Second

// Server wires HTTP routes to a store and a controller.
type Server struct {
	store    types.Store
	ctrl     *catalog.Controller
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	engine   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithGatherer sets the registry served on /metrics. The default is
// prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// New builds the router.
func New(store types.Store, ctrl *catalog.Controller, opts ...Option) *Server {
	s := &Server{store: store, ctrl: ctrl}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	items := r.Group("/api/items")
	{
		items.GET("", s.listItems)
		items.POST("", s.createItem)
		items.PUT("/:id", s.updateItem)
	}

	cat := r.Group("/api/catalog")
	{
		cat.GET("", s.catalogView)
		cat.POST("/reload", s.catalogReload)
		cat.POST("/items", s.catalogCreate)
		cat.GET("/items/:id", s.catalogDetail)
		cat.POST("/items/:id/favorite", s.catalogToggleFavorite)
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	return r
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
