// Package server exposes the local store over HTTP so a browser client can persist through it.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/zfogg/pageshare/pkg/logger"
	"github.com/zfogg/pageshare/pkg/post"
	"github.com/zfogg/pageshare/pkg/service"
	"github.com/zfogg/pageshare/pkg/snapshot"
	"github.com/zfogg/pageshare/pkg/syncer"
)

// Config configures the HTTP server.
type Config struct {
	Host            string
	Port            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	// DebounceDelay is the quiet period for PUT /api/v1/posts?debounce=true.
	DebounceDelay time.Duration
	SyncTimeout   time.Duration
	// ServiceName names the server spans; empty disables request tracing.
	ServiceName string
	// TracerProvider overrides the global provider for request spans.
	TracerProvider trace.TracerProvider
}

// Server serves one snapshot store.
type Server struct {
	cfg      Config
	store    *snapshot.Store[post.Post]
	feed     *service.FeedService
	syncer   *syncer.Syncer[post.Post]
	gatherer prometheus.Gatherer
	router   *gin.Engine
}

// New builds the server and its routes. gatherer may be nil to disable /metrics.
func New(cfg Config, store *snapshot.Store[post.Post], gatherer prometheus.Gatherer) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:      cfg,
		store:    store,
		feed:     service.NewFeedService(store),
		syncer:   syncer.New[post.Post](store, cfg.DebounceDelay, cfg.SyncTimeout),
		gatherer: gatherer,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	if s.cfg.ServiceName != "" {
		r.Use(tracingMiddleware(s.cfg.ServiceName, s.cfg.TracerProvider)...)
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = s.cfg.AllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	r.Use(cors.New(corsConfig))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "pageshare",
		})
	})

	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/v1")
	{
		api.GET("/posts", s.getPosts)
		api.PUT("/posts", s.putPosts)
		api.POST("/posts/flush", s.flushPosts)
		api.GET("/stats", s.getStats)

		api.GET("/kv/:key", s.getValue)
		api.PUT("/kv/:key", s.putValue)
		api.DELETE("/kv/:key", s.deleteValue)
	}

	return r
}

// Run serves until ctx is cancelled, then drains requests and flushes pending writes.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("PageShare store server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		res := s.syncer.Close()
		logger.Error("Server failed", "err", err, "last_outcome", res.Outcome)
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	res := s.syncer.Close()
	logger.Info("Server exited", "last_outcome", res.Outcome)
	return err
}
