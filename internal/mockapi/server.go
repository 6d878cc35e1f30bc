// Package mockapi is an in-process fake of the Holidaze REST API. It serves the
// same routes, envelopes and error bodies, and re-validates bookings server side.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/api"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/response"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/telemetry"
)

// Config holds mock API settings
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	// APIKey, when set, is required on every authenticated /holidaze request.
	// Keys issued through /auth/create-api-key are accepted too.
	APIKey string
	// BcryptCost defaults to bcrypt.DefaultCost; tests lower it to bcrypt.MinCost
	BcryptCost int
	// Tracing enables the OpenTelemetry gin middleware
	Tracing bool
	Logger  *logger.Logger
	Now     func() time.Time
}

// Server is the fake API
type Server struct {
	cfg     Config
	store   *Store
	tokens  *tokenIssuer
	metrics *metrics
	engine  *gin.Engine
	log     *logger.Logger

	mu   sync.Mutex
	http *http.Server
}

// New creates a server with an empty store
func New(cfg Config) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "holidaze-mockapi-dev-secret"
	}

	s := &Server{
		cfg:     cfg,
		store:   NewStore(cfg.BcryptCost, cfg.Now),
		tokens:  &tokenIssuer{secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL, now: cfg.Now},
		metrics: newMetrics(),
		log:     logger.OrNop(cfg.Logger).Named("mockapi"),
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if s.cfg.Tracing {
		router.Use(telemetry.GinMiddleware(telemetry.ServerName, spanAttributes))
	}
	router.Use(s.metrics.middleware(), s.requestLog())

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	auth := router.Group("/auth")
	{
		auth.POST("/register", s.Register)
		auth.POST("/login", s.Login)
		auth.POST("/create-api-key", s.identify(), requireAuth(), s.CreateAPIKey)
	}

	holidaze := router.Group("/holidaze")
	holidaze.Use(s.identify(), s.requireAPIKey())
	{
		holidaze.GET("/venues", s.ListVenues)
		holidaze.GET("/venues/search", s.SearchVenues)
		holidaze.GET("/venues/:id", s.GetVenue)

		protected := holidaze.Group("")
		protected.Use(requireAuth())
		{
			protected.POST("/venues", s.CreateVenue)
			protected.PUT("/venues/:id", s.UpdateVenue)
			protected.DELETE("/venues/:id", s.DeleteVenue)

			protected.GET("/bookings/:id", s.GetBooking)
			protected.POST("/bookings", s.CreateBooking)
			protected.PUT("/bookings/:id", s.UpdateBooking)
			protected.DELETE("/bookings/:id", s.DeleteBooking)

			protected.GET("/profiles/:name", s.GetProfile)
			protected.PUT("/profiles/:name", s.UpdateProfile)
			protected.GET("/profiles/:name/bookings", s.ProfileBookings)
			protected.GET("/profiles/:name/venues", s.ProfileVenues)
		}
	}
	return router
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("trace_id", telemetry.GetTraceID(c.Request.Context())),
		)
	}
}

// spanAttributes tags request spans with the caller and the addressed resource
func spanAttributes(c *gin.Context) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Bool("holidaze.authenticated", c.GetString(ctxProfileName) != ""),
		attribute.Bool("holidaze.api_key", c.GetHeader(api.APIKeyHeader) != ""),
	}
	if name := c.GetString(ctxProfileName); name != "" {
		attrs = append(attrs, attribute.String("holidaze.profile", name))
	}
	if id := c.Param("id"); id != "" {
		attrs = append(attrs, attribute.String("holidaze.resource_id", id))
	}
	if name := c.Param("name"); name != "" {
		attrs = append(attrs, attribute.String("holidaze.profile_path", name))
	}
	return attrs
}

// Handler returns the HTTP handler, for httptest servers
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Store exposes the backing state, for seeding and tests
func (s *Server) Store() *Store {
	return s.store
}

// Serve accepts connections on l until Shutdown
func (s *Server) Serve(l net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.log.Info(fmt.Sprintf("Mock API listening on %s", l.Addr()))
	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on addr and serves until Shutdown
func (s *Server) ListenAndServe(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(l)
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
