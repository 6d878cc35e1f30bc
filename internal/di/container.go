package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/api"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/listview"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/service"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/session"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/config"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/redis"
)

// Container holds all dependencies of the Holidaze client
type Container struct {
	// Infrastructure
	Redis  *redis.Client
	Store  session.Store
	Client *api.Client
	Log    *logger.Logger

	// Services
	AuthService          *service.AuthService
	VenueService         *service.VenueService
	BookingService       *service.BookingService
	DashboardService     *service.DashboardService
	ManageVenuesService  *service.ManageVenuesService
	ProfileService       *service.ProfileService
	VenueBookingsService *service.VenueBookingsService
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	API      api.Config
	Store    session.Store
	Redis    *redis.Client
	Logger   *logger.Logger
	Notifier listview.Notifier
	// OnUnauthorized runs after the stale session has been cleared
	OnUnauthorized func(err error)
	SettleDelay    time.Duration
	Clock          func() time.Time
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	log := logger.OrNop(cfg.Logger)
	apiCfg := cfg.API
	if apiCfg.Logger == nil {
		apiCfg.Logger = log
	}

	c := &Container{
		Redis:  cfg.Redis,
		Store:  cfg.Store,
		Client: api.New(apiCfg, cfg.Store),
		Log:    log,
	}

	opts := service.Options{
		Logger:         log,
		Clock:          cfg.Clock,
		SettleDelay:    cfg.SettleDelay,
		Notifier:       cfg.Notifier,
		OnUnauthorized: c.unauthorized(cfg.OnUnauthorized),
	}

	// Initialize services
	c.AuthService = service.NewAuthService(c.Client, c.Store, opts)
	c.VenueService = service.NewVenueService(c.Client, c.Store, c.AuthService, opts)
	c.BookingService = service.NewBookingService(c.Client, c.Store, opts)
	c.DashboardService = service.NewDashboardService(c.Client, c.AuthService, opts)
	c.ManageVenuesService = service.NewManageVenuesService(c.Client, c.AuthService, opts)
	c.ProfileService = service.NewProfileService(c.Client, c.Store, c.AuthService, opts)
	c.VenueBookingsService = service.NewVenueBookingsService(c.Client, c.AuthService)

	return c
}

// unauthorized clears the rejected session before handing over to next
func (c *Container) unauthorized(next func(error)) func(error) {
	return func(err error) {
		c.Log.Warn("session rejected by the API, logging out", zap.Error(err))
		if cerr := c.Store.Clear(context.Background()); cerr != nil {
			c.Log.Error("failed to clear session", zap.Error(cerr))
		}
		if next != nil {
			next(err)
		}
	}
}

// Close releases the session store and the Redis connection
func (c *Container) Close() error {
	var errs []error
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	return errors.Join(errs...)
}

// NewSessionStore opens the session store selected by cfg. The Redis client is
// returned for the redis backend so the caller can close it.
func NewSessionStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (session.Store, *redis.Client, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		return session.NewMemoryStore(log), nil, nil
	case config.SessionBackendFile:
		st, err := session.NewFileStore(cfg.Session.File, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session file: %w", err)
		}
		return st, nil, nil
	case config.SessionBackendRedis:
		rc, err := redis.NewClient(ctx, &redis.Config{
			Host:             cfg.Redis.Host,
			Port:             cfg.Redis.Port,
			Password:         cfg.Redis.Password,
			DB:               cfg.Redis.DB,
			PoolSize:         cfg.Redis.PoolSize,
			MinIdleConns:     cfg.Redis.MinIdleConns,
			DialTimeout:      cfg.Redis.DialTimeout,
			ReadTimeout:      cfg.Redis.ReadTimeout,
			WriteTimeout:     cfg.Redis.WriteTimeout,
			MaxRetries:       3,
			RetryInterval:    time.Second,
			MaxRetryInterval: 4 * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		st, err := session.NewRedisStore(ctx, rc, session.RedisOptions{
			Prefix:  cfg.Session.Prefix,
			Channel: cfg.Session.Channel,
		}, log)
		if err != nil {
			rc.Close()
			return nil, nil, err
		}
		return st, rc, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend: %q", cfg.Session.Backend)
	}
}

// APIConfig maps the remote API settings onto the client configuration
func APIConfig(cfg *config.Config, log *logger.Logger) api.Config {
	return api.Config{
		BaseURL:     cfg.API.BaseURL,
		AuthBaseURL: cfg.API.AuthBaseURL,
		APIKey:      cfg.API.APIKey,
		Timeout:     cfg.API.Timeout,
		Logger:      log,
	}
}
