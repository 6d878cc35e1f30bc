package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/api"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/session"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/telemetry"
)

// AuthService handles login, registration and access checks
type AuthService struct {
	client *api.Client
	store  session.Store
	log    *logger.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(client *api.Client, store session.Store, opts Options) *AuthService {
	return &AuthService{
		client: client,
		store:  store,
		log:    logger.OrNop(opts.Logger).Named("auth"),
	}
}

// Login authenticates and stores the session. A rejected login returns the
// server's message unchanged and leaves any stored session alone.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	req := &dto.LoginRequest{Email: email, Password: password}
	if err := validate(req); err != nil {
		return nil, err
	}

	resp, err := s.client.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	sess := resp.Session()
	if err := s.store.Set(ctx, sess); err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	s.log.Info("logged in", zap.String("profile", sess.Profile.Name), zap.Bool("venue_manager", sess.Profile.VenueManager))
	return sess, nil
}

// Register creates a profile and, when autoLogin is set, logs in with the same credentials
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest, autoLogin bool) (*domain.Profile, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}
	p, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Info("registered", zap.String("profile", p.Name))

	if autoLogin {
		if _, err := s.Login(ctx, req.Email, req.Password); err != nil {
			return p, err
		}
	}
	return p, nil
}

// Logout clears the stored session. The API key is kept.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// Current returns the logged in session or ErrLoginRequired
func (s *AuthService) Current(ctx context.Context) (*domain.Session, error) {
	sess, err := s.store.Get(ctx)
	if err != nil {
		return nil, authRequired(err)
	}
	return sess, nil
}

// RequireManager returns the session when the user is a venue manager
func (s *AuthService) RequireManager(ctx context.Context) (*domain.Session, error) {
	sess, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.IsManager() {
		return nil, ErrManagerRequired
	}
	return sess, nil
}

// CreateAPIKey creates a key on the server and stores it for later requests
func (s *AuthService) CreateAPIKey(ctx context.Context, name string) (string, error) {
	if _, err := s.Current(ctx); err != nil {
		return "", err
	}
	resp, err := s.client.CreateAPIKey(ctx, name)
	if err != nil {
		return "", authRequired(err)
	}
	if resp.Key == "" {
		return "", errors.New("server returned an empty API key")
	}
	if err := s.store.SetAPIKey(ctx, resp.Key); err != nil {
		return "", err
	}
	return resp.Key, nil
}
