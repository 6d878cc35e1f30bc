// Package session persists the logged in user's token and profile and tells
// subscribers when they change, whether the change was made here or elsewhere.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
)

// Fixed storage keys
const (
	KeyToken  = "holidaze_token"
	KeyUser   = "holidaze_user"
	KeyAPIKey = "holidaze_api_key"
)

var (
	ErrNoSession    = errors.New("no active session")
	ErrEmptyToken   = errors.New("session token is empty")
	ErrStoreClosed  = errors.New("session store is closed")
	ErrCorruptValue = errors.New("stored session value is corrupt")
)

// Store is the auth store shared by every view
type Store interface {
	// Get returns the current session or ErrNoSession
	Get(ctx context.Context) (*domain.Session, error)
	// Token returns the bearer token, or "" when logged out
	Token(ctx context.Context) (string, error)
	Set(ctx context.Context, s *domain.Session) error
	Clear(ctx context.Context) error
	// APIKey returns the stored API key, or "" when none is stored
	APIKey(ctx context.Context) (string, error)
	SetAPIKey(ctx context.Context, key string) error
	// Subscribe returns a channel of change events and a function to stop receiving
	Subscribe() (<-chan Event, func())
	Close() error
}

// backend is the key-value persistence under a store
type backend interface {
	load(ctx context.Context) (map[string]string, error)
	save(ctx context.Context, set map[string]string, del []string) error
	close() error
}

// store implements Store over any backend
type store struct {
	backend backend
	events  *Broadcaster
	log     *logger.Logger
	// notify is called after a local write, for backends that signal other processes
	notify func(ctx context.Context, e Event)
}

func newStore(b backend, log *logger.Logger) *store {
	log = logger.OrNop(log).Named("session")
	return &store{
		backend: b,
		events:  NewBroadcaster(log),
		log:     log,
	}
}

func (s *store) Get(ctx context.Context) (*domain.Session, error) {
	m, err := s.backend.load(ctx)
	if err != nil {
		return nil, err
	}
	return decodeSession(m)
}

func decodeSession(m map[string]string) (*domain.Session, error) {
	token := m[KeyToken]
	if token == "" {
		return nil, ErrNoSession
	}
	sess := &domain.Session{AccessToken: token}
	if raw := m[KeyUser]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &sess.Profile); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptValue, KeyUser, err)
		}
	}
	return sess, nil
}

func (s *store) Token(ctx context.Context) (string, error) {
	m, err := s.backend.load(ctx)
	if err != nil {
		return "", err
	}
	return m[KeyToken], nil
}

func (s *store) Set(ctx context.Context, sess *domain.Session) error {
	if sess == nil || sess.AccessToken == "" {
		return ErrEmptyToken
	}
	user, err := json.Marshal(sess.Profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.backend.save(ctx, map[string]string{
		KeyToken: sess.AccessToken,
		KeyUser:  string(user),
	}, nil); err != nil {
		return err
	}
	s.log.Debug("session saved", zap.String("user", sess.Profile.Name))
	s.emit(ctx, Event{Kind: Login, Source: Local, User: sess.Profile.Name})
	return nil
}

func (s *store) Clear(ctx context.Context) error {
	if err := s.backend.save(ctx, nil, []string{KeyToken, KeyUser}); err != nil {
		return err
	}
	s.log.Debug("session cleared")
	s.emit(ctx, Event{Kind: Logout, Source: Local})
	return nil
}

func (s *store) APIKey(ctx context.Context) (string, error) {
	m, err := s.backend.load(ctx)
	if err != nil {
		return "", err
	}
	return m[KeyAPIKey], nil
}

func (s *store) SetAPIKey(ctx context.Context, key string) error {
	var err error
	if key == "" {
		err = s.backend.save(ctx, nil, []string{KeyAPIKey})
	} else {
		err = s.backend.save(ctx, map[string]string{KeyAPIKey: key}, nil)
	}
	if err != nil {
		return err
	}
	s.emit(ctx, Event{Kind: APIKeyChanged, Source: Local})
	return nil
}

func (s *store) Subscribe() (<-chan Event, func()) {
	return s.events.Subscribe()
}

func (s *store) Close() error {
	s.events.Close()
	return s.backend.close()
}

func (s *store) emit(ctx context.Context, e Event) {
	s.events.Publish(e)
	if s.notify != nil {
		s.notify(ctx, e)
	}
}

// ResolveAPIKey returns the stored API key, falling back to def
func ResolveAPIKey(ctx context.Context, st Store, def string) string {
	if st != nil {
		if k, err := st.APIKey(ctx); err == nil && k != "" {
			return k
		}
	}
	return def
}
