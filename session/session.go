// Package session holds the signed-in user's access token for the device API clients.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"device-portal-client/tokens"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader obtains a fresh access token, typically by signing the user in again
type Loader func(ctx context.Context) (string, error)

type Option func(*Store)

// WithLoader sets the capability used when no usable token is loaded
func WithLoader(loader Loader) Option {
	return func(s *Store) {
		s.loader = loader
	}
}

// WithLeeway treats tokens expiring within d as already expired
func WithLeeway(d time.Duration) Option {
	return func(s *Store) {
		s.leeway = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store is the session shared by every client of one signed-in user. It is safe
// for concurrent use.
type Store struct {
	mu     sync.Mutex
	token  string
	loads  singleflight.Group
	loader Loader
	leeway time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load replaces the last loaded access token
func (s *Store) Load(accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = accessToken
}

func (s *Store) Clear() {
	s.Load("")
}

// LastLoadedAccessToken returns the token most recently put into the session
func (s *Store) LastLoadedAccessToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.token, s.token != ""
}

// EnsureUserInContext reports whether the session holds a usable token,
// invoking the loader when it does not. The loader runs without the store
// locked, so it may call Load itself; concurrent callers share one load.
func (s *Store) EnsureUserInContext(ctx context.Context) (bool, error) {
	logger := s.logger.With(zap.String("function", "EnsureUserInContext()"))

	if token, _ := s.LastLoadedAccessToken(); s.usable(token) {
		return true, nil
	}

	if s.loader == nil {
		logger.Debug("No usable access token and no loader configured")
		return false, nil
	}

	loaded, err, _ := s.loads.Do("load", func() (interface{}, error) {
		return s.loader(ctx)
	})

	if err != nil {
		logger.Warn("Could not load access token", zap.Error(err))
		return false, fmt.Errorf("loading access token: %w", err)
	}

	if token, _ := loaded.(string); s.usable(token) {
		s.Load(token)
		logger.Debug("Loaded access token")

		return true, nil
	}

	// the loader may have stored the token itself
	if token, _ := s.LastLoadedAccessToken(); s.usable(token) {
		return true, nil
	}

	logger.Warn("Loader returned an unusable access token")

	return false, nil
}

// Opaque tokens and JWTs without exp are usable until the backend rejects them.
func (s *Store) usable(token string) bool {
	if token == "" {
		return false
	}

	exp, err := tokens.ExpiresAt(token)

	if err != nil {
		return true
	}

	return s.now().Add(s.leeway).Before(exp)
}
