package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/contentdesk/internal/domain"
	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

// Authenticator exchanges credentials for a session with the backend.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	Logout(ctx context.Context, token string) error
}

// Registrar creates an account and signs it in.
type Registrar interface {
	Register(ctx context.Context, reg domain.Registration) (*domain.Session, error)
}

// Keys names the two storage entries of one principal kind.
type Keys struct {
	Token   string
	Profile string
}

var (
	UserKeys  = Keys{Token: "token", Profile: "user"}
	AdminKeys = Keys{Token: "adminToken", Profile: "admin"}
)

// KeysFor returns the storage keys of a principal kind.
func KeysFor(kind domain.PrincipalKind) Keys {
	if kind == domain.PrincipalAdmin {
		return AdminKeys
	}
	return UserKeys
}

// Store owns the session of one principal kind. It is the only writer of the
// token and cached profile; the token is written last and cleared first so a
// reader never sees a principal without a token.
type Store struct {
	kind    domain.PrincipalKind
	keys    Keys
	storage Storage
	auth    Authenticator
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewStore builds a store for kind over storage. auth may be nil for
// read-only use (guards only need IsAuthenticated).
func NewStore(kind domain.PrincipalKind, storage Storage, auth Authenticator, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		kind:    kind,
		keys:    KeysFor(kind),
		storage: storage,
		auth:    auth,
		logger:  logger.With(zap.String("principal", string(kind))),
	}
}

// SetAuthenticator installs auth after construction, for authenticators whose
// client is itself bound to this store. Call it before the store is shared.
func (s *Store) SetAuthenticator(auth Authenticator) {
	s.auth = auth
}

// Kind returns the principal kind this store holds.
func (s *Store) Kind() domain.PrincipalKind {
	return s.kind
}

// Login authenticates against the backend and persists the resulting session.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	if s.auth == nil {
		return nil, errors.New("session store has no authenticator")
	}
	sess, err := s.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Register signs up through the authenticator when it supports registration.
func (s *Store) Register(ctx context.Context, reg domain.Registration) (*domain.Session, error) {
	registrar, ok := s.auth.(Registrar)
	if !ok {
		return nil, fmt.Errorf("%s sessions do not support registration", s.kind)
	}
	sess, err := registrar.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout notifies the backend and clears the local session. The backend call
// is best effort; local state is cleared even when it fails.
func (s *Store) Logout(ctx context.Context) error {
	token, err := s.Token(ctx)
	if err != nil {
		s.logger.Warn("read token before logout", zap.Error(err))
	}
	if token != "" && s.auth != nil {
		if err := s.auth.Logout(ctx, token); err != nil {
			s.logger.Warn("server logout failed; clearing local session anyway", zap.Error(err))
		}
	}
	return s.clear(ctx)
}

// Invalidate drops the local session without contacting the backend. Called
// when the backend rejects the token.
func (s *Store) Invalidate(ctx context.Context) error {
	s.logger.Info("session invalidated")
	return s.clear(ctx)
}

// IsAuthenticated reports whether a token is present. Storage errors count as
// unauthenticated.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	if err != nil {
		s.logger.Warn("read session token", zap.Error(err))
		return false
	}
	return token != ""
}

// Token returns the bearer token, or "" when signed out.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, ok, err := s.storage.Get(ctx, s.keys.Token)
	if errors.Is(err, ErrUnsealable) {
		s.logger.Warn("stored token unreadable; clearing session")
		return "", s.clear(ctx)
	}
	if err != nil || !ok {
		return "", err
	}
	return token, nil
}

// CurrentPrincipal returns the cached profile, or nil when signed out.
func (s *Store) CurrentPrincipal(ctx context.Context) (*domain.Principal, error) {
	token, err := s.Token(ctx)
	if err != nil || token == "" {
		return nil, err
	}
	raw, ok, err := s.storage.Get(ctx, s.keys.Profile)
	if err != nil || !ok {
		return nil, err
	}
	var principal domain.Principal
	if err := json.Unmarshal([]byte(raw), &principal); err != nil {
		return nil, fmt.Errorf("decode cached %s profile: %w", s.kind, err)
	}
	return &principal, nil
}

// Refresh replaces the cached profile after a re-fetch. It is a no-op when
// signed out.
func (s *Store) Refresh(ctx context.Context, principal *domain.Principal) error {
	if !s.IsAuthenticated(ctx) {
		return apperrors.NewAuthError("not signed in")
	}
	raw, err := json.Marshal(principal)
	if err != nil {
		return fmt.Errorf("encode %s profile: %w", s.kind, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Set(ctx, s.keys.Profile, string(raw))
}

func (s *Store) persist(ctx context.Context, sess *domain.Session) error {
	if sess == nil || sess.Token == "" {
		return apperrors.NewAuthError("backend returned no token")
	}
	principal := sess.Principal
	if principal == nil {
		principal = &domain.Principal{Kind: s.kind}
	}
	principal.Kind = s.kind
	raw, err := json.Marshal(principal)
	if err != nil {
		return fmt.Errorf("encode %s profile: %w", s.kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(ctx, s.keys.Profile, string(raw)); err != nil {
		return fmt.Errorf("persist %s profile: %w", s.kind, err)
	}
	if err := s.storage.Set(ctx, s.keys.Token, sess.Token); err != nil {
		_ = s.storage.Delete(ctx, s.keys.Profile)
		return fmt.Errorf("persist %s token: %w", s.kind, err)
	}
	s.logger.Info("session started", zap.String("email", principal.Email()))
	return nil
}

func (s *Store) clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Delete(ctx, s.keys.Token); err != nil {
		return fmt.Errorf("clear %s token: %w", s.kind, err)
	}
	if err := s.storage.Delete(ctx, s.keys.Profile); err != nil {
		return fmt.Errorf("clear %s profile: %w", s.kind, err)
	}
	return nil
}
