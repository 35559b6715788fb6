package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/contentdesk/internal/domain"
	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

type fakeAuth struct {
	loginErr    error
	logoutErr   error
	logoutCalls []string
	token       string
}

func (f *fakeAuth) Login(_ context.Context, creds domain.Credentials) (*domain.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &domain.Session{
		Token: f.token,
		Principal: &domain.Principal{
			User: &domain.User{ID: "u1", Name: "Ada", Email: creds.Email},
		},
	}, nil
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.logoutCalls = append(f.logoutCalls, token)
	return f.logoutErr
}

func (f *fakeAuth) Register(_ context.Context, reg domain.Registration) (*domain.Session, error) {
	return &domain.Session{
		Token:     f.token,
		Principal: &domain.Principal{User: &domain.User{ID: "u2", Name: reg.Name, Email: reg.Email}},
	}, nil
}

type loginOnlyAuth struct {
	token string
}

func (l loginOnlyAuth) Login(context.Context, domain.Credentials) (*domain.Session, error) {
	return &domain.Session{Token: l.token}, nil
}

func (loginOnlyAuth) Logout(context.Context, string) error { return nil }

func TestLoginLogoutClearsSessionEvenWhenServerLogoutFails(t *testing.T) {
	tests := []struct {
		name      string
		logoutErr error
	}{
		{name: "server logout ok"},
		{name: "server logout fails", logoutErr: apperrors.NewNetworkError(errors.New("connection refused"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			auth := &fakeAuth{token: "tok-1", logoutErr: tt.logoutErr}
			store := NewStore(domain.PrincipalUser, NewMemoryStorage(), auth, nil)

			sess, err := store.Login(ctx, domain.Credentials{Email: "ada@example.com", Password: "pw"})
			require.NoError(t, err)
			assert.Equal(t, "tok-1", sess.Token)
			assert.True(t, store.IsAuthenticated(ctx))

			require.NoError(t, store.Logout(ctx))
			assert.False(t, store.IsAuthenticated(ctx))
			assert.Equal(t, []string{"tok-1"}, auth.logoutCalls)

			principal, err := store.CurrentPrincipal(ctx)
			require.NoError(t, err)
			assert.Nil(t, principal)
		})
	}
}

func TestLoginFailurePropagatesAndPersistsNothing(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	store := NewStore(domain.PrincipalUser, storage, &fakeAuth{loginErr: apperrors.NewAuthError("invalid credentials")}, nil)

	_, err := store.Login(ctx, domain.Credentials{Email: "x@example.com", Password: "bad"})
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))
	assert.False(t, store.IsAuthenticated(ctx))
	assert.Zero(t, storage.Len())
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	ctx := context.Background()
	store := NewStore(domain.PrincipalUser, NewMemoryStorage(), &fakeAuth{}, nil)

	_, err := store.Login(ctx, domain.Credentials{Email: "a@example.com", Password: "pw"})
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))
	assert.False(t, store.IsAuthenticated(ctx))
}

func TestPrincipalAbsentWithoutToken(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(ctx, UserKeys.Profile, `{"kind":"user","user":{"_id":"stale"}}`))

	store := NewStore(domain.PrincipalUser, storage, nil, nil)
	principal, err := store.CurrentPrincipal(ctx)
	require.NoError(t, err)
	assert.Nil(t, principal)
	assert.False(t, store.IsAuthenticated(ctx))
}

func TestUserAndAdminSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	users := NewStore(domain.PrincipalUser, storage, &fakeAuth{token: "user-token"}, nil)
	admins := NewStore(domain.PrincipalAdmin, storage, &fakeAuth{token: "admin-token"}, nil)

	_, err := admins.Login(ctx, domain.Credentials{Email: "root@example.com", Password: "pw"})
	require.NoError(t, err)

	assert.True(t, admins.IsAuthenticated(ctx))
	assert.False(t, users.IsAuthenticated(ctx))

	principal, err := admins.CurrentPrincipal(ctx)
	require.NoError(t, err)
	require.NotNil(t, principal)
	assert.Equal(t, domain.PrincipalAdmin, principal.Kind)

	_, err = users.Login(ctx, domain.Credentials{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, admins.Logout(ctx))

	assert.True(t, users.IsAuthenticated(ctx))
	token, err := users.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-token", token)
}

func TestRegisterPersistsSession(t *testing.T) {
	ctx := context.Background()
	store := NewStore(domain.PrincipalUser, NewMemoryStorage(), &fakeAuth{token: "new-token"}, nil)

	sess, err := store.Register(ctx, domain.Registration{Name: "Grace", Email: "grace@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "new-token", sess.Token)

	principal, err := store.CurrentPrincipal(ctx)
	require.NoError(t, err)
	require.NotNil(t, principal)
	assert.Equal(t, "Grace", principal.DisplayName())
}

func TestRegisterUnsupportedForAdmins(t *testing.T) {
	store := NewStore(domain.PrincipalAdmin, NewMemoryStorage(), loginOnlyAuth{token: "t"}, nil)
	_, err := store.Register(context.Background(), domain.Registration{Email: "a@example.com"})
	require.Error(t, err)
}

func TestInvalidateSkipsServer(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{token: "tok"}
	store := NewStore(domain.PrincipalUser, NewMemoryStorage(), auth, nil)
	_, err := store.Login(ctx, domain.Credentials{Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, store.Invalidate(ctx))
	assert.False(t, store.IsAuthenticated(ctx))
	assert.Empty(t, auth.logoutCalls)
}

func TestRefreshRequiresSession(t *testing.T) {
	ctx := context.Background()
	store := NewStore(domain.PrincipalUser, NewMemoryStorage(), &fakeAuth{token: "tok"}, nil)

	err := store.Refresh(ctx, &domain.Principal{User: &domain.User{Name: "x"}})
	assert.True(t, apperrors.IsAuth(err))

	_, err = store.Login(ctx, domain.Credentials{Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, store.Refresh(ctx, &domain.Principal{Kind: domain.PrincipalUser, User: &domain.User{Name: "Renamed", Credits: 40}}))

	principal, err := store.CurrentPrincipal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", principal.DisplayName())
	assert.Equal(t, 40, principal.User.Credits)
}

func TestSessionSurvivesAcrossStoresOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	storage, err := NewFileStorage(path)
	require.NoError(t, err)

	first := NewStore(domain.PrincipalUser, storage, &fakeAuth{token: "disk-token"}, nil)
	_, err = first.Login(ctx, domain.Credentials{Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)

	reopened, err := NewFileStorage(path)
	require.NoError(t, err)
	second := NewStore(domain.PrincipalUser, reopened, nil, nil)
	assert.True(t, second.IsAuthenticated(ctx))

	require.NoError(t, second.Logout(ctx))
	assert.False(t, first.IsAuthenticated(ctx))
}
