package auth

import (
	"go.uber.org/zap"

	"github.com/spec-kit/contentdesk/internal/apiclient"
	"github.com/spec-kit/contentdesk/internal/domain"
	"github.com/spec-kit/contentdesk/internal/service"
	"github.com/spec-kit/contentdesk/internal/session"
)

// Browser is everything the console holds for one browser session: the user
// and admin session stores and service sets bound to each of them.
type Browser struct {
	ID       string
	User     *session.Store
	Admin    *session.Store
	UserAPI  *service.Set
	AdminAPI *service.Set
}

// Sessions builds Browser values over a shared storage, namespacing keys per
// browser session id.
type Sessions struct {
	storage session.Storage
	client  *apiclient.Client
	logger  *zap.Logger
}

// NewSessions wires the browser factory.
func NewSessions(storage session.Storage, client *apiclient.Client, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{storage: storage, client: client, logger: logger}
}

// For returns the browser session sid. Construction is cheap; nothing is
// read from storage until a store is used.
func (s *Sessions) For(sid string) *Browser {
	scoped := session.Prefixed(s.storage, "browser:"+sid+":")
	logger := s.logger.With(zap.String("sid", sid))

	userStore := session.NewStore(domain.PrincipalUser, scoped, nil, logger)
	adminStore := session.NewStore(domain.PrincipalAdmin, scoped, nil, logger)

	userAPI := service.NewSet(s.client.WithTokenSource(userStore))
	adminAPI := service.NewSet(s.client.WithTokenSource(adminStore))

	userStore.SetAuthenticator(userAPI.Auth)
	adminStore.SetAuthenticator(adminAPI.AdminAuth)

	return &Browser{
		ID:       sid,
		User:     userStore,
		Admin:    adminStore,
		UserAPI:  userAPI,
		AdminAPI: adminAPI,
	}
}

// Store returns the session store of kind.
func (b *Browser) Store(kind domain.PrincipalKind) *session.Store {
	if kind == domain.PrincipalAdmin {
		return b.Admin
	}
	return b.User
}
