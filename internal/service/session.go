// Package service provides the business logic tying backend operations
// to session state synchronization, delegating persistence to the
// session store and cookie writing to the credential sync layer.
package service

import (
	"context"
	"net/http"
	"time"

	"github.com/pawmart/frontgate/internal/api"
	"github.com/pawmart/frontgate/internal/models"
	"github.com/pawmart/frontgate/internal/session"
)

// currentUserCacheKey is the cache key for the current-user record.
const currentUserCacheKey = "current-user"

// currentUserTTL bounds how long a fetched user record is reused.
const currentUserTTL = 30 * time.Second

// SessionService orchestrates the credential-bearing operations. Each
// operation calls the backend first and synchronizes state only on
// success; a failed call leaves all prior state untouched.
type SessionService struct {
	api   api.Client
	sync  *session.CredentialSync
	store *session.Store
	cache *session.MemCache
}

// NewSessionService constructs a SessionService. cache may be nil to
// disable current-user caching.
func NewSessionService(client api.Client, sync *session.CredentialSync, store *session.Store, cache *session.MemCache) *SessionService {
	return &SessionService{api: client, sync: sync, store: store, cache: cache}
}

// Login authenticates against the backend and, on success, records the
// credentials in the store and cookie projection. The cookies ride on w,
// so they are observable before any navigation this response triggers.
func (s *SessionService) Login(ctx context.Context, w http.ResponseWriter, email, password string) error {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.sync.LoginSucceeded(w, res)
}

// VerifyOTP confirms the one-time code and marks the session verified.
func (s *SessionService) VerifyOTP(ctx context.Context, w http.ResponseWriter, code string) error {
	acct, err := s.store.Account()
	if err != nil {
		return err
	}
	if err := s.api.VerifyOTP(ctx, acct.Token, code); err != nil {
		return err
	}
	return s.sync.OTPVerified(w)
}

// RefreshUser fetches the current user (with profile populated) and
// folds the record into the session state. Recently fetched records are
// served from the ephemeral cache; the synchronization still runs so the
// cookie projection is rewritten either way.
func (s *SessionService) RefreshUser(ctx context.Context, w http.ResponseWriter) (models.UserRecord, error) {
	acct, err := s.store.Account()
	if err != nil {
		return models.UserRecord{}, err
	}

	var user models.UserRecord
	if cached, ok := s.cached(); ok {
		user = cached
	} else {
		user, err = s.api.FetchCurrentUser(ctx, acct.Token, true)
		if err != nil {
			return models.UserRecord{}, err
		}
		if s.cache != nil {
			s.cache.Set(currentUserCacheKey, user, currentUserTTL)
		}
	}

	if err := s.sync.UserFetched(w, user); err != nil {
		return models.UserRecord{}, err
	}
	return user, nil
}

// Logout destroys the session unconditionally.
func (s *SessionService) Logout(ctx context.Context, w http.ResponseWriter) error {
	return s.sync.LoggedOut(w)
}

func (s *SessionService) cached() (models.UserRecord, bool) {
	if s.cache == nil {
		return models.UserRecord{}, false
	}
	v, ok := s.cache.Get(currentUserCacheKey)
	if !ok {
		return models.UserRecord{}, false
	}
	user, ok := v.(models.UserRecord)
	return user, ok
}
