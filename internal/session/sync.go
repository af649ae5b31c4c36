package session

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/pawmart/frontgate/internal/models"
)

// ErrSyncFailed wraps failures to synchronize session state after an
// otherwise successful operation. The triggering action is not complete
// until state is synchronized, so callers surface this to the user as a
// retryable failure of that action.
var ErrSyncFailed = errors.New("credential sync failed")

// CredentialSync is the only writer of the managed cookies. Whenever an
// operation that changes session facts succeeds, one of its event
// methods updates the persisted store and rewrites the full cookie set
// from the resulting state, keeping the two logically identical.
//
// The store update always happens first: if it fails, no cookies are
// touched and the event reports ErrSyncFailed, so the routing gate never
// observes facts the store does not hold.
type CredentialSync struct {
	store  *Store
	codec  CookieCodec
	caches []Purger
	log    *zap.Logger
}

// NewCredentialSync wires a sync layer over the given store and codec.
// It subscribes the onboarding slice to account destruction, so logging
// out always resets onboarding progress in the same commit.
func NewCredentialSync(store *Store, codec CookieCodec, log *zap.Logger) *CredentialSync {
	store.OnAccountDestroyed(func(prog *OnboardingProgress) {
		prog.Reset()
	})
	return &CredentialSync{store: store, codec: codec, log: log}
}

// RegisterCache adds an ephemeral cache to be purged on logout.
func (cs *CredentialSync) RegisterCache(p Purger) {
	cs.caches = append(cs.caches, p)
}

// LoginSucceeded records a successful login or registration: the
// credentials land in the store and the cookie projection is rewritten.
func (cs *CredentialSync) LoginSucceeded(w http.ResponseWriter, res models.LoginResult) error {
	err := cs.store.Update(func(acct *AccountSession, prog *OnboardingProgress) {
		acct.Token = res.Token
		acct.Email = res.Email
		acct.IsAuthenticated = true
		acct.IsVerified = res.IsVerified
		acct.PortalType = models.PortalCustomer
		if res.Profile != nil {
			prog.ProfileID = res.Profile.ID
			prog.MergeRemoteStep(res.Profile.OnboardingStep)
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	return cs.apply(w)
}

// OTPVerified records a successful identity verification.
func (cs *CredentialSync) OTPVerified(w http.ResponseWriter) error {
	err := cs.store.Update(func(acct *AccountSession, _ *OnboardingProgress) {
		acct.IsVerified = true
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	return cs.apply(w)
}

// UserFetched records a successful current-user fetch. The backend's
// record is authoritative at acquisition time: profile presence and the
// recorded onboarding step are folded into the store before the cookie
// projection is rewritten.
func (cs *CredentialSync) UserFetched(w http.ResponseWriter, user models.UserRecord) error {
	err := cs.store.Update(func(acct *AccountSession, prog *OnboardingProgress) {
		u := user
		acct.User = &u
		acct.IsVerified = user.IsVerified
		if acct.Email == "" {
			acct.Email = user.Email
		}
		if user.Profile != nil {
			prog.ProfileID = user.Profile.ID
			prog.MergeRemoteStep(user.Profile.OnboardingStep)
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	return cs.apply(w)
}

// OnboardingAdvanced rewrites the cookie projection after onboarding
// progress changed in the store. Cookies land on the response carrying
// this event's outcome, so they are observable before any navigation
// the client issues next.
func (cs *CredentialSync) OnboardingAdvanced(w http.ResponseWriter) error {
	return cs.apply(w)
}

// LoggedOut destroys the session: the account slice is reset, onboarding
// progress cascades to its initial value, every registered ephemeral
// cache is purged, and every managed cookie is cleared.
func (cs *CredentialSync) LoggedOut(w http.ResponseWriter) error {
	if err := cs.store.DestroyAccount(); err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	for _, p := range cs.caches {
		p.Purge()
	}
	Apply(w, cs.codec.Clear())
	cs.log.Info("session destroyed")
	return nil
}

// apply rewrites the full managed cookie set from the store state. The
// set is built in full before any header is written.
func (cs *CredentialSync) apply(w http.ResponseWriter) error {
	facts, err := cs.store.Facts()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	Apply(w, cs.codec.Encode(facts))
	return nil
}
