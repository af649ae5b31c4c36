// Package session owns the client-side session state of the marketplace
// front end: the authoritative encrypted persisted store, the cookie
// projection read by the routing gate, and the synchronization layer that
// keeps the two coherent.
package session

import (
	"github.com/pawmart/frontgate/internal/models"
)

// Facts is the minimal projection of a session used for routing
// decisions. It is derived state, never the source of truth.
type Facts struct {
	// Token is the bearer token; empty means anonymous.
	Token string
	// IsVerified reports whether the account passed OTP verification.
	// Only meaningful when Token is present.
	IsVerified bool
	// Email is the account email, informational only.
	Email string
	// ProfileID is the customer profile id; empty means no profile.
	ProfileID string
	// OnboardingStep is the number of contiguously completed onboarding
	// steps, 0 when onboarding has not started. Only meaningful when
	// ProfileID is present.
	OnboardingStep int
}

// IsAuthenticated reports whether an access token is present.
func (f Facts) IsAuthenticated() bool { return f.Token != "" }

// HasProfile reports whether a customer profile exists.
func (f Facts) HasProfile() bool { return f.ProfileID != "" }

// AccountSession is the authoritative account state held in the
// persisted store.
type AccountSession struct {
	// User is the account record from the last current-user fetch.
	User *models.UserRecord `json:"user"`
	// Token is the bearer token issued at login.
	Token string `json:"token"`
	// Email is the account's login email.
	Email string `json:"email"`
	// IsAuthenticated mirrors token presence.
	IsAuthenticated bool `json:"is_authenticated"`
	// IsVerified reports OTP verification status.
	IsVerified bool `json:"is_verified"`
	// PortalType is always the customer portal in this front end.
	PortalType models.PortalType `json:"portal_type"`
}

// NewAccountSession returns the initial, signed-out account state.
func NewAccountSession() AccountSession {
	return AccountSession{PortalType: models.PortalCustomer}
}

// Project derives the routing facts from the authoritative slices.
// The invariants of Facts hold by construction: verification is only
// reported for authenticated sessions, and the onboarding step is only
// reported once a profile exists.
func Project(acct AccountSession, prog OnboardingProgress) Facts {
	f := Facts{
		Token: acct.Token,
		Email: acct.Email,
	}
	if f.Token != "" {
		f.IsVerified = acct.IsVerified
	}
	if prog.ProfileID != "" {
		f.ProfileID = prog.ProfileID
		f.OnboardingStep = prog.CompletedThrough()
	}
	return f
}
