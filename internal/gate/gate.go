package gate

import (
	"net/url"

	"github.com/pawmart/frontgate/internal/session"
)

// State is the access state of a request. Exactly one state holds for
// any cookie set.
type State int

const (
	// StateAnonymous: no access token.
	StateAnonymous State = iota
	// StateUnverified: token present, identity not verified.
	StateUnverified
	// StateNoProfile: verified, no customer profile yet.
	StateNoProfile
	// StateOnboarding: verified, profile present, onboarding incomplete.
	StateOnboarding
	// StateComplete: verified, profile present, onboarding complete.
	StateComplete
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateUnverified:
		return "unverified"
	case StateNoProfile:
		return "no-profile"
	case StateOnboarding:
		return "onboarding"
	default:
		return "complete"
	}
}

// StateOf classifies session facts into exactly one access state. The
// checks run most-restrictive first, so facts degraded by cookie decode
// failures can only move the session toward a more restrictive state.
func StateOf(f session.Facts) State {
	switch {
	case !f.IsAuthenticated():
		return StateAnonymous
	case !f.IsVerified:
		return StateUnverified
	case !f.HasProfile():
		return StateNoProfile
	case f.OnboardingStep < session.StepCount:
		return StateOnboarding
	default:
		return StateComplete
	}
}

// Decision is the gate's verdict for one request.
type Decision struct {
	// Allow lets the request through unchanged.
	Allow bool
	// Location is the redirect target when Allow is false.
	Location string
}

func allowed() Decision           { return Decision{Allow: true} }
func redirect(to string) Decision { return Decision{Location: to} }

// Gate computes routing decisions from session facts and a path. It
// holds no mutable state; one instance serves every request.
type Gate struct {
	routes RouteTable
}

// New returns a gate over the given route table.
func New(routes RouteTable) *Gate {
	return &Gate{routes: routes}
}

// Routes exposes the table, for composition roots that reuse its paths.
func (g *Gate) Routes() RouteTable { return g.routes }

// Decide evaluates the decision table for the given facts and request
// path. Rules are evaluated in precedence order; the first match wins.
func (g *Gate) Decide(f session.Facts, path string) Decision {
	state := StateOf(f)
	class := g.routes.Classify(path)

	// Anonymous visitors only see public and legal pages. The requested
	// path rides along so the visit can resume after login.
	if state == StateAnonymous {
		if class == ClassPublic || class == ClassLegal {
			return allowed()
		}
		return redirect(g.routes.LandingPath + "?from=" + url.QueryEscape(path))
	}

	// An unverified account is pinned to the verification page.
	if state == StateUnverified {
		if class == ClassOTP {
			return allowed()
		}
		return redirect(g.routes.OTPPath)
	}

	// Every remaining state is verified.
	switch class {
	case ClassOTP, ClassPublic:
		// Nothing to verify and nothing to log in to.
		return redirect(g.routes.HomePath)
	case ClassLegal, ClassOnboarding:
		return allowed()
	}

	// Protected routes require completed onboarding.
	if state == StateNoProfile || state == StateOnboarding {
		return redirect(g.routes.OnboardingEntryPath)
	}
	return allowed()
}
