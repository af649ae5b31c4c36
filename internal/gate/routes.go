// Package gate implements the per-request routing gate: a stateless
// classification of the session into one access state, computed from
// cookies alone, and the redirect decision derived from it.
package gate

import "strings"

// RouteClass partitions every path the front end serves.
type RouteClass int

const (
	// ClassProtected is the default: everything not listed elsewhere.
	ClassProtected RouteClass = iota
	// ClassPublic covers login, registration and landing pages.
	ClassPublic
	// ClassLegal covers terms and privacy pages, reachable always.
	ClassLegal
	// ClassOnboarding covers the onboarding wizard and its success page.
	ClassOnboarding
	// ClassOTP is the single verification page.
	ClassOTP
)

// String returns the class name for logging.
func (c RouteClass) String() string {
	switch c {
	case ClassPublic:
		return "public"
	case ClassLegal:
		return "legal"
	case ClassOnboarding:
		return "onboarding"
	case ClassOTP:
		return "otp"
	default:
		return "protected"
	}
}

// RouteTable is the path classification consumed by the gate. It is
// configuration, not logic: extending any list changes what is gated
// without touching the decision algorithm.
type RouteTable struct {
	// Public paths, matched exactly.
	Public []string
	// Legal paths, matched exactly. Treated as public for anonymous
	// visitors but remain reachable in every verified state.
	Legal []string
	// Onboarding path prefixes: the wizard and its success page.
	Onboarding []string
	// OTPPath is the single verification page.
	OTPPath string

	// LandingPath receives anonymous visitors of protected paths.
	LandingPath string
	// HomePath receives verified users leaving public or OTP pages.
	HomePath string
	// OnboardingEntryPath receives users with incomplete onboarding.
	OnboardingEntryPath string
}

// DefaultRouteTable returns the route classification of the customer
// portal.
func DefaultRouteTable() RouteTable {
	return RouteTable{
		Public: []string{
			"/landing",
			"/auth/login",
			"/auth/register",
			"/auth/register/email",
		},
		Legal: []string{
			"/terms-of-service",
			"/privacy-policy",
		},
		Onboarding: []string{
			"/onboarding",
		},
		OTPPath: "/auth/register/email/otp",

		LandingPath:         "/landing",
		HomePath:            "/",
		OnboardingEntryPath: "/onboarding",
	}
}

// Classify returns the route class of a request path. Unknown paths are
// protected.
func (t RouteTable) Classify(path string) RouteClass {
	if path == t.OTPPath {
		return ClassOTP
	}
	for _, p := range t.Legal {
		if path == p {
			return ClassLegal
		}
	}
	for _, p := range t.Onboarding {
		if hasPathPrefix(path, p) {
			return ClassOnboarding
		}
	}
	for _, p := range t.Public {
		if path == p {
			return ClassPublic
		}
	}
	return ClassProtected
}

// hasPathPrefix reports whether path is prefix itself or a descendant
// of it ("/onboarding/success" under "/onboarding", but not
// "/onboardingx").
func hasPathPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
