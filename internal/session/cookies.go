package session

import (
	"net/http"
	"strconv"
)

// Cookie names managed by this package. The routing gate reads these and
// nothing else; no cookie ever carries a full user payload.
const (
	CookieAuthToken      = "auth_token"
	CookieIsVerified     = "is_verified"
	CookieHasProfile     = "has_profile"
	CookieOnboardingStep = "onboarding_step"
	CookieEmail          = "email"
)

// cookieNames lists every managed cookie, in the order they are written.
var cookieNames = []string{
	CookieAuthToken,
	CookieIsVerified,
	CookieHasProfile,
	CookieOnboardingStep,
	CookieEmail,
}

// CookieCodec round-trips Facts to and from the managed cookies. All
// cookies share path "/", SameSite=Lax and one configured max-age.
type CookieCodec struct {
	// MaxAge is the shared cookie lifetime in seconds.
	MaxAge int
}

// Encode projects the facts into the full managed cookie set. Absent
// facts produce clearing cookies rather than omissions so that applying
// the set always leaves the browser in a state matching the facts
// exactly. Encoding is deterministic: equal facts yield equal sets.
func (c CookieCodec) Encode(f Facts) []*http.Cookie {
	verified := "false"
	if f.IsAuthenticated() && f.IsVerified {
		verified = "true"
	}
	step := ""
	if f.HasProfile() && f.OnboardingStep > 0 {
		step = strconv.Itoa(f.OnboardingStep)
	}
	return []*http.Cookie{
		c.cookie(CookieAuthToken, f.Token),
		c.cookie(CookieIsVerified, verified),
		c.cookie(CookieHasProfile, f.ProfileID),
		c.cookie(CookieOnboardingStep, step),
		c.cookie(CookieEmail, f.Email),
	}
}

// Clear returns the full managed set with max-age=0, invalidating every
// cookie immediately.
func (c CookieCodec) Clear() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookieNames))
	for _, name := range cookieNames {
		out = append(out, c.cookie(name, ""))
	}
	return out
}

// Decode reads the managed cookies off a request and rebuilds Facts.
// Malformed values are treated as absent, which always degrades toward
// the more restrictive routing state and never fails the request.
func (c CookieCodec) Decode(r *http.Request) Facts {
	f := Facts{
		Token:     cookieValue(r, CookieAuthToken),
		Email:     cookieValue(r, CookieEmail),
		ProfileID: cookieValue(r, CookieHasProfile),
	}
	if f.Token != "" {
		verified, err := strconv.ParseBool(cookieValue(r, CookieIsVerified))
		f.IsVerified = err == nil && verified
	}
	if f.ProfileID != "" {
		step, err := strconv.Atoi(cookieValue(r, CookieOnboardingStep))
		if err == nil && step > 0 {
			f.OnboardingStep = step
		}
	}
	return f
}

// cookie builds one managed cookie. An empty value yields a clearing
// cookie (max-age=0) so the browser drops it.
func (c CookieCodec) cookie(name, value string) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   c.MaxAge,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		ck.MaxAge = -1
	}
	return ck
}

func cookieValue(r *http.Request, name string) string {
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// Apply writes the given cookie set to the response. Headers are
// buffered until the body is written, so the set lands all-or-none from
// the browser's point of view.
func Apply(w http.ResponseWriter, cookies []*http.Cookie) {
	for _, ck := range cookies {
		http.SetCookie(w, ck)
	}
}
