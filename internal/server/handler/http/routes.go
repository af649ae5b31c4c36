package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pawmart/frontgate/internal/gate"
	"github.com/pawmart/frontgate/internal/middleware"
	"github.com/pawmart/frontgate/internal/session"
)

// NewRouter constructs the HTTP handler serving the front end.
//
// Routes:
//
//	POST /api/session/login       → sessionHandler.Login
//	POST /api/session/otp         → sessionHandler.VerifyOTP
//	POST /api/session/logout      → sessionHandler.Logout
//	GET  /api/session/me          → sessionHandler.Me
//	GET  /api/onboarding          → onboardingHandler.Progress
//	POST /api/onboarding/steps/{step} → onboardingHandler.CompleteStep
//	POST /api/onboarding/navigate → onboardingHandler.Navigate
//	POST /api/onboarding/uploads  → onboardingHandler.Uploads
//	*                             → gated page shell
//
// The /api subtree enforces JSON content types and is not gated: the
// session endpoints must stay reachable from every access state, since
// they are what moves a session between states. Every page navigation
// goes through the routing gate.
func NewRouter(
	sessionHandler *SessionHandler,
	onboardingHandler *OnboardingHandler,
	g *gate.Gate,
	codec session.CookieCodec,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		// Only allow requests with Content-Type: application/json
		r.Use(chiMiddleware.AllowContentType("application/json"))

		r.Route("/session", func(r chi.Router) {
			r.Post("/login", sessionHandler.Login)
			r.Post("/otp", sessionHandler.VerifyOTP)
			r.Post("/logout", sessionHandler.Logout)
			r.Get("/me", sessionHandler.Me)
		})

		r.Route("/onboarding", func(r chi.Router) {
			r.Get("/", onboardingHandler.Progress)
			r.Post("/steps/{step}", onboardingHandler.CompleteStep)
			r.Post("/navigate", onboardingHandler.Navigate)
			r.Post("/uploads", onboardingHandler.Uploads)
		})
	})

	// Every page navigation is gated
	r.Group(func(r chi.Router) {
		r.Use(gate.Middleware(g, codec, logger))
		r.Handle("/*", http.HandlerFunc(servePage))
	})

	return r
}
