package gate

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/pawmart/frontgate/internal/session"
)

type ctxKey string

const factsKey ctxKey = "facts"

// Middleware evaluates the gate for every request on the wrapped
// subtree. It is a pure function of the request's cookies: facts are
// decoded, the decision table runs, and the request is either redirected
// or passed through with the facts attached to its context.
//
// Redirects are traffic shaping, not failures: they are silent and the
// gate never errors a request, however malformed its cookies are.
func Middleware(g *Gate, codec session.CookieCodec, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			facts := codec.Decode(r)
			decision := g.Decide(facts, r.URL.Path)
			if !decision.Allow {
				logger.Debug("gate redirect",
					zap.String("path", r.URL.Path),
					zap.String("state", StateOf(facts).String()),
					zap.String("to", decision.Location),
				)
				http.Redirect(w, r, decision.Location, http.StatusFound)
				return
			}
			ctx := context.WithValue(r.Context(), factsKey, facts)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FactsFromContext extracts the session facts attached by Middleware.
// Returns zero facts if the request did not pass through the gate.
func FactsFromContext(ctx context.Context) session.Facts {
	val := ctx.Value(factsKey)
	if f, ok := val.(session.Facts); ok {
		return f
	}
	return session.Facts{}
}
