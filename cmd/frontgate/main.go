// Package main initializes and starts the front-end server, setting up
// configuration, logging, the encrypted session store, the routing gate
// and the HTTP router.
package main

import (
	"cmp"
	"fmt"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/pawmart/frontgate/internal/api"
	"github.com/pawmart/frontgate/internal/config"
	"github.com/pawmart/frontgate/internal/gate"
	"github.com/pawmart/frontgate/internal/logger"
	"github.com/pawmart/frontgate/internal/server/handler/http"
	"github.com/pawmart/frontgate/internal/service"
	"github.com/pawmart/frontgate/internal/session"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// devStoreSecret encrypts the session store when no secret is
// configured. Local development only.
const devStoreSecret = "frontgate-dev-secret"

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	secret := options.StoreSecret
	if secret == "" {
		zapLogger.Warn("no store secret configured, using development secret")
		secret = devStoreSecret
	}

	// Open the persisted store and hydrate it before anything renders.
	// A corrupted or undecryptable blob falls back to a fresh session.
	store, err := session.Open(options.StorePath, secret, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot open session store", zap.Error(err))
	}
	if err := store.Hydrate(); err != nil {
		zapLogger.Fatal("cannot hydrate session store", zap.Error(err))
	}

	// The cookie projection and its single writer.
	codec := session.CookieCodec{MaxAge: options.CookieMaxAge}
	credSync := session.NewCredentialSync(store, codec, zapLogger)

	// Ephemeral caches register with the sync layer so logout wipes them.
	cache := session.NewMemCache()
	credSync.RegisterCache(cache)

	// Pick the backend: real over HTTP, or the in-memory stub.
	var backend api.Client
	if options.APIBaseURL != "" {
		backend = api.NewHTTPClient(options.APIBaseURL, nil)
	} else {
		zapLogger.Warn("no backend configured, using stub")
		stub := api.NewStub()
		stub.Seed("demo@pawmart.dev", "demo", false)
		backend = stub
	}

	// Business-logic services.
	sessions := service.NewSessionService(backend, credSync, store, cache)
	onboarding := service.NewOnboardingService(backend, store, credSync)

	// HTTP handlers and the routing gate.
	sessionHandler := &http.SessionHandler{Sessions: sessions}
	onboardingHandler := &http.OnboardingHandler{Onboarding: onboarding}
	g := gate.New(gate.DefaultRouteTable())

	router := http.NewRouter(sessionHandler, onboardingHandler, g, codec, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
