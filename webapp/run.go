package webapp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/endpoints"

	"github.com/tracknfresh/tracknfresh-web/internal/config"
	"github.com/tracknfresh/tracknfresh-web/internal/events"
	"github.com/tracknfresh/tracknfresh-web/internal/foodservice"
	"github.com/tracknfresh/tracknfresh-web/internal/health"
	"github.com/tracknfresh/tracknfresh-web/internal/identity"
	"github.com/tracknfresh/tracknfresh-web/internal/localstate"
	"github.com/tracknfresh/tracknfresh-web/internal/logger"
	"github.com/tracknfresh/tracknfresh-web/internal/session"
	"github.com/tracknfresh/tracknfresh-web/internal/web"
)

// Run starts the web frontend and blocks until shutdown or error.
func Run() error {
	log := logger.New("tracknfresh-web")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	log = logger.ForEnvironment(log, string(cfg.Environment))

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("http_port", cfg.HTTPPort).
		Str("food_service_url", cfg.FoodServiceURL).
		Str("identity_mode", cfg.IdentityMode).
		Bool("federated_login", cfg.FederatedEnabled()).
		Msg("TrackNFresh web starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	food, accounts, err := initDependencies(cfg, log)
	if err != nil {
		return err
	}

	bus := events.NewBus(64)
	sessions := newSessionManager(cfg, accounts, bus, log)
	defer func() {
		if err := sessions.Close(); err != nil {
			log.Error().Stack().Err(err).Msg("Failed to close identity provider")
		}
	}()
	go logSessionEvents(ctx, bus, log)

	svcHealth := startHealthCheckers(ctx, cfg, log, food, accounts)

	router, err := web.NewRouter(web.Deps{
		Food:      food,
		Sessions:  sessions,
		Health:    svcHealth,
		Log:       log,
		Federated: cfg.FederatedEnabled(),
	})
	if err != nil {
		log.Error().Stack().Err(err).Msg("Failed to build router")
		return err
	}

	// Pages degrade to error views while a dependency is down, so an
	// unhealthy start is reported but does not abort.
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Warn().Err(err).Interface("components", svcHealth.Components()).Msg("starting with unhealthy dependencies")
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs the food service client and the identity provider.
func initDependencies(cfg *config.Config, log zerolog.Logger) (*foodservice.Client, identity.Provider, error) {
	food, err := foodservice.New(cfg.FoodServiceURL,
		foodservice.WithTimeout(cfg.FoodServiceTimeout()),
		foodservice.WithLogger(log.With().Str("component", "foodservice").Logger()),
	)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Food service client unavailable")
		return nil, nil, err
	}

	accounts, err := newIdentityProvider(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Str("mode", cfg.IdentityMode).Msg("Identity provider unavailable")
		return nil, nil, err
	}
	return food, accounts, nil
}

func newIdentityProvider(cfg *config.Config, log zerolog.Logger) (identity.Provider, error) {
	switch cfg.IdentityMode {
	case config.IdentityRemote:
		rc := identity.RemoteConfig{
			BaseURL: cfg.IdentityURL,
			APIKey:  cfg.IdentityAPIKey,
			Timeout: cfg.HealthProbeTimeout() * 2,
			Log:     log.With().Str("component", "identity").Logger(),
		}
		if cfg.FederatedEnabled() {
			rc.OAuth = identity.NewOAuthConfig(cfg.OAuthClientID, cfg.OAuthClientSecret, cfg.OAuthRedirectURL, endpoints.Google)
		}
		return identity.NewRemoteProvider(rc)
	case config.IdentityLocal:
		path, err := localstate.AccountsDBPath(cfg.LocalAccountsPath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", path).Msg("Using local development accounts")
		return identity.OpenLocal(path)
	default:
		return nil, fmt.Errorf("unsupported identity mode %q", cfg.IdentityMode)
	}
}

func newSessionManager(cfg *config.Config, accounts identity.Provider, bus *events.Bus, log zerolog.Logger) *session.Manager {
	return session.NewManager(accounts, bus, log.With().Str("component", "session").Logger(), session.Options{
		HashKey:  []byte(cfg.SessionHashKey),
		BlockKey: []byte(cfg.SessionBlockKey),
		MaxAge:   cfg.SessionMaxAgeSeconds,
		Secure:   cfg.SecureCookies,
	})
}

// logSessionEvents drains session-change notifications until ctx ends.
func logSessionEvents(ctx context.Context, bus *events.Bus, log zerolog.Logger) {
	ch := bus.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			log.Info().
				Str("event", string(evt.Kind)).
				Str("email", evt.Email).
				Str("provider", evt.Provider).
				Time("at", evt.At).
				Msg("session changed")
		}
	}
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, food health.HealthPinger, accounts health.HealthPinger) *health.ServiceHealthChecker {
	interval := cfg.HealthInterval()
	probeTimeout := cfg.HealthProbeTimeout()

	foodChecker := health.NewPingChecker("food-service", food, log, probeTimeout)
	go foodChecker.Start(ctx, interval)

	idChecker := health.NewPingChecker("identity-"+cfg.IdentityMode, accounts, log, probeTimeout)
	go idChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, foodChecker, idChecker)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// startupHealthTimeout is two probe intervals, at least 5 and at most 60 seconds.
func startupHealthTimeout(intervalSeconds int) time.Duration {
	s := intervalSeconds * 2
	if s < 5 {
		s = 5
	}
	if s > 60 {
		s = 60
	}
	return time.Duration(s) * time.Second
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeout := startupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("dependencies not healthy within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
